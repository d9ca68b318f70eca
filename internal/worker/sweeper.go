package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"council-vote/internal/domain/motion"
	"council-vote/internal/metrics"
	"council-vote/internal/platform/clock"
	"council-vote/internal/platform/logger"
)

// SweepStore is the storage the completion sweeper needs.
type SweepStore interface {
	ListOpenMotionIDs(ctx context.Context) ([]uuid.UUID, error)
	// CloseIfComplete locks the motion, reads its counts and runs decide in
	// one transaction. A complete evaluation closes the motion and enqueues
	// its notification in that same transaction. Motions no longer open
	// yield a zero Evaluation.
	CloseIfComplete(ctx context.Context, id uuid.UUID, now time.Time,
		decide func(m *motion.Motion, c motion.Counts) motion.Evaluation) (motion.Evaluation, error)
}

type ClosedMotion struct {
	MotionID uuid.UUID          `json:"motion_id"`
	Reason   motion.CloseReason `json:"reason"`
	Outcome  motion.Outcome     `json:"outcome"`
}

type SweepReport struct {
	Scanned int            `json:"scanned"`
	Closed  []ClosedMotion `json:"closed"`
	Failed  int            `json:"failed"`
}

// Sweeper closes open motions whose voting period is effectively over.
type Sweeper struct {
	store  SweepStore
	clock  clock.Clock
	logger *zap.Logger
}

func NewSweeper(store SweepStore, c clock.Clock, l *zap.Logger) *Sweeper {
	if c == nil {
		c = clock.System{}
	}
	return &Sweeper{store: store, clock: c, logger: logger.OrNop(l)}
}

// SweepOnce evaluates every open motion in its own transaction. A failure on
// one motion is logged and leaves it open for the next sweep.
func (s *Sweeper) SweepOnce(ctx context.Context) (SweepReport, error) {
	start := time.Now()
	defer func() { metrics.ObserveSweep(time.Since(start).Seconds()) }()

	var report SweepReport
	ids, err := s.store.ListOpenMotionIDs(ctx)
	if err != nil {
		s.logger.Error("list open motions failed", zap.Error(err))
		return report, err
	}
	report.Scanned = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		now := s.clock.Now()
		ev, err := s.store.CloseIfComplete(ctx, id, now, func(m *motion.Motion, c motion.Counts) motion.Evaluation {
			return motion.Evaluate(m, c, now)
		})
		if err != nil {
			report.Failed++
			s.logger.Error("motion sweep failed",
				zap.String("motion_id", id.String()),
				zap.String("operation", "close_if_complete"),
				zap.Error(err),
			)
			continue
		}
		if !ev.Complete {
			continue
		}
		report.Closed = append(report.Closed, ClosedMotion{MotionID: id, Reason: ev.Reason, Outcome: ev.Outcome})
		metrics.IncMotionClosed(string(ev.Reason))
		s.logger.Info("motion closed",
			zap.String("motion_id", id.String()),
			zap.String("reason", string(ev.Reason)),
			zap.String("outcome", string(ev.Outcome)),
		)
	}

	if len(report.Closed) > 0 || report.Failed > 0 {
		s.logger.Info("sweep completed",
			zap.Int("scanned", report.Scanned),
			zap.Int("closed", len(report.Closed)),
			zap.Int("failed", report.Failed),
		)
	}
	return report, nil
}
