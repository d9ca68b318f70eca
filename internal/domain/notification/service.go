package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"council-vote/internal/platform/clock"
	"council-vote/internal/platform/logger"
)

type Service struct {
	repo   Repository
	clock  clock.Clock
	logger *zap.Logger
}

func NewService(repo Repository, c clock.Clock, l *zap.Logger) *Service {
	if c == nil {
		c = clock.System{}
	}
	return &Service{repo: repo, clock: c, logger: logger.OrNop(l)}
}

// EnsureNotification enqueues the results notification of a motion once.
// Repeated calls are no-ops.
func (s *Service) EnsureNotification(ctx context.Context, motionID uuid.UUID) (bool, error) {
	created, err := s.repo.Ensure(ctx, motionID, s.clock.Now())
	if err != nil {
		return false, fmt.Errorf("ensure notification for %s: %w", motionID, err)
	}
	return created, nil
}

// Backfill enqueues notifications for closed or published motions that never got one.
func (s *Service) Backfill(ctx context.Context) (int, error) {
	ids, err := s.repo.MotionsWithoutNotification(ctx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, id := range ids {
		ok, err := s.EnsureNotification(ctx, id)
		if err != nil {
			s.logger.Error("backfill notification failed", zap.String("motion_id", id.String()), zap.Error(err))
			continue
		}
		if ok {
			created++
		}
	}
	s.logger.Info("notification backfill completed", zap.Int("created", created), zap.Int("candidates", len(ids)))
	return created, nil
}

func (s *Service) Get(ctx context.Context, motionID uuid.UUID) (*Notification, error) {
	return s.repo.GetByMotion(ctx, motionID)
}

// Renotify schedules another delivery for a motion whose notification is
// already terminal, e.g. after an outcome correction. Pending rows are left as is.
func (s *Service) Renotify(ctx context.Context, motionID uuid.UUID) (*Notification, error) {
	n, err := s.repo.GetByMotion(ctx, motionID)
	if err != nil {
		return nil, err
	}
	if !n.Status.Terminal() {
		return n, nil
	}
	prevStatus, prevAttempts := n.Status, n.Attempts
	n.Reset(s.clock.Now())
	if err := s.repo.Save(ctx, n, prevStatus, prevAttempts); err != nil {
		return nil, err
	}
	s.logger.Info("notification re-enqueued",
		zap.String("motion_id", motionID.String()),
		zap.String("previous_status", string(prevStatus)),
	)
	return n, nil
}
