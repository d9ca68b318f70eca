package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"council-vote/internal/domain/motion"
	"council-vote/internal/domain/notification"
	"council-vote/internal/metrics"
	"council-vote/internal/platform/clock"
	"council-vote/internal/platform/logger"
)

type MotionSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*motion.Motion, error)
	Counts(ctx context.Context, id uuid.UUID) (motion.Counts, error)
}

type RecipientSource interface {
	VoterEmails(ctx context.Context, motionID uuid.UUID) ([]string, error)
}

type DeliveryConfig struct {
	Enabled              bool
	PropertyManagerName  string
	PropertyManagerEmail string
	BaseURL              string
	Timeout              time.Duration
	MaxAttempts          int
}

type DeliveryReport struct {
	Processed     int `json:"processed"`
	Sent          int `json:"sent"`
	Retried       int `json:"retried"`
	Skipped       int `json:"skipped"`
	NotApplicable int `json:"not_applicable"`
	Abandoned     int `json:"abandoned"`
	Errors        int `json:"errors"`
}

// Delivery sends results notifications for due outbox rows.
type Delivery struct {
	outbox     notification.Repository
	motions    MotionSource
	recipients RecipientSource
	sender     notification.Sender
	cfg        DeliveryConfig
	clock      clock.Clock
	logger     *zap.Logger
}

func NewDelivery(
	outbox notification.Repository,
	motions MotionSource,
	recipients RecipientSource,
	sender notification.Sender,
	cfg DeliveryConfig,
	c clock.Clock,
	l *zap.Logger,
) *Delivery {
	if c == nil {
		c = clock.System{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Delivery{
		outbox:     outbox,
		motions:    motions,
		recipients: recipients,
		sender:     sender,
		cfg:        cfg,
		clock:      c,
		logger:     logger.OrNop(l),
	}
}

// skipError marks a configuration condition that is retried like a failure.
type skipError struct{ reason string }

func (e skipError) Error() string { return e.reason }

// storeError is a read failure while preparing a message. The row is left
// untouched so the next tick picks it up again.
type storeError struct {
	operation string
	err       error
}

func (e storeError) Error() string { return e.operation + ": " + e.err.Error() }

func (e storeError) Unwrap() error { return e.err }

// ProcessDueOnce attempts up to limit due notifications. Delivery failures
// are recorded on the rows; only the initial listing error is returned.
func (d *Delivery) ProcessDueOnce(ctx context.Context, limit int) (DeliveryReport, error) {
	var report DeliveryReport
	if limit <= 0 {
		limit = 20
	}
	due, err := d.outbox.ListDue(ctx, d.clock.Now(), limit)
	if err != nil {
		d.logger.Error("list due notifications failed", zap.Error(err))
		return report, err
	}

	for i := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++
		d.processOne(ctx, &due[i], &report)
	}

	if report.Processed > 0 {
		d.logger.Info("delivery cycle completed",
			zap.Int("processed", report.Processed),
			zap.Int("sent", report.Sent),
			zap.Int("retried", report.Retried),
			zap.Int("skipped", report.Skipped),
			zap.Int("errors", report.Errors),
		)
	}
	return report, nil
}

func (d *Delivery) processOne(ctx context.Context, n *notification.Notification, report *DeliveryReport) {
	log := d.logger.With(
		zap.String("notification_id", n.ID.String()),
		zap.String("motion_id", n.MotionID.String()),
	)
	prevStatus, prevAttempts := n.Status, n.Attempts

	m, err := d.motions.GetByID(ctx, n.MotionID)
	if errors.Is(err, motion.ErrNotFound) {
		n.MarkNotApplicable(d.clock.Now(), notification.ReasonMotionNotFound)
		if d.save(ctx, log, n, prevStatus, prevAttempts, report) {
			report.NotApplicable++
			metrics.IncNotification("not_applicable")
			log.Warn("notification motion missing, not applicable")
		}
		return
	}
	if err != nil {
		report.Errors++
		log.Error("prepare notification failed", zap.String("operation", "load_motion"), zap.Error(err))
		return
	}

	sendErr := d.deliver(ctx, m)
	var storeErr storeError
	if errors.As(sendErr, &storeErr) {
		report.Errors++
		log.Error("prepare notification failed", zap.String("operation", storeErr.operation), zap.Error(storeErr.err))
		return
	}
	now := d.clock.Now()
	if sendErr == nil {
		n.MarkSent(now)
		if d.save(ctx, log, n, prevStatus, prevAttempts, report) {
			report.Sent++
			metrics.IncNotification("sent")
			log.Info("results notification sent")
		}
		return
	}

	var skip skipError
	isSkip := errors.As(sendErr, &skip)
	n.RecordFailure(now, sendErr.Error(), d.cfg.MaxAttempts)
	if !d.save(ctx, log, n, prevStatus, prevAttempts, report) {
		return
	}

	fields := []zap.Field{
		zap.String("reason", sendErr.Error()),
		zap.Int("attempts", n.Attempts),
	}
	switch {
	case n.Status == notification.StatusAbandoned:
		report.Abandoned++
		metrics.IncNotification("abandoned")
		log.Warn("results notification abandoned", fields...)
	case isSkip:
		report.Skipped++
		metrics.IncNotification("skipped")
		log.Info("results notification skipped", append(fields, zap.Time("next_attempt_at", n.NextAttemptAt))...)
	default:
		report.Retried++
		metrics.IncNotification("failed")
		log.Warn("results notification failed", append(fields, zap.Time("next_attempt_at", n.NextAttemptAt))...)
	}
}

// deliver resolves recipients, composes and sends the message. Store reads
// happen before the send and fail with storeError.
func (d *Delivery) deliver(ctx context.Context, m *motion.Motion) error {
	if !d.cfg.Enabled {
		return skipError{notification.ReasonDisabled}
	}
	if d.cfg.PropertyManagerEmail == "" {
		return skipError{notification.ReasonPropertyManagerMissing}
	}

	emails, err := d.recipients.VoterEmails(ctx, m.ID)
	if err != nil {
		return storeError{operation: "load_recipients", err: err}
	}
	to := notification.Recipients(emails, d.cfg.PropertyManagerEmail)
	if len(to) == 0 {
		return skipError{notification.ReasonNoRecipients}
	}

	counts, err := d.motions.Counts(ctx, m.ID)
	if err != nil {
		return storeError{operation: "load_counts", err: err}
	}
	msg, err := notification.Compose(m, counts, d.cfg.BaseURL, d.cfg.PropertyManagerName, to)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()
	if err := d.sender.Send(sendCtx, msg.To, msg.Subject, msg.TextBody, msg.HTMLBody); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

func (d *Delivery) save(
	ctx context.Context,
	log *zap.Logger,
	n *notification.Notification,
	prevStatus notification.Status,
	prevAttempts int,
	report *DeliveryReport,
) bool {
	if err := d.outbox.Save(ctx, n, prevStatus, prevAttempts); err != nil {
		report.Errors++
		log.Error("save notification failed", zap.String("status", string(n.Status)), zap.Error(err))
		return false
	}
	return true
}
