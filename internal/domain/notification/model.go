package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	// StatusNotApplicable is terminal for rows whose motion no longer exists.
	StatusNotApplicable Status = "not_applicable"
	// StatusAbandoned is terminal once a configured attempt cap is exhausted.
	StatusAbandoned Status = "abandoned"
)

func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusNotApplicable || s == StatusAbandoned
}

// Reasons recorded for skipped attempts.
const (
	ReasonDisabled               = "results_emails_disabled"
	ReasonPropertyManagerMissing = "property_manager_email_missing"
	ReasonNoRecipients           = "no_recipients"
	ReasonMotionNotFound         = "motion_not_found"
)

var (
	ErrNotFound = errors.New("notification not found")
	// ErrStale is returned when a row changed between read and write.
	ErrStale = errors.New("notification changed concurrently")
)

// Notification is the outbox row of one completed motion.
type Notification struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	MotionID      uuid.UUID  `json:"motion_id" db:"motion_id"`
	Status        Status     `json:"status" db:"status"`
	Attempts      int        `json:"attempts" db:"attempts"`
	NextAttemptAt time.Time  `json:"next_attempt_at" db:"next_attempt_at"`
	LastError     *string    `json:"last_error,omitempty" db:"last_error"`
	SentAt        *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// New returns a pending row due immediately.
func New(motionID uuid.UUID, now time.Time) Notification {
	return Notification{
		ID:            uuid.New(),
		MotionID:      motionID,
		Status:        StatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

var backoffSchedule = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	60 * time.Minute,
}

// Backoff is the delay before the next attempt after the given number of
// failed attempts.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	if attempts > len(backoffSchedule) {
		return backoffSchedule[len(backoffSchedule)-1]
	}
	return backoffSchedule[attempts-1]
}

// Due reports whether a pending row may be attempted at now.
func (n *Notification) Due(now time.Time) bool {
	return n.Status == StatusPending && !n.NextAttemptAt.After(now)
}

// MarkSent is the success transition.
func (n *Notification) MarkSent(now time.Time) {
	n.Status = StatusSent
	n.SentAt = &now
	n.LastError = nil
	n.UpdatedAt = now
}

// MarkNotApplicable stops retries for a row that can never be delivered.
func (n *Notification) MarkNotApplicable(now time.Time, reason string) {
	n.Status = StatusNotApplicable
	n.LastError = &reason
	n.UpdatedAt = now
}

// RecordFailure counts a failed or skipped attempt and schedules the next
// one. With maxAttempts > 0 the row is abandoned once the cap is reached.
func (n *Notification) RecordFailure(now time.Time, reason string, maxAttempts int) {
	n.Attempts++
	n.LastError = &reason
	n.UpdatedAt = now
	if maxAttempts > 0 && n.Attempts >= maxAttempts {
		n.Status = StatusAbandoned
		return
	}
	n.NextAttemptAt = now.Add(Backoff(n.Attempts))
}

// Reset puts a row back to pending with a fresh attempt counter.
func (n *Notification) Reset(now time.Time) {
	n.Status = StatusPending
	n.Attempts = 0
	n.NextAttemptAt = now
	n.LastError = nil
	n.SentAt = nil
	n.UpdatedAt = now
}

type Repository interface {
	// Ensure inserts a pending row for motionID unless one exists.
	Ensure(ctx context.Context, motionID uuid.UUID, now time.Time) (bool, error)
	GetByMotion(ctx context.Context, motionID uuid.UUID) (*Notification, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]Notification, error)
	// Save writes the row's state if its stored status and attempts still
	// match prevStatus and prevAttempts, else returns ErrStale.
	Save(ctx context.Context, n *Notification, prevStatus Status, prevAttempts int) error
	// MotionsWithoutNotification lists closed or published motions lacking a row.
	MotionsWithoutNotification(ctx context.Context) ([]uuid.UUID, error)
}

// Sender delivers one message to all recipients.
type Sender interface {
	Send(ctx context.Context, to []string, subject, textBody, htmlBody string) error
}
