package motion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusClosed, StatusPublished:
		return true
	}
	return false
}

// next is the only status each status may advance to.
var next = map[Status]Status{
	StatusDraft:  StatusOpen,
	StatusOpen:   StatusClosed,
	StatusClosed: StatusPublished,
}

// CanAdvance reports whether to is the direct successor of s.
func (s Status) CanAdvance(to Status) bool {
	n, ok := next[s]
	return ok && n == to
}

type Majority string

const (
	MajoritySimple    Majority = "simple"
	MajorityTwoThirds Majority = "two_thirds"
)

func (m Majority) Valid() bool {
	return m == MajoritySimple || m == MajorityTwoThirds
}

type Outcome string

const (
	OutcomePassed Outcome = "passed"
	OutcomeFailed Outcome = "failed"
	OutcomeTie    Outcome = "tie"
)

func (o Outcome) Valid() bool {
	return o == OutcomePassed || o == OutcomeFailed || o == OutcomeTie
}

type CloseReason string

const (
	ReasonEndTimeReached       CloseReason = "end_time_reached"
	ReasonAllVotesCast         CloseReason = "all_votes_cast"
	ReasonEarlyThresholdPassed CloseReason = "early_threshold_passed"
	ReasonEarlyThresholdFailed CloseReason = "early_threshold_failed"
	ReasonManual               CloseReason = "manual"
)

var (
	ErrNotFound          = errors.New("motion not found")
	ErrInvalidTransition = errors.New("invalid motion status transition")
	ErrStatusConflict    = errors.New("motion status changed concurrently")
	ErrOutcomeNotAllowed = errors.New("outcome can only be set on closed or published motions")
	ErrResultsNotPublic  = errors.New("results are available once the motion is closed")
)

type Motion struct {
	ID           uuid.UUID    `json:"id"`
	Reference    string       `json:"reference"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Options      []string     `json:"options"`
	OpensAt      time.Time    `json:"opens_at"`
	ClosesAt     time.Time    `json:"closes_at"`
	Majority     Majority     `json:"required_majority"`
	Status       Status       `json:"status"`
	Outcome      *Outcome     `json:"outcome,omitempty"`
	OutcomeNotes *string      `json:"outcome_notes,omitempty"`
	CloseReason  *CloseReason `json:"close_reason,omitempty"`
	ClosedAt     *time.Time   `json:"closed_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Option returns the configured label matching choice case-insensitively.
func (m *Motion) Option(choice string) (string, bool) {
	choice = strings.TrimSpace(choice)
	for _, o := range m.Options {
		if strings.EqualFold(o, choice) {
			return o, true
		}
	}
	return "", false
}

// WithinWindow reports whether t lies in [OpensAt, ClosesAt].
func (m *Motion) WithinWindow(t time.Time) bool {
	return !t.Before(m.OpensAt) && !t.After(m.ClosesAt)
}

// Counts is the eligibility and ballot snapshot of one motion.
type Counts struct {
	Eligible int            `json:"eligible"`
	Voted    int            `json:"voted"`
	Tally    map[string]int `json:"tally"`
}

func (c Counts) Remaining() int {
	return c.Eligible - c.Voted
}

type OptionCount struct {
	Option string `json:"option"`
	Votes  int    `json:"votes"`
}

// Results is the read shape served to dashboards.
type Results struct {
	MotionID        uuid.UUID     `json:"motion_id"`
	Reference       string        `json:"reference"`
	Status          Status        `json:"status"`
	Eligible        int           `json:"eligible"`
	Voted           int           `json:"voted"`
	Remaining       int           `json:"remaining"`
	Tally           []OptionCount `json:"tally"`
	Outcome         Outcome       `json:"outcome"`
	ComputedOutcome Outcome       `json:"computed_outcome"`
	OutcomeNotes    *string       `json:"outcome_notes,omitempty"`
	CloseReason     *CloseReason  `json:"close_reason,omitempty"`
}

type Repository interface {
	Create(ctx context.Context, m *Motion) error
	GetByID(ctx context.Context, id uuid.UUID) (*Motion, error)
	List(ctx context.Context, status *Status) ([]Motion, error)
	// UpdateStatus moves a motion from -> to and fails with ErrStatusConflict
	// when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error
	// CloseManually closes an open motion and enqueues its notification atomically.
	CloseManually(ctx context.Context, id uuid.UUID, at time.Time) error
	SetOutcome(ctx context.Context, id uuid.UUID, outcome *Outcome, notes *string, at time.Time) error
	Counts(ctx context.Context, id uuid.UUID) (Counts, error)
}
