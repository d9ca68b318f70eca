package motion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"council-vote/internal/platform/clock"
)

var (
	ErrTitleRequired  = errors.New("title required")
	ErrInvalidOptions = errors.New("options must be unique and include Yes and No")
	ErrInvalidWindow  = errors.New("closes_at must be after opens_at")
	ErrInvalidRule    = errors.New("invalid required majority")
	ErrInvalidOutcome = errors.New("invalid outcome")
	ErrInvalidStatus  = errors.New("invalid motion status")
)

type Service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, c clock.Clock) *Service {
	if c == nil {
		c = clock.System{}
	}
	return &Service{repo: repo, clock: c}
}

func (s *Service) Create(ctx context.Context, m *Motion) error {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return ErrTitleRequired
	}
	if m.Majority == "" {
		m.Majority = MajoritySimple
	}
	if !m.Majority.Valid() {
		return ErrInvalidRule
	}
	if !m.ClosesAt.After(m.OpensAt) {
		return ErrInvalidWindow
	}
	opts, err := normalizeOptions(m.Options)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	m.ID = uuid.New()
	m.Reference = referenceFor(m.ID)
	m.Options = opts
	m.Status = StatusDraft
	m.Outcome = nil
	m.OutcomeNotes = nil
	m.CloseReason = nil
	m.ClosedAt = nil
	m.CreatedAt = now
	m.UpdatedAt = now
	return s.repo.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Motion, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status *Status) ([]Motion, error) {
	if status != nil && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, status)
}

// Advance moves a motion one step along draft -> open -> closed -> published.
// Closing by hand records the manual reason and enqueues the notification.
func (s *Service) Advance(ctx context.Context, id uuid.UUID, to Status) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !m.Status.CanAdvance(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, to)
	}
	now := s.clock.Now()
	if to == StatusClosed {
		return s.repo.CloseManually(ctx, id, now)
	}
	return s.repo.UpdateStatus(ctx, id, m.Status, to, now)
}

// SetOutcome records the administrator's outcome and notes, which take
// precedence over the computed outcome. A nil outcome clears the override.
func (s *Service) SetOutcome(ctx context.Context, id uuid.UUID, outcome *Outcome, notes *string) error {
	if outcome != nil && !outcome.Valid() {
		return ErrInvalidOutcome
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.Status != StatusClosed && m.Status != StatusPublished {
		return ErrOutcomeNotAllowed
	}
	return s.repo.SetOutcome(ctx, id, outcome, notes, s.clock.Now())
}

func (s *Service) Results(ctx context.Context, id uuid.UUID) (*Results, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.Counts(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildResults(m, c), nil
}

// PublicResults serves the tally only after voting has finished, so an open
// motion's running count stays with administrators.
func (s *Service) PublicResults(ctx context.Context, id uuid.UUID) (*Results, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != StatusClosed && m.Status != StatusPublished {
		return nil, ErrResultsNotPublic
	}
	c, err := s.repo.Counts(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildResults(m, c), nil
}

// BuildResults shapes counts in the motion's option order.
func BuildResults(m *Motion, c Counts) *Results {
	tally := make([]OptionCount, 0, len(m.Options))
	for _, o := range m.Options {
		tally = append(tally, OptionCount{Option: o, Votes: c.Tally[o]})
	}
	remaining := c.Remaining()
	if remaining < 0 {
		remaining = 0
	}
	return &Results{
		MotionID:        m.ID,
		Reference:       m.Reference,
		Status:          m.Status,
		Eligible:        c.Eligible,
		Voted:           c.Voted,
		Remaining:       remaining,
		Tally:           tally,
		Outcome:         FinalOutcome(m, c.Tally),
		ComputedOutcome: ComputeOutcome(m.Majority, c.Tally),
		OutcomeNotes:    m.OutcomeNotes,
		CloseReason:     m.CloseReason,
	}
}

func normalizeOptions(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, o := range in {
		o = strings.TrimSpace(o)
		key := strings.ToLower(o)
		if o == "" || seen[key] {
			return nil, ErrInvalidOptions
		}
		seen[key] = true
		out = append(out, o)
	}
	if len(out) == 0 {
		return []string{"Yes", "No"}, nil
	}
	if !seen["yes"] || !seen["no"] {
		return nil, ErrInvalidOptions
	}
	return out, nil
}

func referenceFor(id uuid.UUID) string {
	return "M-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}
