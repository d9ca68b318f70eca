// Package memory is an in-process implementation of every repository, used
// by tests and local runs without a database. A single mutex plays the role
// of the database transaction.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"council-vote/internal/domain/ballot"
	"council-vote/internal/domain/motion"
	"council-vote/internal/domain/notification"
)

type Store struct {
	mu sync.Mutex

	motions       map[uuid.UUID]motion.Motion
	tokens        map[uuid.UUID]ballot.VoterToken
	tokensByValue map[string]uuid.UUID
	ballots       map[uuid.UUID]ballot.Ballot // keyed by token id
	notifications map[uuid.UUID]notification.Notification
	byMotion      map[uuid.UUID]uuid.UUID

	// FailCounts makes Counts fail for the listed motions.
	FailCounts     map[uuid.UUID]error
	// FailRecipients makes VoterEmails fail for the listed motions.
	FailRecipients map[uuid.UUID]error
}

func NewStore() *Store {
	return &Store{
		motions:        make(map[uuid.UUID]motion.Motion),
		tokens:         make(map[uuid.UUID]ballot.VoterToken),
		tokensByValue:  make(map[string]uuid.UUID),
		ballots:        make(map[uuid.UUID]ballot.Ballot),
		notifications:  make(map[uuid.UUID]notification.Notification),
		byMotion:       make(map[uuid.UUID]uuid.UUID),
		FailCounts:     make(map[uuid.UUID]error),
		FailRecipients: make(map[uuid.UUID]error),
	}
}

// motions

func (s *Store) Create(_ context.Context, m *motion.Motion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motions[m.ID] = cloneMotion(*m)
	return nil
}

// PutMotion stores m as is, bypassing service validation.
func (s *Store) PutMotion(m motion.Motion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motions[m.ID] = cloneMotion(m)
}

// DeleteMotion removes a motion row, leaving its tokens and outbox row behind.
func (s *Store) DeleteMotion(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.motions, id)
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*motion.Motion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.motions[id]
	if !ok {
		return nil, motion.ErrNotFound
	}
	c := cloneMotion(m)
	return &c, nil
}

func (s *Store) List(_ context.Context, status *motion.Status) ([]motion.Motion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []motion.Motion{}
	for _, m := range s.motions {
		if status != nil && m.Status != *status {
			continue
		}
		res = append(res, cloneMotion(m))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (s *Store) UpdateStatus(_ context.Context, id uuid.UUID, from, to motion.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.motions[id]
	if !ok {
		return motion.ErrNotFound
	}
	if m.Status != from {
		return motion.ErrStatusConflict
	}
	m.Status = to
	m.UpdatedAt = at
	s.motions[id] = m
	return nil
}

func (s *Store) CloseManually(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.motions[id]
	if !ok {
		return motion.ErrNotFound
	}
	if m.Status != motion.StatusOpen {
		return motion.ErrStatusConflict
	}
	s.closeLocked(&m, motion.ReasonManual, at)
	return nil
}

func (s *Store) SetOutcome(_ context.Context, id uuid.UUID, outcome *motion.Outcome, notes *string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.motions[id]
	if !ok {
		return motion.ErrNotFound
	}
	if m.Status != motion.StatusClosed && m.Status != motion.StatusPublished {
		return motion.ErrOutcomeNotAllowed
	}
	m.Outcome = outcome
	m.OutcomeNotes = notes
	m.UpdatedAt = at
	s.motions[id] = cloneMotion(m)
	return nil
}

func (s *Store) Counts(_ context.Context, id uuid.UUID) (motion.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailCounts[id]; err != nil {
		return motion.Counts{}, err
	}
	return s.countsLocked(id), nil
}

func (s *Store) ListOpenMotionIDs(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, m := range s.motions {
		if m.Status == motion.StatusOpen {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (s *Store) CloseIfComplete(
	_ context.Context,
	id uuid.UUID,
	now time.Time,
	decide func(m *motion.Motion, c motion.Counts) motion.Evaluation,
) (motion.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.motions[id]
	if !ok {
		return motion.Evaluation{}, motion.ErrNotFound
	}
	if m.Status != motion.StatusOpen {
		return motion.Evaluation{}, nil
	}
	if err := s.FailCounts[id]; err != nil {
		return motion.Evaluation{}, err
	}
	ev := decide(&m, s.countsLocked(id))
	if !ev.Complete {
		return ev, nil
	}
	s.closeLocked(&m, ev.Reason, now)
	return ev, nil
}

func (s *Store) closeLocked(m *motion.Motion, reason motion.CloseReason, at time.Time) {
	m.Status = motion.StatusClosed
	m.CloseReason = &reason
	m.ClosedAt = &at
	m.UpdatedAt = at
	s.motions[m.ID] = cloneMotion(*m)
	s.ensureLocked(m.ID, at)
}

func (s *Store) countsLocked(id uuid.UUID) motion.Counts {
	c := motion.Counts{Tally: make(map[string]int)}
	for _, t := range s.tokens {
		if t.MotionID == id && t.Status != ballot.TokenRevoked {
			c.Eligible++
		}
	}
	for _, b := range s.ballots {
		if b.MotionID == id {
			c.Voted++
			c.Tally[b.Choice]++
		}
	}
	return c
}

// ballots and tokens

func (s *Store) Cast(_ context.Context, tokenValue string, fn ballot.CastFunc) (*ballot.Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokenID, ok := s.tokensByValue[tokenValue]
	if !ok {
		return nil, ballot.ErrTokenNotFound
	}
	t := s.tokens[tokenID]
	m, ok := s.motions[t.MotionID]
	if !ok {
		return nil, ballot.ErrTokenNotFound
	}
	mc := cloneMotion(m)
	b, err := fn(&t, &mc)
	if err != nil {
		return nil, err
	}
	if _, dup := s.ballots[t.ID]; dup || t.Status != ballot.TokenActive {
		return nil, ballot.ErrTokenUsed
	}
	s.ballots[t.ID] = *b
	t.Status = ballot.TokenUsed
	usedAt := b.SubmittedAt
	t.UsedAt = &usedAt
	s.tokens[t.ID] = t
	return b, nil
}

func (s *Store) CreateTokens(_ context.Context, tokens []ballot.VoterToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tokens {
		s.tokens[t.ID] = t
		s.tokensByValue[t.Value] = t.ID
	}
	return nil
}

func (s *Store) GetToken(_ context.Context, id uuid.UUID) (*ballot.VoterToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return nil, ballot.ErrTokenNotFound
	}
	return &t, nil
}

func (s *Store) ListTokens(_ context.Context, motionID uuid.UUID) ([]ballot.VoterToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokensLocked(motionID), nil
}

func (s *Store) tokensLocked(motionID uuid.UUID) []ballot.VoterToken {
	res := []ballot.VoterToken{}
	for _, t := range s.tokens {
		if t.MotionID == motionID {
			res = append(res, t)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID.String() < res[j].ID.String()
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res
}

func (s *Store) Revoke(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return ballot.ErrTokenNotFound
	}
	if t.Status != ballot.TokenActive {
		return ballot.ErrTokenNotActive
	}
	t.Status = ballot.TokenRevoked
	s.tokens[id] = t
	return nil
}

func (s *Store) RecordInvitation(_ context.Context, id uuid.UUID, sentAt *time.Time, sendErr *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return ballot.ErrTokenNotFound
	}
	if sentAt != nil {
		t.EmailSent = true
		t.EmailSentAt = sentAt
	}
	t.EmailError = sendErr
	s.tokens[id] = t
	return nil
}

func (s *Store) VoterEmails(_ context.Context, motionID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailRecipients[motionID]; err != nil {
		return nil, err
	}
	var emails []string
	for _, t := range s.tokensLocked(motionID) {
		if t.RecipientEmail != nil && strings.TrimSpace(*t.RecipientEmail) != "" {
			emails = append(emails, *t.RecipientEmail)
		}
	}
	return emails, nil
}

// Ballots returns the stored ballots of a motion.
func (s *Store) Ballots(motionID uuid.UUID) []ballot.Ballot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []ballot.Ballot
	for _, b := range s.ballots {
		if b.MotionID == motionID {
			res = append(res, b)
		}
	}
	return res
}

// notifications

func (s *Store) Ensure(_ context.Context, motionID uuid.UUID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(motionID, now), nil
}

func (s *Store) ensureLocked(motionID uuid.UUID, now time.Time) bool {
	if _, ok := s.byMotion[motionID]; ok {
		return false
	}
	n := notification.New(motionID, now)
	s.notifications[n.ID] = n
	s.byMotion[motionID] = n.ID
	return true
}

func (s *Store) GetByMotion(_ context.Context, motionID uuid.UUID) (*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byMotion[motionID]
	if !ok {
		return nil, notification.ErrNotFound
	}
	n := s.notifications[id]
	return &n, nil
}

func (s *Store) ListDue(_ context.Context, now time.Time, limit int) ([]notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []notification.Notification
	for _, n := range s.notifications {
		if n.Due(now) {
			due = append(due, n)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].NextAttemptAt.Equal(due[j].NextAttemptAt) {
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		}
		return due[i].NextAttemptAt.Before(due[j].NextAttemptAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *Store) Save(_ context.Context, n *notification.Notification, prevStatus notification.Status, prevAttempts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.notifications[n.ID]
	if !ok {
		return notification.ErrNotFound
	}
	if cur.Status != prevStatus || cur.Attempts != prevAttempts {
		return notification.ErrStale
	}
	s.notifications[n.ID] = *n
	return nil
}

func (s *Store) MotionsWithoutNotification(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, m := range s.motions {
		if m.Status != motion.StatusClosed && m.Status != motion.StatusPublished {
			continue
		}
		if _, ok := s.byMotion[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// NotificationCount returns the number of outbox rows for a motion.
func (s *Store) NotificationCount(motionID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.MotionID == motionID {
			count++
		}
	}
	return count
}

func cloneMotion(m motion.Motion) motion.Motion {
	m.Options = append([]string(nil), m.Options...)
	return m
}
