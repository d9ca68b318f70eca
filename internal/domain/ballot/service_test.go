package ballot_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"council-vote/internal/domain/ballot"
	"council-vote/internal/domain/motion"
	"council-vote/internal/platform/clock"
	"council-vote/internal/repository/memory"
)

var opensAt = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *ballot.Service
	store  *memory.Store
	clock  *clock.Manual
	motion motion.Motion
	tokens []ballot.IssuedToken
}

func newFixture(t *testing.T, status motion.Status, recipients ...ballot.TokenRequest) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewManual(opensAt.Add(time.Hour))
	m := motion.Motion{
		ID:        uuid.New(),
		Reference: "M-TEST0001",
		Title:     "Install bike racks",
		Options:   []string{"Yes", "No", "Abstain"},
		OpensAt:   opensAt,
		ClosesAt:  opensAt.Add(48 * time.Hour),
		Majority:  motion.MajoritySimple,
		Status:    motion.StatusDraft,
		CreatedAt: opensAt,
		UpdatedAt: opensAt,
	}
	store.PutMotion(m)

	svc := ballot.NewService(store, store, clk, "test-secret", nil)
	if len(recipients) == 0 {
		recipients = []ballot.TokenRequest{{Name: "Unit 1", Email: "one@example.com"}}
	}
	tokens, err := svc.IssueTokens(context.Background(), m.ID, recipients)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	m.Status = status
	store.PutMotion(m)
	return &fixture{svc: svc, store: store, clock: clk, motion: m, tokens: tokens}
}

func (f *fixture) submit(token, choice string) (*ballot.Ballot, error) {
	return f.svc.SubmitVote(context.Background(), ballot.SubmitRequest{
		MotionID:   f.motion.ID,
		Token:      token,
		Choice:     choice,
		UserAgent:  "test-agent",
		ClientAddr: "203.0.113.7",
	})
}

func TestSubmitVoteRecordsBallot(t *testing.T) {
	f := newFixture(t, motion.StatusOpen)
	b, err := f.submit(f.tokens[0].Value, " abstain ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if b.Choice != "Abstain" || b.TokenID != f.tokens[0].ID {
		t.Fatalf("unexpected ballot %+v", b)
	}
	if b.ClientHash == nil || *b.ClientHash == "203.0.113.7" || len(*b.ClientHash) != 64 {
		t.Fatalf("client address must be stored as a keyed hash, got %v", b.ClientHash)
	}

	tok, err := f.store.GetToken(context.Background(), f.tokens[0].ID)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if tok.Status != ballot.TokenUsed || tok.UsedAt == nil {
		t.Fatalf("token must be used, got %+v", tok)
	}
}

func TestSubmitVoteRejections(t *testing.T) {
	cases := []struct {
		name   string
		status motion.Status
		setup  func(t *testing.T, f *fixture) (token, choice string)
		want   *ballot.IneligibleError
	}{
		{
			name:   "unknown token",
			status: motion.StatusOpen,
			setup:  func(t *testing.T, f *fixture) (string, string) { return "not-a-token", "Yes" },
			want:   ballot.ErrTokenNotFound,
		},
		{
			name:   "empty token",
			status: motion.StatusOpen,
			setup:  func(t *testing.T, f *fixture) (string, string) { return "   ", "Yes" },
			want:   ballot.ErrTokenNotFound,
		},
		{
			name:   "revoked token",
			status: motion.StatusOpen,
			setup: func(t *testing.T, f *fixture) (string, string) {
				_ = f.svc.Revoke(context.Background(), f.tokens[0].ID)
				return f.tokens[0].Value, "Yes"
			},
			want: ballot.ErrTokenRevoked,
		},
		{
			name:   "draft motion",
			status: motion.StatusDraft,
			setup:  func(t *testing.T, f *fixture) (string, string) { return f.tokens[0].Value, "Yes" },
			want:   ballot.ErrMotionNotOpen,
		},
		{
			name:   "before opening",
			status: motion.StatusOpen,
			setup: func(t *testing.T, f *fixture) (string, string) {
				f.clock.Set(opensAt.Add(-time.Second))
				return f.tokens[0].Value, "Yes"
			},
			want: ballot.ErrVotingNotStarted,
		},
		{
			name:   "after closing",
			status: motion.StatusOpen,
			setup: func(t *testing.T, f *fixture) (string, string) {
				f.clock.Set(f.motion.ClosesAt.Add(time.Second))
				return f.tokens[0].Value, "Yes"
			},
			want: ballot.ErrVotingClosed,
		},
		{
			name:   "unknown choice",
			status: motion.StatusOpen,
			setup:  func(t *testing.T, f *fixture) (string, string) { return f.tokens[0].Value, "Maybe" },
			want:   ballot.ErrUnknownChoice,
		},
		{
			name:   "used token checked before closed motion",
			status: motion.StatusOpen,
			setup: func(t *testing.T, f *fixture) (string, string) {
				if _, err := f.submit(f.tokens[0].Value, "Yes"); err != nil {
					t.Fatalf("first submit: %v", err)
				}
				m := f.motion
				m.Status = motion.StatusClosed
				f.store.PutMotion(m)
				return f.tokens[0].Value, "No"
			},
			want: ballot.ErrTokenUsed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.status)
			token, choice := tc.setup(t, f)
			_, err := f.submit(token, choice)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var inel *ballot.IneligibleError
			if !errors.As(err, &inel) || inel.Reason != tc.want.Reason {
				t.Fatalf("expected reason %s, got %v", tc.want.Reason, err)
			}
		})
	}
}

func TestTokenForOtherMotionNotFound(t *testing.T) {
	f := newFixture(t, motion.StatusOpen)
	_, err := f.svc.SubmitVote(context.Background(), ballot.SubmitRequest{
		MotionID: uuid.New(),
		Token:    f.tokens[0].Value,
		Choice:   "Yes",
	})
	if !errors.Is(err, ballot.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestConcurrentSubmissionsSingleBallot(t *testing.T) {
	f := newFixture(t, motion.StatusOpen)
	const n = 50

	var wg sync.WaitGroup
	var ok, used, other int32
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			choice := "Yes"
			if i%2 == 1 {
				choice = "No"
			}
			_, err := f.submit(f.tokens[0].Value, choice)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, ballot.ErrTokenUsed):
				atomic.AddInt32(&used, 1)
			default:
				atomic.AddInt32(&other, 1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if ok != 1 || used != n-1 || other != 0 {
		t.Fatalf("expected 1 success and %d token_used, got ok=%d used=%d other=%d", n-1, ok, used, other)
	}
	if got := len(f.store.Ballots(f.motion.ID)); got != 1 {
		t.Fatalf("expected exactly one stored ballot, got %d", got)
	}
}

func TestIssueTokens(t *testing.T) {
	f := newFixture(t, motion.StatusOpen,
		ballot.TokenRequest{Name: "A", Email: "a@example.com", Unit: "1A"},
		ballot.TokenRequest{Name: "B"},
	)
	if len(f.tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(f.tokens))
	}
	if f.tokens[0].Value == "" || f.tokens[0].Value == f.tokens[1].Value || len(f.tokens[0].Value) != 43 {
		t.Fatalf("token values must be distinct 32-byte base64url strings")
	}
	if f.tokens[1].RecipientEmail != nil {
		t.Fatalf("blank email must be stored as nil")
	}

	if _, err := f.svc.IssueTokens(context.Background(), f.motion.ID, nil); !errors.Is(err, ballot.ErrNoTokens) {
		t.Fatalf("expected ErrNoTokens, got %v", err)
	}
	m := f.motion
	m.Status = motion.StatusClosed
	f.store.PutMotion(m)
	if _, err := f.svc.IssueTokens(context.Background(), m.ID, []ballot.TokenRequest{{Name: "late"}}); !errors.Is(err, ballot.ErrMotionFinished) {
		t.Fatalf("expected ErrMotionFinished, got %v", err)
	}
	if _, err := f.svc.IssueTokens(context.Background(), uuid.New(), []ballot.TokenRequest{{Name: "x"}}); !errors.Is(err, motion.ErrNotFound) {
		t.Fatalf("expected motion.ErrNotFound, got %v", err)
	}
}

func TestRevokeOnlyActive(t *testing.T) {
	f := newFixture(t, motion.StatusOpen)
	ctx := context.Background()
	if err := f.svc.Revoke(ctx, f.tokens[0].ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := f.svc.Revoke(ctx, f.tokens[0].ID); !errors.Is(err, ballot.ErrTokenNotActive) {
		t.Fatalf("expected ErrTokenNotActive, got %v", err)
	}
	if err := f.svc.Revoke(ctx, uuid.New()); !errors.Is(err, ballot.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

type flakySender struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (s *flakySender) Send(_ context.Context, to []string, subject, textBody, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, to[0])
	if s.fail[to[0]] {
		return errors.New("mailbox unavailable")
	}
	return nil
}

func TestSendInvitations(t *testing.T) {
	f := newFixture(t, motion.StatusOpen,
		ballot.TokenRequest{Name: "A", Email: "a@example.com"},
		ballot.TokenRequest{Name: "B", Email: "b@example.com"},
		ballot.TokenRequest{Name: "C"},
	)
	sender := &flakySender{fail: map[string]bool{"b@example.com": true}}
	ctx := context.Background()

	report, err := f.svc.SendInvitations(ctx, f.motion.ID, sender, "https://vote.example.com/")
	if err != nil {
		t.Fatalf("send invitations: %v", err)
	}
	if report.Sent != 1 || report.Failed != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	tokens, _ := f.svc.ListTokens(ctx, f.motion.ID)
	byEmail := map[string]ballot.VoterToken{}
	for _, tok := range tokens {
		if tok.RecipientEmail != nil {
			byEmail[*tok.RecipientEmail] = tok
		}
	}
	if a := byEmail["a@example.com"]; !a.EmailSent || a.EmailSentAt == nil || a.EmailError != nil {
		t.Fatalf("expected a@ marked sent, got %+v", a)
	}
	if b := byEmail["b@example.com"]; b.EmailSent || b.EmailError == nil {
		t.Fatalf("expected b@ failure recorded, got %+v", b)
	}

	sender.fail = nil
	report, _ = f.svc.SendInvitations(ctx, f.motion.ID, sender, "https://vote.example.com")
	if report.Sent != 1 || report.Skipped != 2 {
		t.Fatalf("retry must only send the failed invitation, got %+v", report)
	}
}

func TestCheckEligibilityOrder(t *testing.T) {
	now := opensAt.Add(time.Hour)
	m := &motion.Motion{ID: uuid.New(), Status: motion.StatusClosed, Options: []string{"Yes", "No"}, OpensAt: opensAt, ClosesAt: opensAt.Add(time.Hour)}
	tok := &ballot.VoterToken{ID: uuid.New(), MotionID: m.ID, Status: ballot.TokenRevoked}

	if _, err := ballot.CheckEligibility(tok, m, m.ID, "bogus", now); !errors.Is(err, ballot.ErrTokenRevoked) {
		t.Fatalf("token state is checked before motion state, got %v", err)
	}
	tok.Status = ballot.TokenActive
	if _, err := ballot.CheckEligibility(tok, m, m.ID, "bogus", now); !errors.Is(err, ballot.ErrMotionNotOpen) {
		t.Fatalf("motion state is checked before the window, got %v", err)
	}
	m.Status = motion.StatusOpen
	if label, err := ballot.CheckEligibility(tok, m, m.ID, "NO", now); err != nil || label != "No" {
		t.Fatalf("closing instant is inclusive, got %q %v", label, err)
	}
}
