package motion_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"council-vote/internal/domain/motion"
	"council-vote/internal/platform/clock"
	"council-vote/internal/repository/memory"
)

var now = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func newService() (*motion.Service, *memory.Store) {
	store := memory.NewStore()
	return motion.NewService(store, clock.NewManual(now)), store
}

func validMotion() *motion.Motion {
	return &motion.Motion{
		Title:    "Repaint the hallway",
		OpensAt:  now,
		ClosesAt: now.Add(72 * time.Hour),
	}
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newService()
	m := validMotion()
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Status != motion.StatusDraft || m.Majority != motion.MajoritySimple {
		t.Fatalf("unexpected defaults %+v", m)
	}
	if len(m.Options) != 2 || m.Options[0] != "Yes" || m.Options[1] != "No" {
		t.Fatalf("expected Yes/No options, got %v", m.Options)
	}
	if len(m.Reference) != 10 || m.Reference[:2] != "M-" {
		t.Fatalf("unexpected reference %q", m.Reference)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService()
	cases := []struct {
		name   string
		mutate func(m *motion.Motion)
		want   error
	}{
		{"title", func(m *motion.Motion) { m.Title = "  " }, motion.ErrTitleRequired},
		{"window", func(m *motion.Motion) { m.ClosesAt = m.OpensAt }, motion.ErrInvalidWindow},
		{"majority", func(m *motion.Motion) { m.Majority = "unanimous" }, motion.ErrInvalidRule},
		{"missing no", func(m *motion.Motion) { m.Options = []string{"Yes", "Abstain"} }, motion.ErrInvalidOptions},
		{"duplicate", func(m *motion.Motion) { m.Options = []string{"Yes", "No", "yes"} }, motion.ErrInvalidOptions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMotion()
			tc.mutate(m)
			if err := svc.Create(context.Background(), m); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAdvanceFollowsLifecycle(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	m := validMotion()
	if err := svc.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Advance(ctx, m.ID, motion.StatusClosed); !errors.Is(err, motion.ErrInvalidTransition) {
		t.Fatalf("draft cannot skip to closed, got %v", err)
	}
	for _, to := range []motion.Status{motion.StatusOpen, motion.StatusClosed, motion.StatusPublished} {
		if err := svc.Advance(ctx, m.ID, to); err != nil {
			t.Fatalf("advance to %s: %v", to, err)
		}
	}

	got, err := svc.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != motion.StatusPublished || got.CloseReason == nil || *got.CloseReason != motion.ReasonManual {
		t.Fatalf("unexpected motion %+v", got)
	}
	if store.NotificationCount(m.ID) != 1 {
		t.Fatalf("manual close must enqueue exactly one notification")
	}
	if err := svc.Advance(ctx, m.ID, motion.StatusOpen); !errors.Is(err, motion.ErrInvalidTransition) {
		t.Fatalf("published is final, got %v", err)
	}
}

func TestSetOutcome(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	m := validMotion()
	_ = svc.Create(ctx, m)

	passed := motion.OutcomePassed
	if err := svc.SetOutcome(ctx, m.ID, &passed, nil); !errors.Is(err, motion.ErrOutcomeNotAllowed) {
		t.Fatalf("draft outcome must be rejected, got %v", err)
	}
	_ = svc.Advance(ctx, m.ID, motion.StatusOpen)
	_ = svc.Advance(ctx, m.ID, motion.StatusClosed)

	bad := motion.Outcome("maybe")
	if err := svc.SetOutcome(ctx, m.ID, &bad, nil); !errors.Is(err, motion.ErrInvalidOutcome) {
		t.Fatalf("expected ErrInvalidOutcome, got %v", err)
	}
	notes := "quorum confirmed by chair"
	if err := svc.SetOutcome(ctx, m.ID, &passed, &notes); err != nil {
		t.Fatalf("set outcome: %v", err)
	}
	res, err := svc.Results(ctx, m.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if res.Outcome != motion.OutcomePassed || res.ComputedOutcome != motion.OutcomeFailed || res.OutcomeNotes == nil {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestPublicResultsOnlyAfterClose(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	m := validMotion()
	_ = svc.Create(ctx, m)

	for _, to := range []motion.Status{"", motion.StatusOpen} {
		if to != "" {
			_ = svc.Advance(ctx, m.ID, to)
		}
		if _, err := svc.PublicResults(ctx, m.ID); !errors.Is(err, motion.ErrResultsNotPublic) {
			t.Fatalf("expected ErrResultsNotPublic before close, got %v", err)
		}
	}
	if _, err := svc.Results(ctx, m.ID); err != nil {
		t.Fatalf("admin results on an open motion: %v", err)
	}

	_ = svc.Advance(ctx, m.ID, motion.StatusClosed)
	if _, err := svc.PublicResults(ctx, m.ID); err != nil {
		t.Fatalf("closed results: %v", err)
	}
	_ = svc.Advance(ctx, m.ID, motion.StatusPublished)
	if _, err := svc.PublicResults(ctx, m.ID); err != nil {
		t.Fatalf("published results: %v", err)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _ := newService()
	bogus := motion.Status("archived")
	if _, err := svc.List(context.Background(), &bogus); !errors.Is(err, motion.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestBuildResultsOrdersByOptions(t *testing.T) {
	m := &motion.Motion{Options: []string{"Yes", "No", "Abstain"}, Majority: motion.MajoritySimple, Status: motion.StatusOpen}
	res := motion.BuildResults(m, motion.Counts{Eligible: 5, Voted: 4, Tally: map[string]int{"No": 1, "Yes": 2, "Abstain": 1}})
	if res.Remaining != 1 || len(res.Tally) != 3 || res.Tally[2].Option != "Abstain" || res.Tally[0].Votes != 2 {
		t.Fatalf("unexpected results %+v", res)
	}
}
