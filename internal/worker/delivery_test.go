package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"council-vote/internal/domain/motion"
	"council-vote/internal/domain/notification"
	"council-vote/internal/platform/clock"
	"council-vote/internal/repository/memory"
)

type fakeSender struct {
	mu    sync.Mutex
	err   error
	block bool
	calls []notification.Message
}

func (s *fakeSender) Send(ctx context.Context, to []string, subject, textBody, htmlBody string) error {
	s.mu.Lock()
	s.calls = append(s.calls, notification.Message{To: to, Subject: subject, TextBody: textBody, HTMLBody: htmlBody})
	block, err := s.block, s.err
	s.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func defaultDeliveryConfig() DeliveryConfig {
	return DeliveryConfig{
		Enabled:              true,
		PropertyManagerName:  "Harbour Property Management",
		PropertyManagerEmail: "pm@example.com",
		BaseURL:              "https://vote.example.com",
		Timeout:              time.Second,
	}
}

// closedMotion seeds a motion and closes it through the sweeper, which
// enqueues its notification.
func closedMotion(t *testing.T, store *memory.Store, clk *clock.Manual, emails []string, choices ...string) seeded {
	t.Helper()
	s := seedMotion(t, store, motion.MajoritySimple, emails, choices...)
	if err := store.CloseManually(context.Background(), s.motion.ID, clk.Now()); err != nil {
		t.Fatalf("close: %v", err)
	}
	return s
}

func rowFor(t *testing.T, store *memory.Store, s seeded) *notification.Notification {
	t.Helper()
	n, err := store.GetByMotion(context.Background(), s.motion.ID)
	if err != nil {
		t.Fatalf("get notification: %v", err)
	}
	return n
}

func TestDeliveryEndToEnd(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	s := seedMotion(t, store, motion.MajoritySimple, []string{"a@example.com", "b@example.com"}, "Yes", "Yes")

	sweep, err := NewSweeper(store, clk, nil).SweepOnce(context.Background())
	if err != nil || len(sweep.Closed) != 1 || sweep.Closed[0].Reason != motion.ReasonAllVotesCast || sweep.Closed[0].Outcome != motion.OutcomePassed {
		t.Fatalf("unexpected sweep %+v %v", sweep, err)
	}

	sender := &fakeSender{}
	d := NewDelivery(store, store, store, sender, defaultDeliveryConfig(), clk, nil)
	report, err := d.ProcessDueOnce(context.Background(), 10)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if report.Sent != 1 || sender.count() != 1 {
		t.Fatalf("expected one send, got %+v with %d calls", report, sender.count())
	}
	msg := sender.calls[0]
	if strings.Join(msg.To, ",") != "a@example.com,b@example.com,pm@example.com" {
		t.Fatalf("unexpected recipients %v", msg.To)
	}
	if !strings.Contains(msg.TextBody, "Outcome: PASSED") || !strings.Contains(msg.TextBody, "/motions/"+s.motion.ID.String()+"/results") {
		t.Fatalf("unexpected body:\n%s", msg.TextBody)
	}

	n := rowFor(t, store, s)
	if n.Status != notification.StatusSent || n.SentAt == nil {
		t.Fatalf("expected sent row, got %+v", n)
	}

	clk.Advance(2 * time.Hour)
	if report, _ := d.ProcessDueOnce(context.Background(), 10); report.Processed != 0 || sender.count() != 1 {
		t.Fatalf("sent row must not be delivered again")
	}
}

func TestDeliveryBackoffOnFailure(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	s := closedMotion(t, store, clk, []string{"a@example.com"}, "Yes")

	sender := &fakeSender{err: errors.New("421 service not available")}
	d := NewDelivery(store, store, store, sender, defaultDeliveryConfig(), clk, nil)

	for i, wait := range []time.Duration{time.Minute, 5 * time.Minute, 15 * time.Minute, 30 * time.Minute, time.Hour, time.Hour} {
		report, err := d.ProcessDueOnce(context.Background(), 10)
		if err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
		if report.Retried != 1 {
			t.Fatalf("attempt %d: expected a retry, got %+v", i+1, report)
		}
		n := rowFor(t, store, s)
		if n.Attempts != i+1 || n.Status != notification.StatusPending || !n.NextAttemptAt.Equal(clk.Now().Add(wait)) {
			t.Fatalf("attempt %d: unexpected row %+v", i+1, n)
		}
		if n.LastError == nil || !strings.Contains(*n.LastError, "421") {
			t.Fatalf("attempt %d: last error not recorded", i+1)
		}

		clk.Advance(wait - time.Second)
		if report, _ := d.ProcessDueOnce(context.Background(), 10); report.Processed != 0 {
			t.Fatalf("attempt %d: row retried before backoff elapsed", i+1)
		}
		clk.Advance(time.Second)
	}

	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()
	report, _ := d.ProcessDueOnce(context.Background(), 10)
	if report.Sent != 1 || rowFor(t, store, s).Status != notification.StatusSent {
		t.Fatalf("expected recovery to sent, got %+v", report)
	}
}

func TestDeliverySkips(t *testing.T) {
	cases := []struct {
		name   string
		cfg    func(c *DeliveryConfig)
		emails []string
		reason string
	}{
		{"disabled", func(c *DeliveryConfig) { c.Enabled = false }, []string{"a@example.com"}, notification.ReasonDisabled},
		{"no property manager", func(c *DeliveryConfig) { c.PropertyManagerEmail = "" }, []string{"a@example.com"}, notification.ReasonPropertyManagerMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewStore()
			clk := clock.NewManual(t0)
			s := closedMotion(t, store, clk, tc.emails)
			cfg := defaultDeliveryConfig()
			tc.cfg(&cfg)
			sender := &fakeSender{}

			report, err := NewDelivery(store, store, store, sender, cfg, clk, nil).ProcessDueOnce(context.Background(), 10)
			if err != nil {
				t.Fatalf("process: %v", err)
			}
			n := rowFor(t, store, s)
			if report.Skipped != 1 || sender.count() != 0 {
				t.Fatalf("expected a skip without sending, got %+v", report)
			}
			if n.Status != notification.StatusPending || n.Attempts != 1 || *n.LastError != tc.reason || !n.NextAttemptAt.Equal(t0.Add(time.Minute)) {
				t.Fatalf("unexpected row %+v", n)
			}
		})
	}
}

func TestDeliveryRecipientsWithoutVoterEmails(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	s := closedMotion(t, store, clk, []string{"", "  "})
	sender := &fakeSender{}

	report, _ := NewDelivery(store, store, store, sender, defaultDeliveryConfig(), clk, nil).ProcessDueOnce(context.Background(), 10)
	if report.Sent != 1 || strings.Join(sender.calls[0].To, ",") != "pm@example.com" {
		t.Fatalf("property manager alone must receive the results, got %+v %v", report, sender.calls)
	}
	if rowFor(t, store, s).Status != notification.StatusSent {
		t.Fatalf("expected sent")
	}
}

func TestDeliveryMotionMissingNotApplicable(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	s := closedMotion(t, store, clk, []string{"a@example.com"})
	store.DeleteMotion(s.motion.ID)
	sender := &fakeSender{}
	d := NewDelivery(store, store, store, sender, defaultDeliveryConfig(), clk, nil)

	report, _ := d.ProcessDueOnce(context.Background(), 10)
	n := rowFor(t, store, s)
	if report.NotApplicable != 1 || n.Status != notification.StatusNotApplicable || *n.LastError != notification.ReasonMotionNotFound {
		t.Fatalf("unexpected result %+v row %+v", report, n)
	}
	clk.Advance(24 * time.Hour)
	if report, _ := d.ProcessDueOnce(context.Background(), 10); report.Processed != 0 || sender.count() != 0 {
		t.Fatalf("not applicable rows are terminal")
	}
}

func TestDeliveryTimeoutIsFailure(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	s := closedMotion(t, store, clk, []string{"a@example.com"})
	cfg := defaultDeliveryConfig()
	cfg.Timeout = 20 * time.Millisecond

	report, _ := NewDelivery(store, store, store, &fakeSender{block: true}, cfg, clk, nil).ProcessDueOnce(context.Background(), 10)
	n := rowFor(t, store, s)
	if report.Retried != 1 || n.Attempts != 1 || !strings.Contains(*n.LastError, context.DeadlineExceeded.Error()) {
		t.Fatalf("timeout must count as a failure, got %+v row %+v", report, n)
	}
}

func TestDeliveryStoreErrorOnOneRow(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	bad := closedMotion(t, store, clk, []string{"a@example.com"})
	good := closedMotion(t, store, clk, []string{"b@example.com"})
	store.FailCounts[bad.motion.ID] = errors.New("connection reset")
	sender := &fakeSender{}

	report, err := NewDelivery(store, store, store, sender, defaultDeliveryConfig(), clk, nil).ProcessDueOnce(context.Background(), 10)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if report.Processed != 2 || report.Sent != 1 || report.Retried != 0 || report.Errors != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if rowFor(t, store, good).Status != notification.StatusSent {
		t.Fatalf("failure on one row must not affect the other")
	}
	row := rowFor(t, store, bad)
	if row.Status != notification.StatusPending || row.Attempts != 0 || !row.NextAttemptAt.Equal(t0) || row.LastError != nil {
		t.Fatalf("store error must leave the row unchanged, got %+v", row)
	}
	if sender.count() != 1 {
		t.Fatalf("expected only the healthy row to be sent, got %d", sender.count())
	}
}

func TestDeliveryStoreErrorNeverAbandons(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	s := closedMotion(t, store, clk, []string{"a@example.com"})
	store.FailRecipients[s.motion.ID] = errors.New("connection reset")
	cfg := defaultDeliveryConfig()
	cfg.MaxAttempts = 1
	d := NewDelivery(store, store, store, &fakeSender{}, cfg, clk, nil)

	for i := 0; i < 3; i++ {
		report, err := d.ProcessDueOnce(context.Background(), 10)
		if err != nil || report.Errors != 1 || report.Abandoned != 0 {
			t.Fatalf("tick %d: unexpected report %+v %v", i, report, err)
		}
		clk.Advance(time.Minute)
	}
	if row := rowFor(t, store, s); row.Status != notification.StatusPending || row.Attempts != 0 {
		t.Fatalf("expected untouched pending row, got %+v", row)
	}

	delete(store.FailRecipients, s.motion.ID)
	if report, _ := d.ProcessDueOnce(context.Background(), 10); report.Sent != 1 {
		t.Fatalf("expected send once the store recovers, got %+v", report)
	}
}

func TestDeliveryAbandonsAtCap(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	s := closedMotion(t, store, clk, []string{"a@example.com"})
	cfg := defaultDeliveryConfig()
	cfg.MaxAttempts = 2
	d := NewDelivery(store, store, store, &fakeSender{err: errors.New("boom")}, cfg, clk, nil)

	_, _ = d.ProcessDueOnce(context.Background(), 10)
	clk.Advance(time.Minute)
	report, _ := d.ProcessDueOnce(context.Background(), 10)
	if report.Abandoned != 1 || rowFor(t, store, s).Status != notification.StatusAbandoned {
		t.Fatalf("expected abandoned after 2 attempts, got %+v", report)
	}
}

func TestDeliveryRespectsLimit(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	for i := 0; i < 3; i++ {
		closedMotion(t, store, clk, []string{"a@example.com"})
	}
	sender := &fakeSender{}
	d := NewDelivery(store, store, store, sender, defaultDeliveryConfig(), clk, nil)

	if report, _ := d.ProcessDueOnce(context.Background(), 2); report.Sent != 2 {
		t.Fatalf("expected 2 sends, got %+v", report)
	}
	if report, _ := d.ProcessDueOnce(context.Background(), 2); report.Sent != 1 {
		t.Fatalf("expected the remaining send, got %+v", report)
	}
}

func TestDeliverySaveIsConditional(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	s := closedMotion(t, store, clk, []string{"a@example.com"})

	stale := rowFor(t, store, s)
	fresh := rowFor(t, store, s)
	fresh.MarkSent(t0)
	if err := store.Save(context.Background(), fresh, notification.StatusPending, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	stale.RecordFailure(t0, "late", 0)
	if err := store.Save(context.Background(), stale, notification.StatusPending, 0); !errors.Is(err, notification.ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
}
