package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"council-vote/internal/domain/motion"
)

func TestRecipients(t *testing.T) {
	got := Recipients([]string{" a@example.com", "B@example.com", "", "A@EXAMPLE.COM", "pm@example.com"}, "PM@example.com")
	want := []string{"a@example.com", "B@example.com", "pm@example.com"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := Recipients(nil, ""); len(got) != 0 {
		t.Fatalf("expected no recipients, got %v", got)
	}
	if got := Recipients(nil, "pm@example.com"); len(got) != 1 {
		t.Fatalf("property manager alone is a valid recipient set, got %v", got)
	}
}

func TestCompose(t *testing.T) {
	reason := motion.ReasonAllVotesCast
	m := &motion.Motion{
		ID:          uuid.MustParse("6f1c2b7e-0000-4000-8000-000000000001"),
		Reference:   "M-6F1C2B7E",
		Title:       "Fix <the> gate",
		Options:     []string{"Yes", "No", "Abstain"},
		Majority:    motion.MajoritySimple,
		Status:      motion.StatusClosed,
		CloseReason: &reason,
		ClosesAt:    time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC),
	}
	c := motion.Counts{Eligible: 3, Voted: 3, Tally: map[string]int{"Yes": 2, "No": 1}}

	msg, err := Compose(m, c, "https://vote.example.com/", "Harbour Property Management", []string{"a@example.com"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if msg.Subject != "Voting results: Fix <the> gate (M-6F1C2B7E)" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	link := "https://vote.example.com/motions/6f1c2b7e-0000-4000-8000-000000000001/results"
	for _, part := range []string{"Outcome: PASSED", "Eligible voters: 3", "Ballots cast: 3", "Abstain: 0", link, "Harbour Property Management"} {
		if !strings.Contains(msg.TextBody, part) {
			t.Fatalf("text body missing %q:\n%s", part, msg.TextBody)
		}
	}
	if !strings.Contains(msg.HTMLBody, "Fix &lt;the&gt; gate") || !strings.Contains(msg.HTMLBody, link) {
		t.Fatalf("html body must escape the title and carry the link:\n%s", msg.HTMLBody)
	}
}

func TestComposeUsesAdministratorOutcome(t *testing.T) {
	failed := motion.OutcomeFailed
	notes := "Quorum not reached"
	m := &motion.Motion{ID: uuid.New(), Title: "t", Options: []string{"Yes", "No"}, Majority: motion.MajoritySimple, Outcome: &failed, OutcomeNotes: &notes}
	msg, err := Compose(m, motion.Counts{Eligible: 1, Voted: 1, Tally: map[string]int{"Yes": 1}}, "http://x", "", []string{"a@example.com"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(msg.TextBody, "Outcome: FAILED") || !strings.Contains(msg.TextBody, "Notes: Quorum not reached") {
		t.Fatalf("unexpected text body:\n%s", msg.TextBody)
	}
}
