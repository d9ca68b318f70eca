package motion

import (
	"strings"
	"time"
)

// Threshold is the smallest count out of n that satisfies the majority rule.
// Final and projected outcomes are both derived from it.
func (m Majority) Threshold(n int) int {
	if n <= 0 {
		return 0
	}
	switch m {
	case MajorityTwoThirds:
		return (2*n + 2) / 3
	default:
		return n/2 + 1
	}
}

// YesNo extracts the Yes and No counts from a tally, matching labels case-insensitively.
func YesNo(tally map[string]int) (yes, no int) {
	for label, c := range tally {
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "yes":
			yes += c
		case "no":
			no += c
		}
	}
	return yes, no
}

// ComputeOutcome applies the majority rule to the cast Yes/No ballots.
func ComputeOutcome(majority Majority, tally map[string]int) Outcome {
	yes, no := YesNo(tally)
	n := yes + no
	if n == 0 {
		return OutcomeFailed
	}
	if majority == MajoritySimple && yes == no {
		return OutcomeTie
	}
	if yes >= majority.Threshold(n) {
		return OutcomePassed
	}
	return OutcomeFailed
}

// FinalOutcome is the outcome shown for a motion: the administrator's
// outcome when set, the computed one otherwise.
func FinalOutcome(m *Motion, tally map[string]int) Outcome {
	if m.Outcome != nil && m.Outcome.Valid() {
		return *m.Outcome
	}
	return ComputeOutcome(m.Majority, tally)
}

// Project reports whether the outcome is already locked in regardless of the
// ballots still outstanding.
func Project(majority Majority, c Counts) (Outcome, bool) {
	if c.Eligible <= 0 || c.Voted <= 0 {
		return "", false
	}
	yes, no := YesNo(c.Tally)
	threshold := majority.Threshold(c.Eligible)

	switch majority {
	case MajorityTwoThirds:
		if yes >= threshold {
			return OutcomePassed, true
		}
		if yes+c.Remaining() < threshold {
			return OutcomeFailed, true
		}
	default:
		if yes >= threshold {
			return OutcomePassed, true
		}
		if no >= threshold {
			return OutcomeFailed, true
		}
	}
	return "", false
}

type Evaluation struct {
	Complete bool
	Reason   CloseReason
	// Outcome is the projected outcome for early closes and the computed
	// outcome otherwise.
	Outcome Outcome
}

// Evaluate decides whether an open motion can be closed. Rules are checked in
// a fixed order: closing time, full turnout, locked outcome.
func Evaluate(m *Motion, c Counts, now time.Time) Evaluation {
	if m.Status != StatusOpen {
		return Evaluation{}
	}
	if !now.Before(m.ClosesAt) {
		return Evaluation{Complete: true, Reason: ReasonEndTimeReached, Outcome: ComputeOutcome(m.Majority, c.Tally)}
	}
	if c.Eligible > 0 && c.Remaining() <= 0 {
		return Evaluation{Complete: true, Reason: ReasonAllVotesCast, Outcome: ComputeOutcome(m.Majority, c.Tally)}
	}
	if outcome, ok := Project(m.Majority, c); ok {
		reason := ReasonEarlyThresholdFailed
		if outcome == OutcomePassed {
			reason = ReasonEarlyThresholdPassed
		}
		return Evaluation{Complete: true, Reason: reason, Outcome: outcome}
	}
	return Evaluation{}
}
