package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"council-vote/internal/domain/motion"
)

type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Recipients merges voter addresses in the given order with the property
// manager address, dropping blanks and case-insensitive duplicates.
func Recipients(voterEmails []string, propertyManager string) []string {
	out := make([]string, 0, len(voterEmails)+1)
	seen := make(map[string]bool, len(voterEmails)+1)
	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, addr)
	}
	for _, e := range voterEmails {
		add(e)
	}
	add(propertyManager)
	return out
}

var htmlTmpl = template.Must(template.New("results").Parse(`<!doctype html>
<html><body>
<h2>{{.Motion.Title}}</h2>
<p>Reference: {{.Motion.Reference}}</p>
<p>Outcome: <strong>{{.Outcome}}</strong></p>
{{if .Notes}}<p>Notes: {{.Notes}}</p>{{end}}
<table>
<tr><td>Eligible voters</td><td>{{.Results.Eligible}}</td></tr>
<tr><td>Ballots cast</td><td>{{.Results.Voted}}</td></tr>
{{range .Results.Tally}}<tr><td>{{.Option}}</td><td>{{.Votes}}</td></tr>
{{end}}</table>
<p><a href="{{.Link}}">View full results</a></p>
{{if .SignOff}}<p>{{.SignOff}}</p>{{end}}
</body></html>
`))

// Compose builds the results notification for a completed motion. A non-empty
// signOff closes both bodies.
func Compose(m *motion.Motion, c motion.Counts, baseURL, signOff string, to []string) (Message, error) {
	res := motion.BuildResults(m, c)
	outcome := strings.ToUpper(string(res.Outcome))
	link := fmt.Sprintf("%s/motions/%s/results", strings.TrimRight(baseURL, "/"), m.ID)
	var notes string
	if m.OutcomeNotes != nil {
		notes = *m.OutcomeNotes
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Voting has concluded for %q (%s).\n\n", m.Title, m.Reference)
	fmt.Fprintf(&text, "Outcome: %s\n", outcome)
	if notes != "" {
		fmt.Fprintf(&text, "Notes: %s\n", notes)
	}
	fmt.Fprintf(&text, "Eligible voters: %d\n", res.Eligible)
	fmt.Fprintf(&text, "Ballots cast: %d\n", res.Voted)
	for _, oc := range res.Tally {
		fmt.Fprintf(&text, "  %s: %d\n", oc.Option, oc.Votes)
	}
	fmt.Fprintf(&text, "\nFull results: %s\n", link)
	if signOff != "" {
		fmt.Fprintf(&text, "\n%s\n", signOff)
	}

	var html bytes.Buffer
	err := htmlTmpl.Execute(&html, map[string]any{
		"Motion":  m,
		"Results": res,
		"Outcome": outcome,
		"Notes":   notes,
		"Link":    link,
		"SignOff": signOff,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render html body: %w", err)
	}

	return Message{
		To:       to,
		Subject:  fmt.Sprintf("Voting results: %s (%s)", m.Title, m.Reference),
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
