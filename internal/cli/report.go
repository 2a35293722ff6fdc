package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/t262/internal/harness"
	"github.com/roach88/t262/internal/reconcile"
	"github.com/roach88/t262/internal/store"
)

// RunReport is the JSON payload of the run command.
type RunReport struct {
	Passed    bool   `json:"passed"`
	Corpus    string `json:"corpus"`
	Parser    string `json:"parser"`
	Whitelist string `json:"whitelist"`
	Records   int    `json:"records"`
	Scenarios int    `json:"scenarios"`

	Summary *harness.Summary `json:"summary"`

	// RunID is set when the run was stored in history.
	RunID   string         `json:"run_id,omitempty"`
	Changes []store.Change `json:"changes,omitempty"`

	// Edit is set when --update-whitelist was given.
	Edit             *reconcile.Edit `json:"whitelist_edit,omitempty"`
	WhitelistUpdated bool            `json:"whitelist_updated"`
}

type reportLine struct {
	count int
	label string
}

type badSection struct {
	ids   []string
	label string
}

func resultIDs(results []harness.ProbeResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

// writeReport prints the human-readable summary of a run. With color set,
// allowed lines are green and disallowed lines red.
func writeReport(w io.Writer, s *harness.Summary, color bool) {
	good := []reportLine{
		{len(s.Allowed.Success), "valid programs parsed without error"},
		{len(s.Allowed.Failure), "invalid programs produced a parsing error"},
		{len(s.Allowed.FalsePositive), "invalid programs did not produce a parsing error (and allowed by the whitelist file)"},
		{len(s.Allowed.FalseNegative), "valid programs produced a parsing error (and allowed by the whitelist file)"},
	}

	bad := []badSection{
		{resultIDs(s.Disallowed.Success), "valid programs parsed without error (in violation of the whitelist file)"},
		{resultIDs(s.Disallowed.Failure), "invalid programs produced a parsing error (in violation of the whitelist file)"},
		{resultIDs(s.Disallowed.FalsePositive), "invalid programs did not produce a parsing error (without a corresponding entry in the whitelist file)"},
		{resultIDs(s.Disallowed.FalseNegative), "valid programs produced a parsing error (without a corresponding entry in the whitelist file)"},
		{s.Unrecognized, "non-existent programs specified in the whitelist file"},
	}

	paint := func(style lipgloss.Style, line string) string { return line }
	var goodStyle, badStyle lipgloss.Style
	if color {
		r := lipgloss.NewRenderer(w)
		goodStyle = r.NewStyle().Foreground(lipgloss.Color("2"))
		badStyle = r.NewStyle().Foreground(lipgloss.Color("1"))
		paint = func(style lipgloss.Style, line string) string { return style.Render(line) }
	}

	fmt.Fprintln(w, "Testing complete.")
	fmt.Fprintln(w, "Summary:")
	for _, l := range good {
		fmt.Fprintln(w, paint(goodStyle, fmt.Sprintf(" ✔ %d %s", l.count, l.label)))
	}

	if s.Passed {
		return
	}

	var details strings.Builder
	fmt.Fprintln(w)
	for _, sec := range bad {
		if len(sec.ids) == 0 {
			continue
		}
		desc := fmt.Sprintf("%d %s", len(sec.ids), sec.label)
		fmt.Fprintln(w, paint(badStyle, " ✘ "+desc))
		details.WriteString("   " + desc + ":\n")
		for _, id := range sec.ids {
			details.WriteString("   " + id + "\n")
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Details:")
	fmt.Fprint(w, details.String())
}
