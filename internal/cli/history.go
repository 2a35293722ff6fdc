package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/t262/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string
}

// RunDetail is the JSON payload of history --run.
type RunDetail struct {
	Run          store.Run      `json:"run"`
	Results      []store.Result `json:"results"`
	Unrecognized []string       `json:"unrecognized"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `Show runs recorded with "t262 run --db".

Without --run, lists runs newest first. With --run, shows that run's
disallowed results and stale whitelist entries.

Examples:
  t262 history --db runs.db
  t262 history --db runs.db --limit 5
  t262 history --db runs.db --run 01920c3e-8f6a-7cc2-9d7e-2b7f4c1a0e55`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one run's details")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return commandError(formatter, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return commandError(formatter, ErrCodeDatabase, "failed to list runs", err)
		}
		if opts.Format == "json" {
			return formatter.Success(runs)
		}
		writeRuns(cmd.OutOrStdout(), runs)
		return nil
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return commandError(formatter, ErrCodeDatabase, "run not found", fmt.Errorf("no run with id %q", opts.RunID))
	}
	if err != nil {
		return commandError(formatter, ErrCodeDatabase, "failed to read run", err)
	}
	results, err := st.ReadResults(ctx, run.ID)
	if err != nil {
		return commandError(formatter, ErrCodeDatabase, "failed to read results", err)
	}
	unrecognized, err := st.ReadUnrecognized(ctx, run.ID)
	if err != nil {
		return commandError(formatter, ErrCodeDatabase, "failed to read results", err)
	}

	disallowed := []store.Result{}
	for _, r := range results {
		if !r.Allowed {
			disallowed = append(disallowed, r)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(RunDetail{Run: run, Results: disallowed, Unrecognized: unrecognized})
	}
	writeRunDetail(cmd.OutOrStdout(), run, disallowed, unrecognized)
	return nil
}

func verdict(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

func writeRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tRESULT\tSCENARIOS\tALLOWED\tDISALLOWED\tSTALE\tPARSER")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.Seq, r.ID, verdict(r.Passed), r.Scenarios, r.Allowed, r.Disallowed, r.Unrecognized, r.Parser)
	}
	tw.Flush()
}

func writeRunDetail(w io.Writer, run store.Run, disallowed []store.Result, unrecognized []string) {
	fmt.Fprintf(w, "Run %d (%s): %s\n", run.Seq, run.ID, verdict(run.Passed))
	fmt.Fprintf(w, "Corpus:   %s\n", run.Corpus)
	fmt.Fprintf(w, "Parser:   %s\n", run.Parser)
	fmt.Fprintf(w, "Features: %s\n", strings.Join(run.Features, ", "))
	fmt.Fprintf(w, "Scenarios: %d allowed, %d disallowed\n", run.Allowed, run.Disallowed)

	if len(disallowed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Disallowed:")
		for _, r := range disallowed {
			fmt.Fprintf(w, "   %s\t%s\n", r.Category, r.ScenarioID)
		}
	}
	if len(unrecognized) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Not found in corpus:")
		for _, id := range unrecognized {
			fmt.Fprintf(w, "   %s\n", id)
		}
	}
}
