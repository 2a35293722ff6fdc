package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/t262/internal/config"
	"github.com/roach88/t262/internal/corpus"
	"github.com/roach88/t262/internal/exceptions"
	"github.com/roach88/t262/internal/harness"
	"github.com/roach88/t262/internal/parser"
	"github.com/roach88/t262/internal/reconcile"
	"github.com/roach88/t262/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath        string
	Whitelist         string
	ParserKind        string
	ParserCommand     []string
	Features          []string
	Include           []string
	Jobs              int
	Database          string
	UpdateWhitelist   bool
	PruneUnrecognized bool

	// Parser overrides the configured backend (for testing).
	Parser parser.Parser
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [corpus-dir]",
		Short: "Run the corpus against the parser",
		Long: `Run every test in the corpus against the parser under test and compare
the outcomes with the whitelist file.

The corpus directory may also come from the config file.

Exit codes:
  0 - All scenarios allowed and no stale whitelist entries
      (or the whitelist file was updated with --update-whitelist)
  1 - Disallowed scenarios or stale whitelist entries
  2 - Command error (bad config, unreadable corpus, parser unavailable, etc.)

Examples:
  t262 run --parser-cmd ./bin/parse ./test262/test
  t262 run --config t262.cue --jobs 8
  t262 run --config t262.yaml --update-whitelist
  t262 run --parser treesitter --include 'language/**' ./test262/test`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "config file (.yaml, .yml or .cue)")
	cmd.Flags().StringVar(&opts.Whitelist, "whitelist", "", "whitelist file (default "+config.DefaultWhitelist+")")
	cmd.Flags().StringVar(&opts.ParserKind, "parser", "", "parser backend (command|treesitter)")
	cmd.Flags().StringArrayVar(&opts.ParserCommand, "parser-cmd", nil, "parser program and arguments (repeat for each argv element)")
	cmd.Flags().StringArrayVar(&opts.Features, "feature", nil, "syntax feature passed to the parser (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Include, "include", nil, "only run tests matching this glob (repeatable)")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 1, "number of concurrent probes")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.UpdateWhitelist, "update-whitelist", false, "rewrite the whitelist file to match this run")
	cmd.Flags().BoolVar(&opts.PruneUnrecognized, "prune-unrecognized", false, "with --update-whitelist, also remove stale entries")

	return cmd
}

func runHarness(opts *RunOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := resolveConfig(opts, args, cmd)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, "invalid configuration", err)
	}
	if cfg.Corpus == "" {
		return commandError(formatter, ErrCodeConfig, "invalid configuration",
			errors.New("no corpus directory given (argument or config corpus)"))
	}

	set, err := exceptions.Load(cfg.Whitelist)
	if err != nil {
		return commandError(formatter, ErrCodeWhitelist, "failed to load whitelist", err)
	}
	logger.Debug("whitelist loaded", "path", cfg.Whitelist, "entries", set.Len())

	p := opts.Parser
	if p == nil {
		p, err = buildParser(cfg)
		if err != nil {
			return commandError(formatter, ErrCodeParser, "failed to load parser", err)
		}
	}
	logger.Debug("parser ready", "parser", parser.Describe(p), "features", cfg.Features)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := corpus.Walk(ctx, cfg.Corpus, corpus.Options{Include: cfg.Include, Logger: logger})
	if err != nil {
		return commandError(formatter, ErrCodeCorpus, "failed to read corpus", err)
	}

	h, err := harness.New(harness.Options{
		Parser:   p,
		Features: cfg.Features,
		Jobs:     cfg.Jobs,
		Logger:   logger,
	})
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "failed to start harness", err)
	}

	outcome, err := h.Run(ctx, records, set)
	if err != nil {
		return commandError(formatter, ErrCodeInterrupted, "run cancelled", err)
	}
	summary := outcome.Summary

	report := RunReport{
		Passed:    summary.Passed,
		Corpus:    cfg.Corpus,
		Parser:    parser.Describe(p),
		Whitelist: cfg.Whitelist,
		Records:   outcome.Records,
		Scenarios: len(outcome.Results),
		Summary:   summary,
	}

	if cfg.Database != "" {
		if err := recordRun(ctx, cfg, &report, logger); err != nil {
			return commandError(formatter, ErrCodeDatabase, "failed to record run", err)
		}
	}

	if opts.UpdateWhitelist {
		edit := reconcile.Plan(summary)
		if opts.PruneUnrecognized {
			edit = edit.Prune(summary.Unrecognized)
		}
		report.Edit = &edit

		changed, err := reconcile.Apply(cfg.Whitelist, edit)
		if err != nil {
			return commandError(formatter, ErrCodeWriteFailed, "failed to update whitelist", err)
		}
		report.WhitelistUpdated = changed
		logger.Info("whitelist reconciled", "path", cfg.Whitelist,
			"removed", len(edit.Remove), "added", len(edit.Add), "changed", changed)
	}

	if opts.Format == "json" {
		write := formatter.Failed
		if summary.Passed || opts.UpdateWhitelist {
			write = formatter.Success
		}
		if err := write(report); err != nil {
			return WrapExitError(ExitCommandError, "write report", err)
		}
	} else {
		w := cmd.OutOrStdout()
		writeReport(w, summary, isTerminal(w))
		if opts.UpdateWhitelist {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Whitelist file updated.")
		}
	}

	// A successful update is itself the outcome of the command.
	if opts.UpdateWhitelist || summary.Passed {
		return nil
	}
	return NewExitError(ExitFailure, "conformance run failed")
}

// resolveConfig layers explicitly set flags over the config file (or the
// defaults when there is none) and validates the result.
func resolveConfig(opts *RunOptions, args []string, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Corpus = args[0]
	}
	if flags.Changed("whitelist") {
		cfg.Whitelist = opts.Whitelist
	}
	if flags.Changed("parser") {
		cfg.Parser.Kind = opts.ParserKind
	}
	if flags.Changed("parser-cmd") {
		cfg.Parser.Command = opts.ParserCommand
	}
	if flags.Changed("feature") {
		cfg.Features = opts.Features
	}
	if flags.Changed("include") {
		cfg.Include = opts.Include
	}
	if flags.Changed("jobs") {
		cfg.Jobs = opts.Jobs
	}
	if flags.Changed("db") {
		cfg.Database = opts.Database
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildParser loads the configured backend. A backend that cannot be loaded
// is a setup failure, reported before any scenario runs.
func buildParser(cfg config.Config) (parser.Parser, error) {
	switch cfg.Parser.Kind {
	case config.ParserTreeSitter:
		return parser.NewTreeSitter(), nil
	case config.ParserCommand:
		timeout, err := cfg.Parser.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		cmd, err := parser.NewCommand(cfg.Parser.Command, timeout)
		if err != nil {
			return nil, err
		}
		return cmd, nil
	default:
		return nil, fmt.Errorf("%w: unknown parser kind %q", parser.ErrUnavailable, cfg.Parser.Kind)
	}
}

// recordRun stores the run and, when a previous run exists, logs and reports
// the scenarios whose classification changed since it.
func recordRun(ctx context.Context, cfg config.Config, report *RunReport, logger *slog.Logger) error {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	run, err := st.WriteRun(ctx, store.RunRecord{
		Corpus:   report.Corpus,
		Parser:   report.Parser,
		Features: cfg.Features,
		Summary:  report.Summary,
	})
	if err != nil {
		return err
	}
	report.RunID = run.ID
	logger.Info("run recorded", "db", cfg.Database, "run", run.ID, "seq", run.Seq)

	runs, err := st.ListRuns(ctx, 2)
	if err != nil {
		return err
	}
	if len(runs) < 2 {
		return nil
	}

	changes, err := st.ChangedSince(ctx, runs[1].ID, run.ID)
	if err != nil {
		return err
	}
	report.Changes = changes
	for _, c := range changes {
		logger.Info("classification changed", "scenario", c.ScenarioID,
			"before", describeCell(c.Before), "after", describeCell(c.After))
	}
	return nil
}

func describeCell(c *store.Cell) string {
	if c == nil {
		return "absent"
	}
	if c.Allowed {
		return c.Category.String() + "/allowed"
	}
	return c.Category.String() + "/disallowed"
}
