package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/t262/internal/corpus"
	"github.com/roach88/t262/internal/harness"
)

// ScenariosOptions holds flags for the scenarios command.
type ScenariosOptions struct {
	*RootOptions
	Include []string
}

// NewScenariosCommand creates the scenarios command.
func NewScenariosCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenariosOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenarios <corpus-dir>",
		Short: "List the scenarios a corpus yields",
		Long: `List the scenario identifiers generated from each test's metadata,
without running a parser. Useful for checking test flags and for writing
whitelist entries by hand.

Examples:
  t262 scenarios ./test262/test
  t262 scenarios ./test262/test --include 'language/module-code/**' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Include, "include", nil, "only list tests matching this glob (repeatable)")

	return cmd
}

func listScenarios(opts *ScenariosOptions, root string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	records, err := corpus.Walk(cmd.Context(), root, corpus.Options{Include: opts.Include, Logger: logger})
	if err != nil {
		return commandError(formatter, ErrCodeCorpus, "failed to read corpus", err)
	}

	scenarios := harness.GenerateAll(records)
	logger.Debug("scenarios generated", "records", len(records), "scenarios", len(scenarios))

	if opts.Format == "json" {
		return formatter.Success(scenarios)
	}

	w := cmd.OutOrStdout()
	for _, sc := range scenarios {
		if sc.ExpectedError {
			fmt.Fprintf(w, "%s\tearly error\n", sc.ID)
			continue
		}
		fmt.Fprintln(w, sc.ID)
	}
	return nil
}
