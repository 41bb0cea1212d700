package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lockstep-dev/lockstep/internal/journal"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	Journal string
	Limit   int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:           "runs",
		Short:         "List journaled verification runs, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal database path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list")
	cmd.MarkFlagRequired("journal")

	return cmd
}

func runRuns(rootOpts *RootOptions, opts *RunsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if _, err := os.Stat(opts.Journal); err != nil {
		formatter.Error("E001", fmt.Sprintf("journal not found: %s", opts.Journal), nil)
		return WrapExitError(ExitCommandError, "opening journal", err)
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		formatter.Error("E002", err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening journal", err)
	}
	defer j.Close()

	runs, err := j.List(cmd.Context(), opts.Limit)
	if err != nil {
		formatter.Error("E002", err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	if rootOpts.Format == "json" {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no journaled runs")
		return nil
	}
	for _, r := range runs {
		status := "PASS"
		if !r.Pass {
			status = "FAIL " + r.Reason
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s/%s  %s  %dms\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, r.Reference, r.Policy, status, r.DurationMS)
	}
	return nil
}
