package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lockstep-dev/lockstep/internal/machine"
)

// ValidationResult holds validation results for JSON output.
type ValidationResult struct {
	Valid  bool                      `json:"valid"`
	Errors []machine.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <reference-file>",
		Short: "Check a reference spec for internal consistency",
		Long: `Validate loads a reference spec (.yaml or .cue) and reports every
well-formedness finding: undeclared initial state, dangling edge endpoints,
duplicate (source, event) pairs, unreachable states, unknown naming policy.
These are the same checks the verifier applies before exploration.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(rootOpts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	ref, err := loadReference(path)
	if err != nil {
		formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading reference", err)
	}

	findings := machine.Validate(ref)
	result := ValidationResult{Valid: len(findings) == 0, Errors: findings}

	if rootOpts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return WrapExitError(ExitCommandError, "writing output", err)
		}
	} else {
		if result.Valid {
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s (%d states, %d transitions, policy %s)\n",
				ref.Name, len(ref.Graph.Nodes), len(ref.Graph.Edges), ref.Policy)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "INVALID %s:\n", ref.Name)
			for _, f := range findings {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation errors", len(findings)))
	}
	return nil
}
