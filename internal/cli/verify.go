package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockstep-dev/lockstep/internal/journal"
	"github.com/lockstep-dev/lockstep/internal/loader"
	"github.com/lockstep-dev/lockstep/internal/machine"
	"github.com/lockstep-dev/lockstep/internal/verify"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	Reference string
	Candidate string
	Policy    string
	MaxStates int
	MaxDepth  int
	Timeout   time.Duration
	Journal   string
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a candidate machine against a reference spec",
		Long: `Verify explores the candidate transition table as a black box,
canonicalizes the discovered graph, and checks equivalence against the
reference under its naming policy. Exit code 0 means the candidate passed,
1 means it failed (or the reference is malformed), 2 means the command
itself could not run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Reference, "reference", "", "reference spec file (.yaml or .cue)")
	cmd.Flags().StringVar(&opts.Candidate, "candidate", "", "candidate transition table (.yaml)")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "override naming policy (exact|structural)")
	cmd.Flags().IntVar(&opts.MaxStates, "max-states", 0, "discovered-state bound (0 = default)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "replay-depth bound (0 = default)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", verify.DefaultTimeout, "wall-clock deadline for the run")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the verdict to this journal database")
	cmd.MarkFlagRequired("reference")
	cmd.MarkFlagRequired("candidate")

	return cmd
}

func runVerify(rootOpts *RootOptions, opts *VerifyOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
	logger := newLogger(cmd, rootOpts.Verbose)

	ref, err := loadReference(opts.Reference)
	if err != nil {
		formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading reference", err)
	}
	if opts.Policy != "" {
		ref.Policy = machine.NamingPolicy(opts.Policy)
	}

	candidate, err := loader.CandidateFromYAML(opts.Candidate)
	if err != nil {
		formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading candidate", err)
	}

	verdict := verify.Run(cmd.Context(), verify.Config{
		Factory:   candidate,
		Reference: ref,
		MaxStates: opts.MaxStates,
		MaxDepth:  opts.MaxDepth,
		Timeout:   opts.Timeout,
		Logger:    logger,
	})

	if opts.Journal != "" {
		if err := recordRun(cmd, opts.Journal, ref, verdict, formatter); err != nil {
			return WrapExitError(ExitCommandError, "recording run", err)
		}
	}

	if rootOpts.Format == "json" {
		if err := formatter.Success(verdict); err != nil {
			return WrapExitError(ExitCommandError, "writing output", err)
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), renderVerdict(ref.Name, verdict))
	}

	if !verdict.Pass {
		return NewExitError(ExitFailure, verdict.Detail)
	}
	return nil
}

// recordRun appends the verdict to the journal database.
func recordRun(cmd *cobra.Command, path string, ref machine.ReferenceSpec, v *verify.Verdict, formatter *OutputFormatter) error {
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	token, err := j.Record(cmd.Context(), journal.UUIDv7Generator{}, ref.Name, string(ref.Policy), v)
	if err != nil {
		return err
	}
	formatter.Verbosef("journaled run %s", token)
	return nil
}

// renderVerdict formats a verdict for text output.
func renderVerdict(name string, v *verify.Verdict) string {
	var b strings.Builder
	b.WriteString(verify.Describe(name, v))
	if v.Diff != nil && !v.Diff.Empty() {
		b.WriteString("\n")
		b.WriteString(v.Diff.String())
	}
	if v.Pass && len(v.Mapping) > 0 {
		b.WriteString("\nmapping:")
		for _, c := range sortedKeys(v.Mapping) {
			fmt.Fprintf(&b, "\n  %s -> %s", c, v.Mapping[c])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedKeys(m machine.Mapping) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// loadReference dispatches on file extension.
func loadReference(path string) (machine.ReferenceSpec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return loader.ReferenceFromCUE(path)
	default:
		return loader.ReferenceFromYAML(path)
	}
}
