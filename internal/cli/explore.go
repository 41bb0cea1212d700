package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockstep-dev/lockstep/internal/explore"
	"github.com/lockstep-dev/lockstep/internal/loader"
	"github.com/lockstep-dev/lockstep/internal/machine"
)

// ExploreOptions holds flags for the explore command.
type ExploreOptions struct {
	Candidate string
	MaxStates int
	MaxDepth  int
	Timeout   time.Duration
}

// NewExploreCommand creates the explore command.
func NewExploreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExploreOptions{}

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore a candidate machine and print its discovered graph",
		Long: `Explore probes the candidate transition table as a black box and
prints every reachable state and transition, without comparing against a
reference. Useful for inspecting what the verifier would actually see.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Candidate, "candidate", "", "candidate transition table (.yaml)")
	cmd.Flags().IntVar(&opts.MaxStates, "max-states", 0, "discovered-state bound (0 = default)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "replay-depth bound (0 = default)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "wall-clock deadline")
	cmd.MarkFlagRequired("candidate")

	return cmd
}

func runExplore(rootOpts *RootOptions, opts *ExploreOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
	logger := newLogger(cmd, rootOpts.Verbose)

	candidate, err := loader.CandidateFromYAML(opts.Candidate)
	if err != nil {
		formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading candidate", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	var exploreOpts []explore.Option
	if opts.MaxStates > 0 {
		exploreOpts = append(exploreOpts, explore.WithMaxStates(opts.MaxStates))
	}
	if opts.MaxDepth > 0 {
		exploreOpts = append(exploreOpts, explore.WithMaxDepth(opts.MaxDepth))
	}
	exploreOpts = append(exploreOpts, explore.WithLogger(logger))

	explorer := explore.New(candidate, exploreOpts...)
	graph, err := explorer.Explore(ctx)
	if err != nil {
		kind, _ := machine.KindOf(err)
		formatter.Error(string(kind), err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	canonical := machine.Canonicalize(graph)
	if rootOpts.Format == "json" {
		return formatter.Success(canonical)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderGraph(canonical))
	return nil
}

// renderGraph formats a canonical graph for text output.
func renderGraph(g machine.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "initial: %s\n", g.Initial)
	fmt.Fprintf(&b, "states (%d):\n", len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Initial {
			fmt.Fprintf(&b, "  %s (initial)\n", n.Label)
		} else {
			fmt.Fprintf(&b, "  %s\n", n.Label)
		}
	}
	fmt.Fprintf(&b, "transitions (%d):\n", len(g.Edges))
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "  %s\n", e)
	}
	return strings.TrimRight(b.String(), "\n")
}
