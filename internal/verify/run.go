// Package verify orchestrates one verification run: reference validation,
// candidate exploration, canonicalization, equivalence checking, and
// packaging the outcome as a Verdict.
//
// Run performs no decision logic of its own beyond sequencing; it is the
// adapter between the core algorithms and the external harness. It always
// terminates with a Verdict: every error kind, including a panic escaping
// a foreign candidate artifact, is captured as data, never re-raised into
// the caller.
package verify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lockstep-dev/lockstep/internal/explore"
	"github.com/lockstep-dev/lockstep/internal/isomorph"
	"github.com/lockstep-dev/lockstep/internal/machine"
)

// DefaultTimeout bounds one verification run's wall-clock time.
// The deadline is threaded through the explorer's BFS loop and the
// bijection search, both of which check it between discrete steps.
const DefaultTimeout = 10 * time.Second

// Config describes one verification run. Factory and Reference are
// required; zero bounds fall back to the explore package defaults.
type Config struct {
	// Factory produces fresh candidate instances.
	Factory explore.Factory

	// Reference is the expected machine and its naming policy.
	Reference machine.ReferenceSpec

	MaxStates int
	MaxDepth  int
	Timeout   time.Duration

	// Logger receives per-probe diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Run executes one verification run and always returns a Verdict.
//
// Independent runs share no mutable state and may execute concurrently;
// each run owns its candidate instances exclusively.
func Run(ctx context.Context, cfg Config) (verdict *Verdict) {
	start := time.Now()
	stats := Stats{}

	// The candidate artifact is foreign code; a panic inside State or Fire
	// must still surface as a verdict per the propagation policy.
	defer func() {
		if r := recover(); r != nil {
			verdict = fail(machine.NewError(machine.KindIntrospectionError,
				"candidate artifact panicked: %v", r), nil, stats)
			verdict.Stats.DurationMS = time.Since(start).Milliseconds()
		}
	}()

	if findings := machine.Validate(cfg.Reference); len(findings) > 0 {
		v := parseFailure(findings)
		v.Stats.DurationMS = time.Since(start).Milliseconds()
		return v
	}
	if cfg.Factory == nil {
		return fail(machine.NewError(machine.KindIntrospectionError,
			"no candidate factory supplied"), nil, stats)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var opts []explore.Option
	if cfg.MaxStates > 0 {
		opts = append(opts, explore.WithMaxStates(cfg.MaxStates))
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, explore.WithMaxDepth(cfg.MaxDepth))
	}
	opts = append(opts, explore.WithLogger(logger))

	explorer := explore.New(cfg.Factory, opts...)
	explored, err := explorer.Explore(ctx)
	stats.Probes = explorer.Probes()
	if err != nil {
		v := fail(err, nil, stats)
		v.Stats.DurationMS = time.Since(start).Milliseconds()
		return v
	}
	stats.States = len(explored.Nodes)
	stats.Edges = len(explored.Edges)

	cand := machine.Canonicalize(explored)
	ref := machine.Canonicalize(cfg.Reference.Graph)
	logger.Debug("graphs canonicalized",
		"candidate_states", len(cand.Nodes), "reference_states", len(ref.Nodes),
		"policy", cfg.Reference.Policy)

	var (
		mapping machine.Mapping
		diff    *machine.Diff
	)
	switch cfg.Reference.Policy {
	case machine.PolicyExact:
		mapping, diff, err = isomorph.Exact(cand, ref)
	case machine.PolicyStructural:
		mapping, diff, err = isomorph.Structural(ctx, cand, ref)
	default:
		err = machine.NewError(machine.KindParseError,
			"unknown naming policy %q", cfg.Reference.Policy)
	}

	stats.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		return fail(err, diff, stats)
	}
	return pass(mapping, stats)
}

// Describe renders a one-line human summary of a verdict.
func Describe(name string, v *Verdict) string {
	if v.Pass {
		return fmt.Sprintf("PASS %s (%d states, %d edges, %d probes)",
			name, v.Stats.States, v.Stats.Edges, v.Stats.Probes)
	}
	return fmt.Sprintf("FAIL %s: %s", name, v.Detail)
}
