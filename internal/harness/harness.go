package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/lockstep-dev/lockstep/internal/explore"
	"github.com/lockstep-dev/lockstep/internal/loader"
	"github.com/lockstep-dev/lockstep/internal/machine"
	"github.com/lockstep-dev/lockstep/internal/testutil"
	"github.com/lockstep-dev/lockstep/internal/verify"
)

// Result is the outcome of one scenario execution.
type Result struct {
	// Pass indicates the verdict matched the scenario's expectation.
	Pass bool `json:"pass"`

	// Verdict is the verification core's full output.
	Verdict *verify.Verdict `json:"verdict"`

	// Errors lists expectation mismatches. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// addError records an expectation mismatch and fails the result.
func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes one scenario: loads the reference and candidate, applies
// fault injection and policy overrides, runs the verification core, and
// checks the verdict against the scenario's expectation.
func Run(ctx context.Context, s *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ref, err := loadReference(s.resolve(s.Reference))
	if err != nil {
		return nil, err
	}
	if s.Policy != "" {
		ref.Policy = machine.NamingPolicy(s.Policy)
	}

	var factory explore.Factory
	table, err := loader.CandidateFromYAML(s.resolve(s.Candidate))
	if err != nil {
		return nil, err
	}
	factory = table
	if s.Fault != nil {
		factory = testutil.NewFlakyFactory(table, testutil.Fault{
			State:     s.Fault.State,
			Event:     s.Fault.Event,
			Alternate: s.Fault.Alternate,
		})
	}

	verdict := verify.Run(ctx, verify.Config{
		Factory:   factory,
		Reference: ref,
		MaxStates: s.MaxStates,
		MaxDepth:  s.MaxDepth,
		Logger:    logger,
	})
	logger.Debug("scenario verified", "scenario", s.Name, "pass", verdict.Pass, "reason", verdict.Reason)

	result := &Result{Pass: true, Verdict: verdict}
	checkExpectation(result, s.Expect)
	return result, nil
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

// checkExpectation validates the verdict against the scenario expectation.
// Diff expectations are subset matches: the scenario pins the edges it
// cares about without freezing the whole diff.
func checkExpectation(r *Result, want Expectation) {
	v := r.Verdict
	if v.Pass != want.Pass {
		r.addError("expected pass=%t, got pass=%t (%s)", want.Pass, v.Pass, v.Detail)
	}
	if want.Reason != "" && string(v.Reason) != want.Reason {
		r.addError("expected reason %s, got %s", want.Reason, v.Reason)
	}
	var missing, extra []machine.TransitionEdge
	if v.Diff != nil {
		missing, extra = v.Diff.Missing, v.Diff.Extra
	}
	for _, e := range want.Missing {
		if !diffContains(missing, e) {
			r.addError("expected diff.missing to contain %s --%s--> %s", e.From, e.Event, e.To)
		}
	}
	for _, e := range want.Extra {
		if !diffContains(extra, e) {
			r.addError("expected diff.extra to contain %s --%s--> %s", e.From, e.Event, e.To)
		}
	}
}

func diffContains(edges []machine.TransitionEdge, want EdgeSpec) bool {
	for _, e := range edges {
		if e.Source == want.From && e.Event == want.Event && e.Target == want.To {
			return true
		}
	}
	return false
}
