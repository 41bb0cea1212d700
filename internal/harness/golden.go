package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/lockstep-dev/lockstep/internal/verify"
)

// VerdictSnapshot is the golden-file shape for one scenario's verdict.
// DurationMS is zeroed before snapshotting: everything else a verification
// run produces is deterministic for a fixed candidate and reference.
type VerdictSnapshot struct {
	ScenarioName string          `json:"scenario_name"`
	Verdict      *verify.Verdict `json:"verdict"`
}

// RunWithGolden executes a scenario and compares its verdict against the
// golden file testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) *Result {
	t.Helper()

	result, err := Run(context.Background(), s, nil)
	if err != nil {
		t.Fatalf("scenario %s: %v", s.Name, err)
	}

	snap := VerdictSnapshot{
		ScenarioName: s.Name,
		Verdict:      stripTiming(result.Verdict),
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		t.Fatalf("marshaling snapshot: %v", err)
	}

	g := goldie.New(t)
	g.Assert(t, s.Name, buf.Bytes())
	return result
}

// stripTiming copies a verdict with wall-clock fields zeroed.
func stripTiming(v *verify.Verdict) *verify.Verdict {
	copied := *v
	copied.Stats.DurationMS = 0
	return &copied
}
