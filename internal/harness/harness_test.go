package harness_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstep-dev/lockstep/internal/harness"
	"github.com/lockstep-dev/lockstep/internal/machine"
)

func scenarioPath(name string) string {
	return filepath.Join("testdata", "scenarios", name)
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := harness.LoadScenario(scenarioPath("door-flaky.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "door-flaky", s.Name)
	assert.Equal(t, "../machines/door.yaml", s.Reference)
	assert.Equal(t, "../machines/door_candidate.yaml", s.Candidate)
	require.NotNil(t, s.Fault)
	assert.Equal(t, "Jammed", s.Fault.Alternate)
	assert.False(t, s.Expect.Pass)
	assert.Equal(t, "NONDETERMINISM", s.Expect.Reason)
}

func TestLoadScenario_NamelessRejected(t *testing.T) {
	path := writeScenario(t, `
reference: ref.yaml
candidate: cand.yaml
expect:
  pass: true
`)
	_, err := harness.LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	path := writeScenario(t, `
name: typo
reference: ref.yaml
candidate: cand.yaml
expectt:
  pass: true
`)
	_, err := harness.LoadScenario(path)
	assert.Error(t, err)
}

func TestRun_ExpectationMismatchReported(t *testing.T) {
	s, err := harness.LoadScenario(scenarioPath("door-exact-renamed.yaml"))
	require.NoError(t, err)
	s.Expect = harness.Expectation{Pass: true}

	result, err := harness.Run(context.Background(), s, nil)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.NotEmpty(t, result.Errors)
	assert.False(t, result.Verdict.Pass)
	assert.Equal(t, machine.KindExactMismatch, result.Verdict.Reason)
}

func TestRun_PolicyOverride(t *testing.T) {
	s, err := harness.LoadScenario(scenarioPath("door-exact-renamed.yaml"))
	require.NoError(t, err)
	s.Policy = "structural"
	s.Expect = harness.Expectation{Pass: true}

	result, err := harness.Run(context.Background(), s, nil)
	require.NoError(t, err)

	assert.True(t, result.Pass, "expectation errors: %v", result.Errors)
	assert.Equal(t, "Closed", result.Verdict.Mapping["S0"])
}

func TestRun_MissingReferenceFile(t *testing.T) {
	path := writeScenario(t, `
name: dangling
reference: nowhere.yaml
candidate: nowhere_else.yaml
expect:
  pass: true
`)
	s, err := harness.LoadScenario(path)
	require.NoError(t, err)

	_, err = harness.Run(context.Background(), s, nil)
	assert.Error(t, err)
}
