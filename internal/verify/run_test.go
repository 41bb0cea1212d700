package verify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstep-dev/lockstep/internal/explore"
	"github.com/lockstep-dev/lockstep/internal/machine"
	"github.com/lockstep-dev/lockstep/internal/testutil"
	"github.com/lockstep-dev/lockstep/internal/verify"
)

func doorReference(policy machine.NamingPolicy) machine.ReferenceSpec {
	return machine.ReferenceSpec{
		Name:   "door",
		Policy: policy,
		Graph: machine.Graph{
			Initial: "Closed",
			Nodes: []machine.StateNode{
				{Label: "Closed", Initial: true},
				{Label: "Open"},
				{Label: "Locked"},
			},
			Edges: []machine.TransitionEdge{
				{Source: "Closed", Event: "open", Target: "Open"},
				{Source: "Open", Event: "close", Target: "Closed"},
				{Source: "Closed", Event: "lock", Target: "Locked"},
				{Source: "Locked", Event: "unlock", Target: "Closed"},
			},
		},
	}
}

func doorFactory() *explore.Table {
	return explore.NewTable("Closed", map[explore.TransitionKey]string{
		{State: "Closed", Event: "open"}:   "Open",
		{State: "Open", Event: "close"}:    "Closed",
		{State: "Closed", Event: "lock"}:   "Locked",
		{State: "Locked", Event: "unlock"}: "Closed",
	})
}

func renamedDoorFactory() *explore.Table {
	table := explore.NewTable("S0", map[explore.TransitionKey]string{
		{State: "S0", Event: "open"}:   "S1",
		{State: "S1", Event: "close"}:  "S0",
		{State: "S0", Event: "lock"}:   "S2",
		{State: "S2", Event: "unlock"}: "S0",
	})
	return table
}

func TestRun_ExactPolicyPass(t *testing.T) {
	v := verify.Run(context.Background(), verify.Config{
		Factory:   doorFactory(),
		Reference: doorReference(machine.PolicyExact),
	})

	require.True(t, v.Pass, "detail: %s", v.Detail)
	assert.Empty(t, v.Reason)
	assert.Nil(t, v.Diff)
	assert.Equal(t, machine.Mapping{
		"Closed": "Closed",
		"Open":   "Open",
		"Locked": "Locked",
	}, v.Mapping)
	assert.Equal(t, 3, v.Stats.States)
	assert.Equal(t, 4, v.Stats.Edges)
	assert.Greater(t, v.Stats.Probes, 0)
}

func TestRun_RenamedCandidateFailsExactPassesStructural(t *testing.T) {
	exact := verify.Run(context.Background(), verify.Config{
		Factory:   renamedDoorFactory(),
		Reference: doorReference(machine.PolicyExact),
	})
	require.False(t, exact.Pass)
	assert.Equal(t, machine.KindExactMismatch, exact.Reason)
	require.NotNil(t, exact.Diff)
	assert.False(t, exact.Diff.Empty())

	structural := verify.Run(context.Background(), verify.Config{
		Factory:   renamedDoorFactory(),
		Reference: doorReference(machine.PolicyStructural),
	})
	require.True(t, structural.Pass, "detail: %s", structural.Detail)
	assert.Equal(t, "Closed", structural.Mapping["S0"])
	assert.Equal(t, "Open", structural.Mapping["S1"])
	assert.Equal(t, "Locked", structural.Mapping["S2"])
}

func TestRun_VerdictIsDeterministic(t *testing.T) {
	cfg := verify.Config{
		Factory:   doorFactory(),
		Reference: doorReference(machine.PolicyStructural),
	}
	first := verify.Run(context.Background(), cfg)
	second := verify.Run(context.Background(), cfg)

	first.Stats.DurationMS = 0
	second.Stats.DurationMS = 0
	assert.Equal(t, first, second)
}

func TestRun_InvalidReferenceIsParseError(t *testing.T) {
	ref := doorReference(machine.PolicyExact)
	ref.Graph.Initial = "Missing"

	v := verify.Run(context.Background(), verify.Config{
		Factory:   doorFactory(),
		Reference: ref,
	})

	require.False(t, v.Pass)
	assert.Equal(t, machine.KindParseError, v.Reason)
	assert.Zero(t, v.Stats.Probes)
}

func TestRun_NilFactoryIsIntrospectionError(t *testing.T) {
	v := verify.Run(context.Background(), verify.Config{
		Reference: doorReference(machine.PolicyExact),
	})

	require.False(t, v.Pass)
	assert.Equal(t, machine.KindIntrospectionError, v.Reason)
}

func TestRun_ArtifactPanicIsCaptured(t *testing.T) {
	v := verify.Run(context.Background(), verify.Config{
		Factory:   &testutil.PanickyFactory{Inner: doorFactory()},
		Reference: doorReference(machine.PolicyExact),
	})

	require.False(t, v.Pass)
	assert.Equal(t, machine.KindIntrospectionError, v.Reason)
	assert.Contains(t, v.Detail, "panicked")
}

func TestRun_NondeterministicCandidateReported(t *testing.T) {
	factory := testutil.NewFlakyFactory(doorFactory(), testutil.Fault{
		State:     "Closed",
		Event:     "open",
		Alternate: "Jammed",
	})

	v := verify.Run(context.Background(), verify.Config{
		Factory:   factory,
		Reference: doorReference(machine.PolicyExact),
	})

	require.False(t, v.Pass)
	assert.Equal(t, machine.KindNondeterminism, v.Reason)
	assert.Contains(t, v.Detail, "open")
}

func TestRun_StateBoundOverflowReported(t *testing.T) {
	v := verify.Run(context.Background(), verify.Config{
		Factory:   doorFactory(),
		Reference: doorReference(machine.PolicyExact),
		MaxStates: 2,
	})

	require.False(t, v.Pass)
	assert.Equal(t, machine.KindOverflow, v.Reason)
}

func TestRun_TimeoutReported(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := verify.Run(ctx, verify.Config{
		Factory:   doorFactory(),
		Reference: doorReference(machine.PolicyExact),
		Timeout:   time.Minute,
	})

	require.False(t, v.Pass)
	assert.Equal(t, machine.KindTimeout, v.Reason)
}

func TestDescribe(t *testing.T) {
	pass := verify.Run(context.Background(), verify.Config{
		Factory:   doorFactory(),
		Reference: doorReference(machine.PolicyExact),
	})
	assert.Contains(t, verify.Describe("door", pass), "PASS door")

	fail := verify.Run(context.Background(), verify.Config{
		Factory:   renamedDoorFactory(),
		Reference: doorReference(machine.PolicyExact),
	})
	assert.Contains(t, verify.Describe("door", fail), "FAIL door")
}
