package explore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstep-dev/lockstep/internal/explore"
	"github.com/lockstep-dev/lockstep/internal/machine"
	"github.com/lockstep-dev/lockstep/internal/testutil"
)

func doorTable() *explore.Table {
	return explore.NewTable("Closed", map[explore.TransitionKey]string{
		{State: "Closed", Event: "open"}:   "Open",
		{State: "Open", Event: "close"}:    "Closed",
		{State: "Closed", Event: "lock"}:   "Locked",
		{State: "Locked", Event: "unlock"}: "Closed",
	})
}

// chainTable builds s0 --next--> s1 --next--> ... --next--> s<n>.
func chainTable(n int) *explore.Table {
	transitions := make(map[explore.TransitionKey]string, n)
	for i := 0; i < n; i++ {
		transitions[explore.TransitionKey{State: fmt.Sprintf("s%d", i), Event: "next"}] = fmt.Sprintf("s%d", i+1)
	}
	return explore.NewTable("s0", transitions)
}

func TestExplore_DiscoversFullDoorGraph(t *testing.T) {
	e := explore.New(doorTable())
	g, err := e.Explore(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Closed", g.Initial)
	require.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 4)

	expected := map[machine.TransitionEdge]struct{}{
		{Source: "Closed", Event: "open", Target: "Open"}:     {},
		{Source: "Open", Event: "close", Target: "Closed"}:    {},
		{Source: "Closed", Event: "lock", Target: "Locked"}:   {},
		{Source: "Locked", Event: "unlock", Target: "Closed"}: {},
	}
	assert.Equal(t, expected, g.EdgeSet())
	assert.Greater(t, e.Probes(), 0)
}

func TestExplore_IsDeterministic(t *testing.T) {
	first, err := explore.New(doorTable()).Explore(context.Background())
	require.NoError(t, err)
	second, err := explore.New(doorTable()).Explore(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExplore_SelfEdgeTerminates(t *testing.T) {
	table := explore.NewTable("Idle", map[explore.TransitionKey]string{
		{State: "Idle", Event: "tick"}: "Idle",
		{State: "Idle", Event: "run"}:  "Busy",
		{State: "Busy", Event: "stop"}: "Idle",
	})

	g, err := explore.New(table).Explore(context.Background())
	require.NoError(t, err)

	assert.Contains(t, g.EdgeSet(), machine.TransitionEdge{Source: "Idle", Event: "tick", Target: "Idle"})
	assert.Len(t, g.Nodes, 2)
}

func TestExplore_PartialTransitionFunction(t *testing.T) {
	// "unlock" is inapplicable everywhere but Locked; rejected probes are
	// skipped, not recorded.
	g, err := explore.New(doorTable()).Explore(context.Background())
	require.NoError(t, err)

	for _, e := range g.Edges {
		if e.Event == "unlock" {
			assert.Equal(t, "Locked", e.Source)
		}
	}
}

func TestExplore_DistinctEventsSameTarget(t *testing.T) {
	table := explore.NewTable("A", map[explore.TransitionKey]string{
		{State: "A", Event: "x"}: "B",
		{State: "A", Event: "y"}: "B",
	})

	g, err := explore.New(table).Explore(context.Background())
	require.NoError(t, err)
	assert.Len(t, g.Edges, 2)
}

func TestExplore_MaxStatesOverflow(t *testing.T) {
	e := explore.New(chainTable(10), explore.WithMaxStates(3))
	_, err := e.Explore(context.Background())

	require.Error(t, err)
	assert.True(t, machine.IsKind(err, machine.KindOverflow), "got %v", err)
}

func TestExplore_MaxDepthOverflow(t *testing.T) {
	e := explore.New(chainTable(10), explore.WithMaxDepth(3))
	_, err := e.Explore(context.Background())

	require.Error(t, err)
	assert.True(t, machine.IsKind(err, machine.KindOverflow), "got %v", err)
}

func TestExplore_BoundsLargeEnoughSucceed(t *testing.T) {
	e := explore.New(chainTable(10), explore.WithMaxStates(11), explore.WithMaxDepth(10))
	g, err := e.Explore(context.Background())

	require.NoError(t, err)
	assert.Len(t, g.Nodes, 11)
}

func TestExplore_DeadlineAborts(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := explore.New(doorTable()).Explore(ctx)
	require.Error(t, err)
	assert.True(t, machine.IsKind(err, machine.KindTimeout), "got %v", err)
}

func TestExplore_NondeterminismDetected(t *testing.T) {
	factory := testutil.NewFlakyFactory(doorTable(), testutil.Fault{
		State:     "Closed",
		Event:     "open",
		Alternate: "Jammed",
	})

	_, err := explore.New(factory).Explore(context.Background())
	require.Error(t, err)

	var ve *machine.VerifyError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, machine.KindNondeterminism, ve.Kind)
	assert.Equal(t, "Closed", ve.State)
	assert.Equal(t, "open", ve.Event)
}

func TestExplore_RejectedEventMustNotMoveState(t *testing.T) {
	factory := &testutil.RejectingMutator{
		Inner: doorTable(),
		State: "Closed",
		Event: "lock",
		Moved: "Locked",
	}

	_, err := explore.New(factory).Explore(context.Background())
	require.Error(t, err)
	assert.True(t, machine.IsKind(err, machine.KindNondeterminism), "got %v", err)
}

func TestExplore_NoEventsIsIntrospectionError(t *testing.T) {
	_, err := explore.New(doorTable().WithEvents()).Explore(context.Background())
	require.Error(t, err)
	assert.True(t, machine.IsKind(err, machine.KindIntrospectionError), "got %v", err)
}

func TestExplore_UndeclaredEventsAreProbedAndRejected(t *testing.T) {
	// A declared event the table never accepts shows up as no edges, not
	// as an error.
	table := doorTable().WithEvents("open", "close", "lock", "unlock", "teleport")
	g, err := explore.New(table).Explore(context.Background())
	require.NoError(t, err)

	for _, e := range g.Edges {
		assert.NotEqual(t, "teleport", e.Event)
	}
}
