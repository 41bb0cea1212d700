package explore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockstep-dev/lockstep/internal/explore"
	"github.com/lockstep-dev/lockstep/internal/machine"
)

func TestTable_EventsDerivedFromKeysSorted(t *testing.T) {
	assert.Equal(t, []string{"close", "lock", "open", "unlock"}, doorTable().Events())
}

func TestTable_WithEventsOverrides(t *testing.T) {
	table := doorTable().WithEvents("open", "close")
	assert.Equal(t, []string{"close", "open"}, table.Events())

	// The original is untouched.
	assert.Len(t, doorTable().Events(), 4)
}

func TestTable_InstancesAreIndependent(t *testing.T) {
	table := doorTable()

	first, err := table.New()
	require.NoError(t, err)
	second, err := table.New()
	require.NoError(t, err)

	ok, err := first.Fire("open")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "Open", first.State())
	assert.Equal(t, "Closed", second.State())
}

func TestTable_RejectsAbsentCell(t *testing.T) {
	a, err := doorTable().New()
	require.NoError(t, err)

	ok, err := a.Fire("unlock")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Closed", a.State())
}

func TestTable_EmptyInitialFailsInstantiation(t *testing.T) {
	table := explore.NewTable("", nil)
	_, err := table.New()
	assert.Error(t, err)
}

func TestNewTableFromGraph_Replays(t *testing.T) {
	g := machine.Graph{
		Initial: "Closed",
		Nodes: []machine.StateNode{
			{Label: "Closed", Initial: true},
			{Label: "Open"},
		},
		Edges: []machine.TransitionEdge{
			{Source: "Closed", Event: "open", Target: "Open"},
			{Source: "Open", Event: "close", Target: "Closed"},
		},
	}

	rediscovered, err := explore.New(explore.NewTableFromGraph(g)).Explore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, g.EdgeSet(), rediscovered.EdgeSet())
	assert.Equal(t, g.Initial, rediscovered.Initial)
}
