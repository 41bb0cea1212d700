package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doorGraph() Graph {
	return Graph{
		Initial: "Closed",
		Nodes: []StateNode{
			{Label: "Closed", Initial: true},
			{Label: "Open"},
			{Label: "Locked"},
		},
		Edges: []TransitionEdge{
			{Source: "Closed", Event: "open", Target: "Open"},
			{Source: "Open", Event: "close", Target: "Closed"},
			{Source: "Closed", Event: "lock", Target: "Locked"},
			{Source: "Locked", Event: "unlock", Target: "Closed"},
		},
	}
}

func TestNormalizeLabel_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, "Closed", NormalizeLabel("  Closed\t"))
	assert.Equal(t, "", NormalizeLabel("   "))
}

func TestNormalizeLabel_AppliesNFC(t *testing.T) {
	// U+0065 U+0301 (e + combining acute) composes to U+00E9.
	assert.Equal(t, "état", NormalizeLabel("état"))
}

func TestCanonicalize_NormalizesAllLabels(t *testing.T) {
	g := Graph{
		Initial: " Closed ",
		Nodes:   []StateNode{{Label: " Closed "}, {Label: "Open\n"}},
		Edges:   []TransitionEdge{{Source: " Closed ", Event: " open ", Target: "Open\n"}},
	}
	cg := Canonicalize(g)

	assert.Equal(t, "Closed", cg.Initial)
	require.Len(t, cg.Edges, 1)
	assert.Equal(t, TransitionEdge{Source: "Closed", Event: "open", Target: "Open"}, cg.Edges[0])
	for _, n := range cg.Nodes {
		assert.Equal(t, n.Label == "Closed", n.Initial)
	}
}

func TestCanonicalize_OrderIsDeterministic(t *testing.T) {
	g := doorGraph()
	first := Canonicalize(g)

	// Shuffle node and edge order; the canonical form must not change.
	shuffled := Graph{
		Initial: g.Initial,
		Nodes:   []StateNode{g.Nodes[2], g.Nodes[0], g.Nodes[1]},
		Edges:   []TransitionEdge{g.Edges[3], g.Edges[1], g.Edges[2], g.Edges[0]},
	}
	second := Canonicalize(shuffled)

	assert.Equal(t, first, second)
}

func TestCanonicalize_PreservesContent(t *testing.T) {
	g := doorGraph()
	cg := Canonicalize(g)

	assert.Len(t, cg.Nodes, len(g.Nodes))
	assert.Equal(t, g.EdgeSet(), cg.EdgeSet())
	assert.Equal(t, g.Initial, cg.Initial)
}

func TestSignature_DistinguishesStates(t *testing.T) {
	g := doorGraph()

	// Open and Locked both have one incoming and one outgoing edge, but
	// with different event labels, so their signatures differ.
	assert.NotEqual(t, Signature(g, "Open"), Signature(g, "Locked"))
	assert.NotEqual(t, Signature(g, "Closed"), Signature(g, "Open"))
}

func TestSignature_InvariantUnderRenaming(t *testing.T) {
	g := doorGraph()
	renamed := Graph{
		Initial: "c",
		Nodes:   []StateNode{{Label: "c", Initial: true}, {Label: "o"}, {Label: "l"}},
		Edges: []TransitionEdge{
			{Source: "c", Event: "open", Target: "o"},
			{Source: "o", Event: "close", Target: "c"},
			{Source: "c", Event: "lock", Target: "l"},
			{Source: "l", Event: "unlock", Target: "c"},
		},
	}

	assert.Equal(t, Signature(g, "Closed"), Signature(renamed, "c"))
	assert.Equal(t, Signature(g, "Open"), Signature(renamed, "o"))
	assert.Equal(t, Signature(g, "Locked"), Signature(renamed, "l"))
}
