package machine

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel trims surrounding whitespace and applies Unicode NFC
// normalization. This is the only transform ever applied to observed state
// labels and event labels; it adds and drops no information beyond
// representation noise.
func NormalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Signature is a node's (out-degree, in-degree) signature: the sorted
// multisets of event labels leaving and entering the node, rendered as a
// comparable string. Nodes related by a structure-preserving bijection
// always share a signature, so signatures partition nodes for both the
// canonical ordering and the bijection search.
func Signature(g Graph, label string) string {
	var out, in []string
	for _, e := range g.Edges {
		if e.Source == label {
			out = append(out, e.Event)
		}
		if e.Target == label {
			in = append(in, e.Event)
		}
	}
	sort.Strings(out)
	sort.Strings(in)
	return "out[" + strings.Join(out, ",") + "] in[" + strings.Join(in, ",") + "]"
}

// Canonicalize returns a copy of g with every label normalized, nodes
// ordered by (signature, label) and edges ordered by (source, event,
// target). The result carries exactly the same states and transitions as
// the input; only representation changes.
//
// Both the explored candidate graph and the reference graph pass through
// here before equivalence checking, so the engine always receives
// comparably shaped inputs.
func Canonicalize(g Graph) Graph {
	cg := Graph{Initial: NormalizeLabel(g.Initial)}

	cg.Nodes = make([]StateNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		label := NormalizeLabel(n.Label)
		cg.Nodes = append(cg.Nodes, StateNode{
			Label:   label,
			Initial: label == cg.Initial,
		})
	}

	cg.Edges = make([]TransitionEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		cg.Edges = append(cg.Edges, TransitionEdge{
			Source: NormalizeLabel(e.Source),
			Event:  NormalizeLabel(e.Event),
			Target: NormalizeLabel(e.Target),
		})
	}
	SortEdges(cg.Edges)

	sigs := make(map[string]string, len(cg.Nodes))
	for _, n := range cg.Nodes {
		sigs[n.Label] = Signature(cg, n.Label)
	}
	sort.Slice(cg.Nodes, func(i, j int) bool {
		a, b := cg.Nodes[i], cg.Nodes[j]
		if sigs[a.Label] != sigs[b.Label] {
			return sigs[a.Label] < sigs[b.Label]
		}
		return a.Label < b.Label
	})

	return cg
}
