package machine

import (
	"fmt"
	"sort"
	"strings"
)

// NamingPolicy controls how state labels are compared between a candidate
// graph and a reference graph.
type NamingPolicy string

const (
	// PolicyExact requires state labels to match verbatim after
	// normalization (trim + NFC).
	PolicyExact NamingPolicy = "exact"

	// PolicyStructural treats state labels as opaque: a bijection between
	// candidate and reference states must exist that preserves the initial
	// state and every event-labeled edge in both directions.
	PolicyStructural NamingPolicy = "structural"
)

// Valid reports whether p is a recognized naming policy.
func (p NamingPolicy) Valid() bool {
	return p == PolicyExact || p == PolicyStructural
}

// StateNode is a single state discovered in (or declared by) a machine.
type StateNode struct {
	// Label is the observed state identifier. Unique within a Graph.
	Label string `json:"label"`

	// Initial marks the machine's starting state.
	Initial bool `json:"initial,omitempty"`
}

// TransitionEdge is a directed, event-labeled transition between two states.
// Edges are compared as (source, event, target) triples.
type TransitionEdge struct {
	Source string `json:"source"`
	Event  string `json:"event"`
	Target string `json:"target"`
}

// String renders the edge in "source --event--> target" form for diagnostics.
func (e TransitionEdge) String() string {
	return fmt.Sprintf("%s --%s--> %s", e.Source, e.Event, e.Target)
}

// Graph is an immutable labeled directed multigraph with a distinguished
// initial state.
//
// INVARIANTS (maintained by the explorer and by reference validation):
//   - every node label is unique
//   - every node is reachable from Initial
//   - no two edges share the same (Source, Event) pair
type Graph struct {
	Initial string           `json:"initial"`
	Nodes   []StateNode      `json:"nodes"`
	Edges   []TransitionEdge `json:"edges"`
}

// HasNode reports whether a node with the given label exists.
func (g Graph) HasNode(label string) bool {
	for _, n := range g.Nodes {
		if n.Label == label {
			return true
		}
	}
	return false
}

// EdgeSet returns the edges as a membership set. The explorer never records
// duplicate triples, so a bare set is sufficient for deterministic graphs.
func (g Graph) EdgeSet() map[TransitionEdge]struct{} {
	set := make(map[TransitionEdge]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		set[e] = struct{}{}
	}
	return set
}

// EventCounts returns the number of edges per event label.
func (g Graph) EventCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range g.Edges {
		counts[e.Event]++
	}
	return counts
}

// Out returns the edges leaving the given state, sorted by event label.
func (g Graph) Out(label string) []TransitionEdge {
	var out []TransitionEdge
	for _, e := range g.Edges {
		if e.Source == label {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Event < out[j].Event })
	return out
}

// In returns the edges entering the given state, sorted by event label.
func (g Graph) In(label string) []TransitionEdge {
	var in []TransitionEdge
	for _, e := range g.Edges {
		if e.Target == label {
			in = append(in, e)
		}
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Event < in[j].Event })
	return in
}

// Mapping is a bijection from candidate state labels to reference state
// labels. A valid mapping always sends the candidate's initial state to the
// reference's initial state.
type Mapping map[string]string

// Diff is the machine-checkable difference between two edge sets.
// Missing holds reference edges absent from the candidate; Extra holds
// candidate edges absent from the reference. Both are sorted for
// deterministic output.
type Diff struct {
	Missing []TransitionEdge `json:"missing"`
	Extra   []TransitionEdge `json:"extra"`
}

// Empty reports whether the diff carries no edges.
func (d *Diff) Empty() bool {
	return d == nil || (len(d.Missing) == 0 && len(d.Extra) == 0)
}

// Sort orders both edge lists by (source, event, target).
func (d *Diff) Sort() {
	SortEdges(d.Missing)
	SortEdges(d.Extra)
}

// String renders the diff one edge per line, missing first.
func (d *Diff) String() string {
	if d.Empty() {
		return "(no differences)"
	}
	var b strings.Builder
	for _, e := range d.Missing {
		fmt.Fprintf(&b, "missing: %s\n", e)
	}
	for _, e := range d.Extra {
		fmt.Fprintf(&b, "extra:   %s\n", e)
	}
	return b.String()
}

// SortEdges orders edges by (source, event, target).
func SortEdges(edges []TransitionEdge) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Event != b.Event {
			return a.Event < b.Event
		}
		return a.Target < b.Target
	})
}
