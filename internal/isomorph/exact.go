package isomorph

import (
	"github.com/lockstep-dev/lockstep/internal/machine"
)

// Exact compares candidate and reference under the exact naming policy:
// state labels must match verbatim (graphs are already normalized by the
// canonicalizer), so the check is initial-label equality plus edge-set
// equality. O(|E|).
//
// On success the returned mapping is the identity over candidate states.
// On failure the error is EXACT_MISMATCH and the diff lists reference edges
// absent from the candidate (missing) and candidate edges absent from the
// reference (extra).
func Exact(cand, ref machine.Graph) (machine.Mapping, *machine.Diff, error) {
	candSet := cand.EdgeSet()
	refSet := ref.EdgeSet()

	diff := &machine.Diff{Missing: []machine.TransitionEdge{}, Extra: []machine.TransitionEdge{}}
	for e := range refSet {
		if _, ok := candSet[e]; !ok {
			diff.Missing = append(diff.Missing, e)
		}
	}
	for e := range candSet {
		if _, ok := refSet[e]; !ok {
			diff.Extra = append(diff.Extra, e)
		}
	}
	diff.Sort()

	if cand.Initial != ref.Initial {
		return nil, diff, machine.NewError(machine.KindExactMismatch,
			"initial state %q does not match reference initial %q", cand.Initial, ref.Initial)
	}
	if !diff.Empty() {
		return nil, diff, machine.NewError(machine.KindExactMismatch,
			"edge sets differ (%d missing, %d extra)", len(diff.Missing), len(diff.Extra))
	}
	if len(cand.Nodes) != len(ref.Nodes) {
		// Identical edge sets but differing node counts means one side
		// declares an isolated state; only the initial state can be
		// edge-free in an explored graph.
		return nil, diff, machine.NewError(machine.KindExactMismatch,
			"state counts differ (%d vs %d)", len(cand.Nodes), len(ref.Nodes))
	}

	mapping := make(machine.Mapping, len(cand.Nodes))
	for _, n := range cand.Nodes {
		mapping[n.Label] = n.Label
	}
	return mapping, nil, nil
}
