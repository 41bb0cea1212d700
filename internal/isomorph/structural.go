package isomorph

import (
	"context"
	"sort"

	"github.com/lockstep-dev/lockstep/internal/machine"
)

// Structural compares candidate and reference under the structural naming
// policy: state identifiers are opaque and a bijection f must exist with
// f(candidate initial) = reference initial such that edge (a, b, e) exists
// in the candidate iff edge (f(a), f(b), e) exists in the reference.
//
// The search runs in three phases:
//  1. cardinality prechecks (node counts, per-event edge counts)
//  2. partition of both node sets by degree signature; shapes must agree
//  3. backtracking assignment, smallest partition first, pruning any
//     partial assignment that violates an edge constraint already fixed
//
// The context deadline is checked per assignment attempt; expiry aborts
// with TIMEOUT. Any valid mapping is acceptable; the first one found is
// returned. On exhaustion the error is STRUCTURAL_MISMATCH with a
// best-effort diff from the deepest partial assignment reached.
func Structural(ctx context.Context, cand, ref machine.Graph) (machine.Mapping, *machine.Diff, error) {
	if len(cand.Nodes) != len(ref.Nodes) {
		diff := countDiff(cand, ref)
		return nil, diff, machine.NewError(machine.KindStructuralMismatch,
			"state counts differ (%d vs %d)", len(cand.Nodes), len(ref.Nodes))
	}
	if !sameEventCounts(cand, ref) {
		diff := countDiff(cand, ref)
		return nil, diff, machine.NewError(machine.KindStructuralMismatch,
			"per-event edge counts differ")
	}

	m := newMatcher(cand, ref)
	if !m.partitionsAgree() {
		diff := m.partitionDiff()
		return nil, diff, machine.NewError(machine.KindStructuralMismatch,
			"degree-signature partitions differ")
	}

	mapping, err := m.search(ctx)
	if err != nil {
		return nil, nil, err
	}
	if mapping == nil {
		diff := m.bestEffortDiff()
		return nil, diff, machine.NewError(machine.KindStructuralMismatch,
			"no bijection preserves the transition structure")
	}
	return mapping, nil, nil
}

// sameEventCounts checks phase-1 per-label edge cardinality.
func sameEventCounts(cand, ref machine.Graph) bool {
	cc, rc := cand.EventCounts(), ref.EventCounts()
	if len(cc) != len(rc) {
		return false
	}
	for ev, n := range cc {
		if rc[ev] != n {
			return false
		}
	}
	return true
}

// countDiff reports the surplus edges on each side, per event label.
// This is the best diagnostic available before any node correspondence
// exists.
func countDiff(cand, ref machine.Graph) *machine.Diff {
	cc, rc := cand.EventCounts(), ref.EventCounts()
	diff := &machine.Diff{Missing: []machine.TransitionEdge{}, Extra: []machine.TransitionEdge{}}
	for _, e := range ref.Edges {
		if rc[e.Event] > cc[e.Event] {
			diff.Missing = append(diff.Missing, e)
		}
	}
	for _, e := range cand.Edges {
		if cc[e.Event] > rc[e.Event] {
			diff.Extra = append(diff.Extra, e)
		}
	}
	diff.Sort()
	return diff
}

// matcher holds the state of one backtracking bijection search.
type matcher struct {
	cand, ref machine.Graph
	candSet   map[machine.TransitionEdge]struct{}
	refSet    map[machine.TransitionEdge]struct{}

	candSig map[string]string
	refSig  map[string]string

	// candidate node labels in assignment order: initial first, then
	// smallest partitions first.
	order []string

	// compatible reference labels per candidate label (same partition).
	options map[string][]string

	assigned machine.Mapping   // candidate -> reference
	inverse  map[string]string // reference -> candidate

	// best is a copy of the deepest partial assignment reached, kept for
	// the best-effort diff on exhaustion.
	best machine.Mapping
}

func newMatcher(cand, ref machine.Graph) *matcher {
	m := &matcher{
		cand:     cand,
		ref:      ref,
		candSet:  cand.EdgeSet(),
		refSet:   ref.EdgeSet(),
		candSig:  make(map[string]string, len(cand.Nodes)),
		refSig:   make(map[string]string, len(ref.Nodes)),
		options:  make(map[string][]string),
		assigned: make(machine.Mapping, len(cand.Nodes)),
		inverse:  make(map[string]string, len(cand.Nodes)),
		best:     machine.Mapping{},
	}
	for _, n := range cand.Nodes {
		m.candSig[n.Label] = machine.Signature(cand, n.Label)
	}
	for _, n := range ref.Nodes {
		m.refSig[n.Label] = machine.Signature(ref, n.Label)
	}
	return m
}

// partitionsAgree checks that both graphs partition identically by degree
// signature, and that the two initial states share a signature.
func (m *matcher) partitionsAgree() bool {
	candParts := make(map[string][]string)
	refParts := make(map[string][]string)
	for label, sig := range m.candSig {
		candParts[sig] = append(candParts[sig], label)
	}
	for label, sig := range m.refSig {
		refParts[sig] = append(refParts[sig], label)
	}
	if len(candParts) != len(refParts) {
		return false
	}
	for sig, labels := range candParts {
		if len(refParts[sig]) != len(labels) {
			return false
		}
	}
	if m.candSig[m.cand.Initial] != m.refSig[m.ref.Initial] {
		return false
	}

	// Assignment order: initial first (pinned), then remaining candidates
	// by ascending partition size so tight partitions fail fast.
	rest := make([]string, 0, len(m.candSig)-1)
	for label := range m.candSig {
		if label != m.cand.Initial {
			rest = append(rest, label)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		a, b := rest[i], rest[j]
		sa, sb := m.candSig[a], m.candSig[b]
		if len(candParts[sa]) != len(candParts[sb]) {
			return len(candParts[sa]) < len(candParts[sb])
		}
		if sa != sb {
			return sa < sb
		}
		return a < b
	})
	m.order = append([]string{m.cand.Initial}, rest...)

	for label, sig := range m.candSig {
		if label == m.cand.Initial {
			m.options[label] = []string{m.ref.Initial}
			continue
		}
		opts := make([]string, 0, len(refParts[sig]))
		for _, r := range refParts[sig] {
			if r != m.ref.Initial {
				opts = append(opts, r)
			}
		}
		sort.Strings(opts)
		m.options[label] = opts
	}
	return true
}

// partitionDiff reports edges incident to nodes whose signature has no
// counterpart on the other side.
func (m *matcher) partitionDiff() *machine.Diff {
	candHas := make(map[string]int)
	refHas := make(map[string]int)
	for _, sig := range m.candSig {
		candHas[sig]++
	}
	for _, sig := range m.refSig {
		refHas[sig]++
	}

	diff := &machine.Diff{Missing: []machine.TransitionEdge{}, Extra: []machine.TransitionEdge{}}
	for _, e := range m.cand.Edges {
		if candHas[m.candSig[e.Source]] != refHas[m.candSig[e.Source]] ||
			candHas[m.candSig[e.Target]] != refHas[m.candSig[e.Target]] {
			diff.Extra = append(diff.Extra, e)
		}
	}
	for _, e := range m.ref.Edges {
		if candHas[m.refSig[e.Source]] != refHas[m.refSig[e.Source]] ||
			candHas[m.refSig[e.Target]] != refHas[m.refSig[e.Target]] {
			diff.Missing = append(diff.Missing, e)
		}
	}
	diff.Sort()
	return diff
}

// search runs the backtracking assignment. Returns (nil, nil) on
// exhaustion, an error only for deadline expiry.
func (m *matcher) search(ctx context.Context) (machine.Mapping, error) {
	found, err := m.assign(ctx, 0)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	mapping := make(machine.Mapping, len(m.assigned))
	for c, r := range m.assigned {
		mapping[c] = r
	}
	return mapping, nil
}

func (m *matcher) assign(ctx context.Context, depth int) (bool, error) {
	if depth == len(m.order) {
		return true, nil
	}
	c := m.order[depth]

	for _, r := range m.options[c] {
		if err := ctx.Err(); err != nil {
			return false, machine.NewError(machine.KindTimeout,
				"deadline exceeded during bijection search")
		}
		if _, taken := m.inverse[r]; taken {
			continue
		}

		m.assigned[c] = r
		m.inverse[r] = c
		if m.consistent(c, r) {
			if len(m.assigned) > len(m.best) {
				m.best = make(machine.Mapping, len(m.assigned))
				for cc, rr := range m.assigned {
					m.best[cc] = rr
				}
			}
			ok, err := m.assign(ctx, depth+1)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		delete(m.assigned, c)
		delete(m.inverse, r)
	}
	return false, nil
}

// consistent checks every edge constraint fixed by assigning c -> r.
//
// Both directions are enforced: candidate edges between assigned nodes must
// map into the reference, and reference edges between already-used
// reference nodes must pull back into the candidate. One-directional
// embedding is not enough; the bijection must preserve non-edges too.
func (m *matcher) consistent(c, r string) bool {
	for _, e := range m.cand.Edges {
		if e.Source != c && e.Target != c {
			continue
		}
		src, srcOK := m.assigned[e.Source]
		tgt, tgtOK := m.assigned[e.Target]
		if !srcOK || !tgtOK {
			continue
		}
		mapped := machine.TransitionEdge{Source: src, Event: e.Event, Target: tgt}
		if _, ok := m.refSet[mapped]; !ok {
			return false
		}
	}
	for _, e := range m.ref.Edges {
		if e.Source != r && e.Target != r {
			continue
		}
		src, srcOK := m.inverse[e.Source]
		tgt, tgtOK := m.inverse[e.Target]
		if !srcOK || !tgtOK {
			continue
		}
		pulled := machine.TransitionEdge{Source: src, Event: e.Event, Target: tgt}
		if _, ok := m.candSet[pulled]; !ok {
			return false
		}
	}
	return true
}

// bestEffortDiff reports the edges left unmatched under the deepest partial
// assignment the search reached.
func (m *matcher) bestEffortDiff() *machine.Diff {
	inverse := make(map[string]string, len(m.best))
	for c, r := range m.best {
		inverse[r] = c
	}

	diff := &machine.Diff{Missing: []machine.TransitionEdge{}, Extra: []machine.TransitionEdge{}}
	matchedRef := make(map[machine.TransitionEdge]bool)
	for _, e := range m.cand.Edges {
		src, srcOK := m.best[e.Source]
		tgt, tgtOK := m.best[e.Target]
		if srcOK && tgtOK {
			mapped := machine.TransitionEdge{Source: src, Event: e.Event, Target: tgt}
			if _, ok := m.refSet[mapped]; ok {
				matchedRef[mapped] = true
				continue
			}
		}
		diff.Extra = append(diff.Extra, e)
	}
	for _, e := range m.ref.Edges {
		if !matchedRef[e] {
			diff.Missing = append(diff.Missing, e)
		}
	}
	diff.Sort()
	return diff
}
