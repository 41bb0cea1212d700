// Package isomorph decides equivalence between a candidate graph and a
// reference graph under the reference's naming policy.
//
// Exact mode degenerates to set equality of (source, event, target) triples
// plus initial-label equality. Structural mode is exact graph isomorphism on
// small labeled directed graphs: a bijection over states that pins the two
// initial states to each other and preserves every event-labeled edge in
// both directions. Event labels are never renamed in either mode.
//
// The bijection search is brute-force backtracking pruned by node degree
// signatures. Task graphs are bounded by the explorer's MaxStates (typically
// a few dozen states), so no sub-exponential canonical-form machinery is
// warranted. Both entry points expect canonicalized graphs.
package isomorph
