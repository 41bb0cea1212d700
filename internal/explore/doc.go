// Package explore reconstructs a candidate machine's reachable transition
// graph by probing it as a black box.
//
// The only observables a candidate offers are "what state am I in" and
// "which events do I accept here". Generated artifacts offer no general
// state-restore capability, so the explorer never keeps a long-lived mutated
// instance: each previously discovered state is re-reached by replaying, on
// a fresh instance, the event sequence that first reached it.
//
// Exploration is breadth-first and strictly single-threaded. Every probe is
// repeated on an independently instantiated replica; a divergent outcome is
// reported as NONDETERMINISM rather than silently recorded. The walk is
// bounded by MaxStates and MaxDepth (OVERFLOW) and by the context deadline
// (TIMEOUT), checked between discrete probes.
package explore
