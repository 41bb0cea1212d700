// Package machine defines the labeled-directed-graph data model shared by
// the explorer, the equivalence engine, and the verdict reporter.
//
// A Graph is a set of states (unique by observed label), a set of
// event-labeled transitions, and a distinguished initial state. Graphs are
// value types: once built they are never mutated, and every transform
// (normalization, canonical ordering) returns a fresh copy.
//
// Identity rules:
//   - State identity is the observed label. Two probes returning the same
//     label denote the same logical state.
//   - Event labels are part of the behavioral contract and are always
//     compared verbatim, under every naming policy.
//
// The package also defines the error kinds a verification run can terminate
// with. Every kind is terminal for the run and is surfaced as data in the
// verdict, never as an uncaught fault.
package machine
