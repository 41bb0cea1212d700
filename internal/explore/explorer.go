package explore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/lockstep-dev/lockstep/internal/machine"
)

// DefaultMaxStates bounds the number of discovered states per run.
// Task machines are author-authored and small; a candidate that blows past
// this is unbounded or wildly larger than any reference.
const DefaultMaxStates = 64

// DefaultMaxDepth bounds the replay path length per run.
const DefaultMaxDepth = 64

// probeReplicas is the number of independently instantiated replicas each
// (path, event) probe runs on. Two is the minimum that can witness a
// divergent outcome.
const probeReplicas = 2

// Explorer drives a candidate from its initial configuration and records
// every reachable state and transition.
//
// Explore must be called from a single goroutine; independent runs use
// independent Explorer values.
type Explorer struct {
	factory   Factory
	maxStates int
	maxDepth  int
	logger    *slog.Logger

	probes int
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithMaxStates overrides the discovered-state bound.
func WithMaxStates(n int) Option {
	return func(e *Explorer) { e.maxStates = n }
}

// WithMaxDepth overrides the replay-depth bound.
func WithMaxDepth(n int) Option {
	return func(e *Explorer) { e.maxDepth = n }
}

// WithLogger attaches a logger for per-probe diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Explorer) { e.logger = l }
}

// New creates an Explorer over the given candidate factory.
func New(factory Factory, opts ...Option) *Explorer {
	e := &Explorer{
		factory:   factory,
		maxStates: DefaultMaxStates,
		maxDepth:  DefaultMaxDepth,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Probes returns the number of candidate instantiations consumed so far.
// Used for verdict statistics.
func (e *Explorer) Probes() int {
	return e.probes
}

// frontierEntry is one pending state expansion: the state's observed label
// and the event sequence that first reached it. The recorded path memoizes
// how to re-reach the state on a fresh instance.
type frontierEntry struct {
	path  []string
	label string
}

// outcome is the observable result of one probe.
type outcome struct {
	accepted bool
	label    string
}

// Explore discovers the candidate's reachable transition graph.
//
// The walk is breadth-first. Each frontier state is expanded by attempting
// every declared event on fresh replicas that replay the state's recorded
// path. Outcomes:
//   - rejected event: skipped (partial transition function)
//   - accepted event: edge recorded; unseen target labels are enqueued
//   - replica disagreement: NONDETERMINISM
//
// Terminal errors are machine.VerifyError values: INTROSPECTION_ERROR,
// NONDETERMINISM, OVERFLOW, TIMEOUT.
func (e *Explorer) Explore(ctx context.Context) (machine.Graph, error) {
	events := e.factory.Events()
	if len(events) == 0 {
		return machine.Graph{}, machine.NewError(machine.KindIntrospectionError,
			"candidate declares no events")
	}
	sort.Strings(events)

	root, err := e.observeInitial()
	if err != nil {
		return machine.Graph{}, err
	}
	e.logger.Debug("exploration started", "initial", root, "events", len(events))

	g := machine.Graph{
		Initial: root,
		Nodes:   []machine.StateNode{{Label: root, Initial: true}},
	}
	seen := map[string]bool{root: true}
	frontier := []frontierEntry{{path: nil, label: root}}

	for len(frontier) > 0 {
		entry := frontier[0]
		frontier = frontier[1:]

		for _, event := range events {
			if err := ctx.Err(); err != nil {
				return machine.Graph{}, machine.NewError(machine.KindTimeout,
					"deadline exceeded after %d probes", e.probes)
			}

			first, err := e.probe(entry, event)
			if err != nil {
				return machine.Graph{}, err
			}
			second, err := e.probe(entry, event)
			if err != nil {
				return machine.Graph{}, err
			}
			if first != second {
				return machine.Graph{}, &machine.VerifyError{
					Kind:    machine.KindNondeterminism,
					Message: fmt.Sprintf("replicas disagree: %s vs %s", describe(first), describe(second)),
					State:   entry.label,
					Event:   event,
				}
			}

			if !first.accepted {
				continue
			}
			target := first.label
			e.logger.Debug("transition recorded", "source", entry.label, "event", event, "target", target)
			g.Edges = append(g.Edges, machine.TransitionEdge{
				Source: entry.label,
				Event:  event,
				Target: target,
			})

			if seen[target] {
				continue
			}
			if len(entry.path)+1 > e.maxDepth {
				return machine.Graph{}, machine.NewError(machine.KindOverflow,
					"path depth bound exceeded (%d states discovered, max depth %d)",
					len(seen), e.maxDepth)
			}
			if len(seen)+1 > e.maxStates {
				return machine.Graph{}, machine.NewError(machine.KindOverflow,
					"discovered-state bound exceeded (max states %d)", e.maxStates)
			}
			seen[target] = true
			g.Nodes = append(g.Nodes, machine.StateNode{Label: target})

			path := make([]string, 0, len(entry.path)+1)
			path = append(path, entry.path...)
			path = append(path, event)
			frontier = append(frontier, frontierEntry{path: path, label: target})
		}
	}

	e.logger.Debug("exploration finished",
		"states", len(g.Nodes), "edges", len(g.Edges), "probes", e.probes)
	return g, nil
}

// observeInitial instantiates one replica and reads the root label.
func (e *Explorer) observeInitial() (string, error) {
	a, err := e.factory.New()
	if err != nil {
		return "", machine.NewError(machine.KindIntrospectionError,
			"candidate cannot be instantiated: %v", err)
	}
	e.probes++
	label := machine.NormalizeLabel(a.State())
	if label == "" {
		return "", machine.NewError(machine.KindIntrospectionError,
			"candidate reports an empty initial state label")
	}
	return label, nil
}

// probe re-reaches entry's state on a fresh replica, then attempts event.
//
// A replay step that the replica rejects contradicts an outcome already
// recorded for that step, which is nondeterminism, not a partial function.
// Likewise a rejected event that still changes the observed state.
func (e *Explorer) probe(entry frontierEntry, event string) (outcome, error) {
	a, err := e.factory.New()
	if err != nil {
		return outcome{}, machine.NewError(machine.KindIntrospectionError,
			"candidate cannot be instantiated: %v", err)
	}
	e.probes++

	for i, step := range entry.path {
		ok, err := a.Fire(step)
		if err != nil {
			return outcome{}, machine.NewError(machine.KindIntrospectionError,
				"candidate failed firing %q: %v", step, err)
		}
		if !ok {
			return outcome{}, &machine.VerifyError{
				Kind:    machine.KindNondeterminism,
				Message: fmt.Sprintf("replay step %d rejected an event previously accepted", i),
				State:   machine.NormalizeLabel(a.State()),
				Event:   step,
			}
		}
	}

	before := machine.NormalizeLabel(a.State())
	ok, err := a.Fire(event)
	if err != nil {
		return outcome{}, machine.NewError(machine.KindIntrospectionError,
			"candidate failed firing %q: %v", event, err)
	}
	after := machine.NormalizeLabel(a.State())
	if !ok {
		if after != before {
			return outcome{}, &machine.VerifyError{
				Kind:    machine.KindNondeterminism,
				Message: fmt.Sprintf("rejected event still moved state from %q to %q", before, after),
				State:   before,
				Event:   event,
			}
		}
		return outcome{accepted: false}, nil
	}
	if after == "" {
		return outcome{}, machine.NewError(machine.KindIntrospectionError,
			"candidate reports an empty state label after %q", event)
	}
	return outcome{accepted: true, label: after}, nil
}

func describe(o outcome) string {
	if !o.accepted {
		return "rejected"
	}
	return fmt.Sprintf("accepted -> %q", o.label)
}
