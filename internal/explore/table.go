package explore

import (
	"fmt"
	"sort"

	"github.com/lockstep-dev/lockstep/internal/machine"
)

// TransitionKey addresses one cell of a candidate transition table.
type TransitionKey struct {
	State string
	Event string
}

// Table is a deterministic table-driven candidate: the in-repo adapter that
// lets reference-shaped machines, fixture files, and fault-injection
// wrappers stand in for generated artifacts. It implements Factory.
//
// Cells absent from the table are inapplicable events (partial transition
// function). Table is immutable after construction and safe for concurrent
// use; each instance it produces owns its own cursor.
type Table struct {
	initial     string
	transitions map[TransitionKey]string
	events      []string
}

// NewTable builds a table-driven candidate from an initial state and a
// transition map. The declared event set is derived from the table's keys.
func NewTable(initial string, transitions map[TransitionKey]string) *Table {
	t := &Table{
		initial:     initial,
		transitions: make(map[TransitionKey]string, len(transitions)),
	}
	eventSet := make(map[string]bool)
	for k, target := range transitions {
		t.transitions[k] = target
		eventSet[k.Event] = true
	}
	for ev := range eventSet {
		t.events = append(t.events, ev)
	}
	sort.Strings(t.events)
	return t
}

// NewTableFromGraph builds a table-driven candidate that replays a graph's
// transitions verbatim. Used for reflexivity checks and scenario fixtures.
func NewTableFromGraph(g machine.Graph) *Table {
	transitions := make(map[TransitionKey]string, len(g.Edges))
	for _, e := range g.Edges {
		transitions[TransitionKey{State: e.Source, Event: e.Event}] = e.Target
	}
	return NewTable(g.Initial, transitions)
}

// WithEvents overrides the declared event set. An empty set makes the
// candidate fail introspection, which tests rely on.
func (t *Table) WithEvents(events ...string) *Table {
	clone := &Table{initial: t.initial, transitions: t.transitions}
	clone.events = append([]string(nil), events...)
	sort.Strings(clone.events)
	return clone
}

// Events implements Factory.
func (t *Table) Events() []string {
	return append([]string(nil), t.events...)
}

// New implements Factory.
func (t *Table) New() (Artifact, error) {
	if t.initial == "" {
		return nil, fmt.Errorf("table candidate has no initial state")
	}
	return &tableArtifact{table: t, state: t.initial}, nil
}

// tableArtifact is one instance of a table-driven candidate.
type tableArtifact struct {
	table *Table
	state string
}

func (a *tableArtifact) State() string {
	return a.state
}

func (a *tableArtifact) Fire(event string) (bool, error) {
	target, ok := a.table.transitions[TransitionKey{State: a.state, Event: event}]
	if !ok {
		return false, nil
	}
	a.state = target
	return true, nil
}
