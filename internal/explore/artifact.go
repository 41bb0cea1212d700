package explore

// Artifact is the black-box surface of one candidate machine instance.
//
// Implementations are positioned at the machine's initial state when
// produced by a Factory and are discarded after a single probe sequence;
// the explorer never rewinds an instance.
type Artifact interface {
	// State returns the current observed state label.
	State() string

	// Fire attempts the named event. It returns false when the event is
	// inapplicable in the current state (the transition function is allowed
	// to be partial); in that case the state must not change. A non-nil
	// error means the artifact itself is broken (unknown event, internal
	// fault) and aborts exploration.
	Fire(event string) (bool, error)
}

// Factory produces fresh candidate instances and enumerates the candidate's
// declared events.
//
// Event enumeration is an adapter concern: a table-backed candidate lists
// its table's events, a reflective adapter for some artifact format would
// list whatever operations that format exposes. A factory that can produce
// no instance, or declares no events, fails fast with INTROSPECTION_ERROR.
type Factory interface {
	// New returns a fresh instance positioned at the initial state.
	New() (Artifact, error)

	// Events returns the declared event identifiers. Order is irrelevant;
	// the explorer sorts them for deterministic traversal.
	Events() []string
}
