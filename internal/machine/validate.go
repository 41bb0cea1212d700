package machine

import "fmt"

// Validation error codes (E100-E199).
const (
	ErrPolicyUnknown        = "E100" // naming policy not exact|structural
	ErrNoStates             = "E101" // reference declares no states
	ErrInitialEmpty         = "E102" // initial state missing
	ErrInitialUndeclared    = "E103" // initial state not among declared states
	ErrDuplicateState       = "E104" // duplicate state label
	ErrEmptyStateLabel      = "E105" // state label empty after normalization
	ErrEdgeSourceUnknown    = "E106" // edge source not a declared state
	ErrEdgeTargetUnknown    = "E107" // edge target not a declared state
	ErrEmptyEventLabel      = "E108" // event label empty after normalization
	ErrDuplicateSourceEvent = "E109" // two edges share (source, event)
	ErrUnreachableState     = "E110" // declared state unreachable from initial
)

// ValidationError is a single well-formedness finding in a reference spec.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a reference spec for internal consistency.
// Returns all findings (does not fail fast); an empty slice means the spec
// is well-formed. Labels are normalized before checking, matching the
// normalization the canonicalizer applies later.
func Validate(spec ReferenceSpec) []ValidationError {
	var errs []ValidationError

	if !spec.Policy.Valid() {
		errs = append(errs, ValidationError{
			Field:   "naming_policy",
			Message: fmt.Sprintf("unknown policy %q (want %q or %q)", spec.Policy, PolicyExact, PolicyStructural),
			Code:    ErrPolicyUnknown,
		})
	}

	g := spec.Graph
	if len(g.Nodes) == 0 {
		errs = append(errs, ValidationError{
			Field:   "states",
			Message: "reference declares no states",
			Code:    ErrNoStates,
		})
		return errs
	}

	declared := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		label := NormalizeLabel(n.Label)
		if label == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("states[%d]", i),
				Message: "state label is empty",
				Code:    ErrEmptyStateLabel,
			})
			continue
		}
		if declared[label] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("states[%d]", i),
				Message: fmt.Sprintf("duplicate state label %q", label),
				Code:    ErrDuplicateState,
			})
			continue
		}
		declared[label] = true
	}

	initial := NormalizeLabel(g.Initial)
	switch {
	case initial == "":
		errs = append(errs, ValidationError{
			Field:   "initial",
			Message: "initial state is missing",
			Code:    ErrInitialEmpty,
		})
	case !declared[initial]:
		errs = append(errs, ValidationError{
			Field:   "initial",
			Message: fmt.Sprintf("initial state %q is not a declared state", initial),
			Code:    ErrInitialUndeclared,
		})
	}

	seenPair := make(map[TransitionEdge]bool, len(g.Edges))
	for i, e := range g.Edges {
		field := fmt.Sprintf("transitions[%d]", i)
		source := NormalizeLabel(e.Source)
		event := NormalizeLabel(e.Event)
		target := NormalizeLabel(e.Target)

		if !declared[source] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("source %q is not a declared state", source),
				Code:    ErrEdgeSourceUnknown,
			})
		}
		if !declared[target] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("target %q is not a declared state", target),
				Code:    ErrEdgeTargetUnknown,
			})
		}
		if event == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "event label is empty",
				Code:    ErrEmptyEventLabel,
			})
			continue
		}

		// Same-event multiplicity from one source is the reference-side
		// analogue of candidate nondeterminism.
		pair := TransitionEdge{Source: source, Event: event}
		if seenPair[pair] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate transition for (%s, %s)", source, event),
				Code:    ErrDuplicateSourceEvent,
			})
		}
		seenPair[pair] = true
	}

	if len(errs) == 0 {
		for _, finding := range checkReachability(g, initial) {
			errs = append(errs, finding)
		}
	}

	return errs
}

// checkReachability reports declared states not reachable from the initial
// state. The explorer can never produce such a state on the candidate side,
// so an unreachable reference state could never be matched.
func checkReachability(g Graph, initial string) []ValidationError {
	adjacent := make(map[string][]string)
	for _, e := range g.Edges {
		src := NormalizeLabel(e.Source)
		adjacent[src] = append(adjacent[src], NormalizeLabel(e.Target))
	}

	visited := map[string]bool{initial: true}
	queue := []string{initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacent[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var errs []ValidationError
	for i, n := range g.Nodes {
		label := NormalizeLabel(n.Label)
		if !visited[label] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("states[%d]", i),
				Message: fmt.Sprintf("state %q is unreachable from initial state", label),
				Code:    ErrUnreachableState,
			})
		}
	}
	return errs
}
