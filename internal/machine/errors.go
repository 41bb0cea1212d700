package machine

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes the terminal outcomes of a verification run.
// Every kind indicates either a malformed input or a confirmed behavioral
// defect; none is retried locally.
type ErrorKind string

const (
	// KindParseError indicates the reference spec is internally
	// inconsistent (undeclared initial state, dangling edge endpoint, ...).
	KindParseError ErrorKind = "PARSE_ERROR"

	// KindIntrospectionError indicates the candidate exposes no usable
	// state/event surface.
	KindIntrospectionError ErrorKind = "INTROSPECTION_ERROR"

	// KindNondeterminism indicates the same (state, event) pair produced
	// different outcomes across independent replays.
	KindNondeterminism ErrorKind = "NONDETERMINISM"

	// KindOverflow indicates the discovered-state or path-depth bound was
	// exceeded: the candidate is unbounded or far larger than the reference.
	KindOverflow ErrorKind = "OVERFLOW"

	// KindTimeout indicates the wall-clock deadline expired during
	// exploration or matching.
	KindTimeout ErrorKind = "TIMEOUT"

	// KindExactMismatch indicates well-formed graphs that differ under the
	// exact naming policy. Carries a diff.
	KindExactMismatch ErrorKind = "EXACT_MISMATCH"

	// KindStructuralMismatch indicates well-formed graphs with no valid
	// bijection under the structural naming policy. Carries a diff.
	KindStructuralMismatch ErrorKind = "STRUCTURAL_MISMATCH"
)

// VerifyError is the structured error every core component reports with.
//
// State and Event name the offending probe site when one exists (e.g. for
// NONDETERMINISM). Details carries free-form diagnostic context.
type VerifyError struct {
	Kind    ErrorKind
	Message string
	State   string
	Event   string
	Details map[string]string
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	if e.State != "" && e.Event != "" {
		return fmt.Sprintf("%s: %s (state=%s, event=%s)", e.Kind, e.Message, e.State, e.Event)
	}
	if e.State != "" {
		return fmt.Sprintf("%s: %s (state=%s)", e.Kind, e.Message, e.State)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates a VerifyError with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *VerifyError {
	return &VerifyError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind from err, unwrapping as needed.
// The second return is false when err carries no VerifyError.
func KindOf(err error) (ErrorKind, bool) {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a VerifyError of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
