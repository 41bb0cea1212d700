package verify

import (
	"strings"

	"github.com/lockstep-dev/lockstep/internal/machine"
)

// Stats summarizes the work one verification run performed.
type Stats struct {
	// States and Edges describe the explored candidate graph. Zero when
	// exploration itself failed.
	States int `json:"states"`
	Edges  int `json:"edges"`

	// Probes is the number of candidate instantiations consumed.
	Probes int `json:"probes"`

	DurationMS int64 `json:"duration_ms"`
}

// Verdict is the complete outcome of one verification run, consumed by the
// external harness to derive a binary reward.
//
// A Verdict is produced once per run and discarded after reporting; no
// state crosses runs. Reason is empty on pass. Mapping is present on pass
// (identity under the exact policy). Diff is present for mismatch reasons.
type Verdict struct {
	Pass    bool              `json:"pass"`
	Reason  machine.ErrorKind `json:"reason,omitempty"`
	Detail  string            `json:"detail,omitempty"`
	Mapping machine.Mapping   `json:"mapping,omitempty"`
	Diff    *machine.Diff     `json:"diff,omitempty"`
	Stats   Stats             `json:"stats"`
}

// pass builds a passing verdict.
func pass(mapping machine.Mapping, stats Stats) *Verdict {
	return &Verdict{Pass: true, Mapping: mapping, Stats: stats}
}

// fail builds a failing verdict from a terminal error.
func fail(err error, diff *machine.Diff, stats Stats) *Verdict {
	v := &Verdict{Pass: false, Diff: diff, Stats: stats}
	if ve, ok := err.(*machine.VerifyError); ok {
		v.Reason = ve.Kind
		v.Detail = ve.Error()
	} else {
		v.Reason = machine.KindIntrospectionError
		v.Detail = err.Error()
	}
	return v
}

// parseFailure builds a PARSE_ERROR verdict from validation findings.
func parseFailure(findings []machine.ValidationError) *Verdict {
	msgs := make([]string, len(findings))
	for i, f := range findings {
		msgs[i] = f.Error()
	}
	return &Verdict{
		Pass:   false,
		Reason: machine.KindParseError,
		Detail: strings.Join(msgs, "; "),
	}
}
