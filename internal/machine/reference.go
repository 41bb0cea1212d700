package machine

// ReferenceSpec is the expected machine supplied by the collaborator layer:
// a finite graph plus the naming policy the candidate is verified under.
//
// The spec is treated as already validated by the core; Validate rejects a
// structurally malformed spec with PARSE_ERROR findings before any
// exploration begins.
type ReferenceSpec struct {
	// Name identifies the reference machine in diagnostics and journal rows.
	Name string `json:"name"`

	// Policy selects exact or structural label comparison.
	Policy NamingPolicy `json:"naming_policy"`

	Graph Graph `json:"graph"`
}
