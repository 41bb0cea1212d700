// Package harness runs conformance scenarios against the verification
// core: each scenario pairs a reference spec with a candidate transition
// table (optionally fault-injected) and asserts on the resulting verdict.
// Golden snapshots keep full verdicts under regression control.
package harness

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Reference is the path to the reference spec (.yaml or .cue),
	// relative to the scenario file.
	Reference string `yaml:"reference"`

	// Candidate is the path to the candidate transition table (.yaml),
	// relative to the scenario file.
	Candidate string `yaml:"candidate"`

	// Policy optionally overrides the reference's naming policy.
	Policy string `yaml:"policy,omitempty"`

	// MaxStates and MaxDepth optionally tighten the exploration bounds.
	MaxStates int `yaml:"max_states,omitempty"`
	MaxDepth  int `yaml:"max_depth,omitempty"`

	// Fault optionally injects nondeterminism into the candidate.
	Fault *FaultSpec `yaml:"fault,omitempty"`

	// Expect describes the verdict this scenario must produce.
	Expect Expectation `yaml:"expect"`

	// dir is the scenario file's directory, for resolving relative paths.
	dir string
}

// FaultSpec describes an injected nondeterministic transition: alternate
// instantiations of the candidate send (State, Event) to Alternate instead
// of the table's target.
type FaultSpec struct {
	State     string `yaml:"state"`
	Event     string `yaml:"event"`
	Alternate string `yaml:"alternate"`
}

// Expectation is the verdict a scenario requires.
type Expectation struct {
	Pass bool `yaml:"pass"`

	// Reason is the required error kind when Pass is false.
	Reason string `yaml:"reason,omitempty"`

	// Missing and Extra are edges the diff must contain (subset match).
	Missing []EdgeSpec `yaml:"missing,omitempty"`
	Extra   []EdgeSpec `yaml:"extra,omitempty"`
}

// EdgeSpec is one expected diff edge.
type EdgeSpec struct {
	From  string `yaml:"from"`
	Event string `yaml:"event"`
	To    string `yaml:"to"`
}

// LoadScenario reads and strictly decodes a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	if s.Reference == "" || s.Candidate == "" {
		return nil, fmt.Errorf("scenario %s must name a reference and a candidate", path)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// resolve joins a scenario-relative path against the scenario directory.
func (s *Scenario) resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.dir, rel)
}
