// Package loader decodes reference specs and candidate transition tables
// from their on-disk forms into the core data model.
//
// Two reference formats are supported: YAML files (the common case) and CUE
// files (for references embedded in larger CUE packages). Candidate tables
// are YAML only. The loader checks shape, not semantics: a file that decodes
// cleanly can still fail reference validation with PARSE_ERROR downstream.
package loader

import (
	"fmt"

	"github.com/lockstep-dev/lockstep/internal/machine"
)

// Loader error codes (E001-E019).
const (
	ErrCodeNotFound    = "E001" // file does not exist
	ErrCodeReadFailed  = "E002" // file exists but cannot be read
	ErrCodeDecodeError = "E003" // file content does not decode
	ErrCodeBadShape    = "E004" // decoded content misses required fields
)

// LoadError is a structured loading failure.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
}

// referenceFile is the serialized reference spec shape, shared by the YAML
// and CUE decoders. CUE decoding honors the json tags.
type referenceFile struct {
	Name         string           `yaml:"name" json:"name"`
	NamingPolicy string           `yaml:"naming_policy" json:"naming_policy"`
	Initial      string           `yaml:"initial" json:"initial"`
	States       []string         `yaml:"states" json:"states"`
	Transitions  []transitionFile `yaml:"transitions" json:"transitions"`
}

// transitionFile is one serialized (source, event, target) triple.
type transitionFile struct {
	From  string `yaml:"from" json:"from"`
	Event string `yaml:"event" json:"event"`
	To    string `yaml:"to" json:"to"`
}

// toSpec converts the file shape into the core data model.
func (f referenceFile) toSpec(path string) (machine.ReferenceSpec, error) {
	if f.Name == "" {
		return machine.ReferenceSpec{}, &LoadError{
			Code: ErrCodeBadShape, Path: path, Message: "reference has no name",
		}
	}
	if len(f.States) == 0 {
		return machine.ReferenceSpec{}, &LoadError{
			Code: ErrCodeBadShape, Path: path, Message: "reference declares no states",
		}
	}

	spec := machine.ReferenceSpec{
		Name:   f.Name,
		Policy: machine.NamingPolicy(f.NamingPolicy),
		Graph: machine.Graph{
			Initial: f.Initial,
		},
	}
	for _, s := range f.States {
		spec.Graph.Nodes = append(spec.Graph.Nodes, machine.StateNode{
			Label:   s,
			Initial: s == f.Initial,
		})
	}
	for _, t := range f.Transitions {
		spec.Graph.Edges = append(spec.Graph.Edges, machine.TransitionEdge{
			Source: t.From,
			Event:  t.Event,
			Target: t.To,
		})
	}
	return spec, nil
}
