package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lockstep-dev/lockstep/internal/explore"
	"github.com/lockstep-dev/lockstep/internal/machine"
)

// ReferenceFromYAML loads a reference spec from a YAML file.
//
// Decoding is strict: unknown fields are rejected so that a typo in a spec
// file fails loudly instead of silently dropping transitions.
func ReferenceFromYAML(path string) (machine.ReferenceSpec, error) {
	var file referenceFile
	if err := decodeStrict(path, &file); err != nil {
		return machine.ReferenceSpec{}, err
	}
	return file.toSpec(path)
}

// candidateFile is the serialized candidate transition table shape.
type candidateFile struct {
	Initial     string           `yaml:"initial"`
	Events      []string         `yaml:"events,omitempty"`
	Transitions []transitionFile `yaml:"transitions"`
}

// CandidateFromYAML loads a table-driven candidate from a YAML file.
//
// The optional events list overrides the event set derived from the table;
// it lets a fixture declare events the table never accepts (or declare
// none, to exercise introspection failure).
func CandidateFromYAML(path string) (*explore.Table, error) {
	var file candidateFile
	if err := decodeStrict(path, &file); err != nil {
		return nil, err
	}
	if file.Initial == "" {
		return nil, &LoadError{
			Code: ErrCodeBadShape, Path: path, Message: "candidate has no initial state",
		}
	}

	transitions := make(map[explore.TransitionKey]string, len(file.Transitions))
	for _, t := range file.Transitions {
		transitions[explore.TransitionKey{State: t.From, Event: t.Event}] = t.To
	}
	table := explore.NewTable(file.Initial, transitions)
	if file.Events != nil {
		table = table.WithEvents(file.Events...)
	}
	return table, nil
}

// decodeStrict reads path and decodes YAML with unknown fields rejected.
func decodeStrict(path string, out any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &LoadError{Code: ErrCodeNotFound, Path: path, Message: "file not found"}
	}
	if err != nil {
		return &LoadError{Code: ErrCodeReadFailed, Path: path, Message: err.Error()}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return &LoadError{
			Code: ErrCodeDecodeError, Path: path,
			Message: fmt.Sprintf("invalid YAML: %v", err),
		}
	}
	return nil
}
