package loader

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/lockstep-dev/lockstep/internal/machine"
)

// referencePath is the top-level CUE field a reference spec lives under.
var referencePath = cue.ParsePath("reference")

// ReferenceFromCUE loads a reference spec from a CUE file.
//
// The file must define a top-level "reference" struct with the same shape
// as the YAML format:
//
//	reference: {
//		name:          "door"
//		naming_policy: "structural"
//		initial:       "Closed"
//		states: ["Closed", "Open", "Locked"]
//		transitions: [
//			{from: "Closed", event: "open", to: "Open"},
//		]
//	}
//
// CUE constraints in the file are evaluated before decoding, so a spec
// package can enforce its own invariants on top of the core validation.
func ReferenceFromCUE(path string) (machine.ReferenceSpec, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return machine.ReferenceSpec{}, &LoadError{
			Code: ErrCodeNotFound, Path: path, Message: "file not found",
		}
	}
	if err != nil {
		return machine.ReferenceSpec{}, &LoadError{
			Code: ErrCodeReadFailed, Path: path, Message: err.Error(),
		}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return machine.ReferenceSpec{}, &LoadError{
			Code: ErrCodeDecodeError, Path: path,
			Message: fmt.Sprintf("invalid CUE: %v", err),
		}
	}

	refValue := value.LookupPath(referencePath)
	if !refValue.Exists() {
		return machine.ReferenceSpec{}, &LoadError{
			Code: ErrCodeBadShape, Path: path,
			Message: `no top-level "reference" field`,
		}
	}

	var file referenceFile
	if err := refValue.Decode(&file); err != nil {
		return machine.ReferenceSpec{}, &LoadError{
			Code: ErrCodeDecodeError, Path: path,
			Message: fmt.Sprintf("decoding reference: %v", err),
		}
	}
	return file.toSpec(path)
}
