package trace

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError reports a trace document that does not satisfy the
// schema. Message carries the full CUE error detail, including positions
// within the document.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "invalid trace document: " + e.Message
}

// Validate checks a YAML trace document against the embedded CUE schema.
// The schema is closed: misspelled or unknown fields fail validation
// rather than being silently dropped.
func Validate(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; failure to compile it is a build
		// defect, not a caller error.
		return fmt.Errorf("compile trace schema: %w", err)
	}

	file, err := cueyaml.Extract("trace.yaml", data)
	if err != nil {
		return &ValidationError{Message: cueerrors.Details(err, nil)}
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return &ValidationError{Message: cueerrors.Details(err, nil)}
	}

	unified := schema.LookupPath(cue.ParsePath("#Trace")).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Message: cueerrors.Details(err, nil)}
	}
	return nil
}
