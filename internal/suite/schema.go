package suite

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaOnce sync.Once
	schemaVal  cue.Value
	schemaErr  error
)

// schema compiles the embedded CUE schema once per process.
func schema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		schemaVal = ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := schemaVal.Err(); err != nil {
			schemaErr = fmt.Errorf("failed to compile suite schema: %w", err)
		}
	})
	return schemaVal, schemaErr
}

// ValidateFile checks a suite YAML file against the CUE schema without
// performing any network I/O. It reports constraint violations (bad
// methods, malformed paths, missing required fields) with CUE's field
// positions, which is stricter than the structural checks in Parse.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read suite file: %w", err)
	}
	return ValidateBytes(data)
}

// ValidateBytes checks suite YAML bytes against the CUE schema.
func ValidateBytes(data []byte) error {
	sv, err := schema()
	if err != nil {
		return err
	}
	if err := cueyaml.Validate(data, sv); err != nil {
		return fmt.Errorf("suite does not conform to schema: %w", err)
	}
	return nil
}
