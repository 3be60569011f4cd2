package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	schemaOnce sync.Once
	deedSchema *jsonschema.Schema
	schemaErr  error
)

// compiledDeedSchema compiles the deed record schema on first use. The schema
// is fixed for the process lifetime, and validation runs up to twice per
// extraction, so the compiled form is shared.
func compiledDeedSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(BuildEscrituraJSONSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal deed schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("escritura.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add deed schema: %w", err)
			return
		}
		deedSchema, schemaErr = compiler.Compile("escritura.json")
	})
	return deedSchema, schemaErr
}

// ValidateEscrituraJSON checks that data is a conforming deed record.
func ValidateEscrituraJSON(data []byte) error {
	schema, err := compiledDeedSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match deed schema: %w", err)
	}
	return nil
}
