// Package schema validates serialized parse results against the published
// JSON Schema of the Result shape.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/starford/havenfs/internal/document"
)

// URL is the resource name the schema is compiled under.
const URL = "https://havenfs.dev/schema/result-v1.schema.json"

//go:embed result.schema.json
var source []byte

// Source returns the raw schema document.
func Source() []byte {
	out := make([]byte, len(source))
	copy(out, source)
	return out
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(URL, bytes.NewReader(source)); err != nil {
		return nil, fmt.Errorf("schema: add resource: %w", err)
	}
	s, err := compiler.Compile(URL)
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}
	return s, nil
})

// Validate checks a JSON-encoded result.
func Validate(data []byte) error {
	s, err := compiled()
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("schema: decode instance: %w", err)
	}
	if err := s.Validate(instance); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// ValidateResult encodes res and validates it.
func ValidateResult(res document.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("schema: encode result: %w", err)
	}
	return Validate(data)
}
