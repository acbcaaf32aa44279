package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request payload kinds with a schema on disk.
const (
	PayloadProject   = "project"
	PayloadMilestone = "milestone"
)

// Validator hard-checks create payloads against JSON Schemas loaded from a
// schema directory. Handlers reject violations before any workflow call.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator loads every *.json file from schemaDir and compiles it. The
// payload kind is the file name with .json and a trailing .v1 stripped
// (milestone.v1.json -> "milestone").
func NewValidator(ctx context.Context, schemaDir string) (*Validator, error) {
	_ = ctx
	entries, err := os.ReadDir(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir %q: %w", schemaDir, err)
	}
	schemas := make(map[string]*jsonschema.Schema)

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		kind := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		kind = strings.TrimSuffix(kind, ".v1")
		path := filepath.Join(schemaDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		id := "https://workbridge.dev/schemas/" + kind
		schemas[kind], err = jsonschema.CompileString(id, string(data))
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", kind, err)
		}
	}

	return &Validator{schemas: schemas}, nil
}

// Validate checks the raw payload against the schema for kind. Schema
// violations wrap ErrValidation so handlers can map them to 422.
func (v *Validator) Validate(ctx context.Context, kind string, payload json.RawMessage) error {
	schema, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("unknown payload kind %q", kind)
	}
	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
