package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
)

// SourceRule tags files whose base name matches Pattern with Variant.
type SourceRule struct {
	Pattern string                  `json:"pattern"`
	Variant constants.SchemaVariant `json:"variant"`
}

// Manifest declares the schema variant of every source up front instead of
// guessing from file contents.
type Manifest struct {
	DefaultVariant constants.SchemaVariant `json:"default_variant,omitempty"`
	Sources        []SourceRule            `json:"sources"`
}

// DefaultManifest tags the customer invoices dataset and passes everything
// else through.
func DefaultManifest() *Manifest {
	return &Manifest{
		DefaultVariant: constants.VariantPassthrough,
		Sources: []SourceRule{
			{Pattern: "*customer_invoices_dataset.csv", Variant: constants.VariantCustomerInvoices},
		},
	}
}

// Resolve returns the variant for the file at path. The first matching rule
// wins.
func (m *Manifest) Resolve(path string) constants.SchemaVariant {
	base := filepath.Base(path)
	for _, r := range m.Sources {
		if ok, _ := filepath.Match(r.Pattern, base); ok {
			return r.Variant
		}
	}
	if m.DefaultVariant == "" {
		return constants.VariantPassthrough
	}
	return m.DefaultVariant
}

func manifestSchema() map[string]any {
	variants := make([]any, 0)
	for _, v := range constants.VariantStrings() {
		variants = append(variants, v)
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"sources"},
		"properties": map[string]any{
			"default_variant": map[string]any{"type": "string", "enum": variants},
			"sources": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"pattern", "variant"},
					"properties": map[string]any{
						"pattern": map[string]any{"type": "string", "minLength": 1},
						"variant": map[string]any{"type": "string", "enum": variants},
					},
				},
			},
		},
	}
}

// ParseManifest validates data against the manifest schema and decodes it.
func ParseManifest(data []byte) (*Manifest, error) {
	if err := validateAgainstSchema(manifestSchema(), data); err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	for _, r := range m.Sources {
		if _, err := filepath.Match(r.Pattern, ""); err != nil {
			return nil, fmt.Errorf("source pattern %q: %w", r.Pattern, err)
		}
	}
	return &m, nil
}

// LoadManifest reads a manifest file. An empty path yields DefaultManifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return DefaultManifest(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("manifest.schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("manifest.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal manifest: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("manifest does not match schema: %w", err)
	}
	return nil
}
