package step

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// treeSchemaJSON is the JSON Schema for the tree wire format. Embedded as a
// constant to avoid filesystem dependencies.
const treeSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://opsdeck.dev/schemas/procedure-tree.json",
  "$ref": "#/$defs/step",
  "$defs": {
    "step": {
      "type": "object",
      "required": ["step", "description", "execution_status", "health_status"],
      "properties": {
        "id": { "type": "string" },
        "step": { "type": "string", "minLength": 1 },
        "description": { "type": "string" },
        "execution_status": {
          "type": "string",
          "enum": ["pending", "running", "success", "failed", "skipped"]
        },
        "health_status": {
          "type": "string",
          "enum": ["unknown", "healthy", "warning", "critical", "error"]
        },
        "children": {
          "type": "array",
          "items": { "$ref": "#/$defs/step" }
        }
      },
      "additionalProperties": false
    }
  }
}`

var (
	treeSchemaOnce sync.Once
	treeSchema     *jsonschema.Schema
	treeSchemaErr  error
)

func compiledTreeSchema() (*jsonschema.Schema, error) {
	treeSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(treeSchemaJSON))
		if err != nil {
			treeSchemaErr = fmt.Errorf("unmarshal tree schema: %w", err)
			return
		}
		if err := c.AddResource("https://opsdeck.dev/schemas/procedure-tree.json", doc); err != nil {
			treeSchemaErr = fmt.Errorf("add tree schema resource: %w", err)
			return
		}
		treeSchema, treeSchemaErr = c.Compile("https://opsdeck.dev/schemas/procedure-tree.json")
	})
	return treeSchema, treeSchemaErr
}

// SchemaError reports JSON Schema violations found in a tree payload.
// Violations are leaf messages prefixed with their instance location.
type SchemaError struct {
	Violations []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	switch len(e.Violations) {
	case 0:
		return "tree payload failed schema validation"
	case 1:
		return "tree payload failed schema validation: " + e.Violations[0]
	default:
		return fmt.Sprintf("tree payload failed schema validation with %d violations: %s",
			len(e.Violations), e.Violations[0])
	}
}

// ValidateWire checks raw JSON bytes against the tree wire schema before
// decoding. It guards the HTTP save path against malformed payloads: wrong
// types, unknown fields, out-of-range statuses. Content rules like non-empty
// descriptions are left to [Validate], which produces friendlier errors.
func ValidateWire(data []byte) error {
	schema, err := compiledTreeSchema()
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse tree payload: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		return &SchemaError{Violations: collectViolations(verr)}
	}
	return nil
}

// collectViolations walks a ValidationError tree and collects leaf messages
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
