package checklist

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrDocumentInvalid indicates a checklist file does not match the expected shape.
var ErrDocumentInvalid = errors.New("checklist: document invalid")

const schemaURL = "checklist.schema.json"

const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "description": {"type": "string"},
    "ui": {"type": "object"},
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "note": {"type": "string"},
          "subtitle": {"type": "string"},
          "items": {"type": "array", "items": {"$ref": "#/$defs/entry"}}
        }
      }
    },
    "categories": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": ["string", "integer"]},
          "name": {"type": "string"}
        }
      }
    },
    "items": {"type": "array", "items": {"$ref": "#/$defs/entry"}}
  },
  "anyOf": [
    {"required": ["sections"]},
    {"required": ["items"]}
  ],
  "$defs": {
    "entry": {
      "oneOf": [
        {"type": "string"},
        {
          "type": "object",
          "properties": {
            "id": {"type": ["string", "integer"]},
            "item": {"type": "string"},
            "title": {"type": "string"},
            "question": {"type": "string"},
            "category_id": {"type": ["string", "integer"]},
            "citation": {"type": "string"},
            "responsibility": {"type": "string"},
            "joint_roles": {"type": "array", "items": {"type": "string"}},
            "evidence_type": {"type": "array", "items": {"type": "string"}},
            "show_citation": {"type": "boolean"},
            "report_include": {"type": "boolean"},
            "frequency": {"type": "string"},
            "note": {"type": "string"}
          }
        }
      ]
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func checklistSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, strings.NewReader(documentSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Issue is a single schema violation.
type Issue struct {
	Location string
	Message  string
}

// DocumentError lists schema violations for a checklist file.
type DocumentError struct {
	Issues []Issue
}

func (e *DocumentError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	if len(parts) == 0 {
		return ErrDocumentInvalid.Error()
	}
	return ErrDocumentInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (e *DocumentError) Unwrap() error {
	return ErrDocumentInvalid
}

// validateDocument checks a decoded JSON value against the checklist schema.
func validateDocument(doc any) error {
	schema, err := checklistSchema()
	if err != nil {
		return fmt.Errorf("checklist: compile schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &DocumentError{Issues: collectIssues(validationErr)}
		}
		return fmt.Errorf("%w: %v", ErrDocumentInvalid, err)
	}
	return nil
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	issues := []Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
