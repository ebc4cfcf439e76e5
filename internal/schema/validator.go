// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError is one normalized schema violation: a JSON-pointer
// style path and a human message.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationResult reports the outcome of a document validation. All
// violations are collected in one pass rather than failing fast.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// compiledSchemas caches compiled validators keyed by the marshaled
// schema text. Repeated validation against the same schema (live
// typing in the JSON editor) skips recompilation.
var compiledSchemas sync.Map // string -> *gojsonschema.Schema

func compileSchema(schema map[string]any) (*gojsonschema.Schema, error) {
	key, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	if cached, ok := compiledSchemas.Load(string(key)); ok {
		return cached.(*gojsonschema.Schema), nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	compiledSchemas.Store(string(key), compiled)
	return compiled, nil
}

// ValidateJSON checks a document against an object schema. A nil
// schema means no validation is available and every object passes.
// Non-object input fails with a single synthetic error at "/".
func ValidateJSON(doc any, schema map[string]any) ValidationResult {
	if _, ok := doc.(map[string]any); !ok {
		return ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Path: "/", Message: "document must be a JSON object"}},
		}
	}
	if schema == nil {
		return ValidationResult{Valid: true}
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		// A malformed schema degrades to accept-all rather than
		// blocking content edits.
		return ValidationResult{Valid: true}
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Path: "/", Message: err.Error()}},
		}
	}
	if result.Valid() {
		return ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, normalizeError(re))
	}
	return ValidationResult{Valid: false, Errors: errs}
}

// ValidateJSONText parses raw JSON text and validates the result.
func ValidateJSONText(text string, schema map[string]any) ValidationResult {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Path: "/", Message: "invalid JSON: " + err.Error()}},
		}
	}
	return ValidateJSON(doc, schema)
}

// normalizeError flattens a library error into {path, message},
// rewording the two most common keywords. Other keywords keep the
// library's description.
func normalizeError(re gojsonschema.ResultError) ValidationError {
	path := pointerPath(re.Field())
	switch re.Type() {
	case "required":
		property, _ := re.Details()["property"].(string)
		if property != "" {
			return ValidationError{
				Path:    joinPointer(path, property),
				Message: fmt.Sprintf("missing required field %q", property),
			}
		}
	case "invalid_type":
		expected, _ := re.Details()["expected"].(string)
		given, _ := re.Details()["given"].(string)
		if expected != "" && given != "" {
			return ValidationError{
				Path:    path,
				Message: fmt.Sprintf("expected %s but got %s", expected, given),
			}
		}
	}
	return ValidationError{Path: path, Message: re.Description()}
}

// pointerPath converts the library's dotted field notation
// ("(root).a.b") into a JSON-pointer style path ("/a/b").
func pointerPath(field string) string {
	if field == "" || field == "(root)" {
		return "/"
	}
	field = strings.TrimPrefix(field, "(root).")
	return "/" + strings.ReplaceAll(field, ".", "/")
}

func joinPointer(base, segment string) string {
	if base == "/" {
		return "/" + segment
	}
	return base + "/" + segment
}
