// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import "strings"

// SectionSchema is the loose, declarative description stored per
// section type: a flat field-name list plus an optional explicit type
// map for elements of the special "items" field.
type SectionSchema struct {
	Fields      []string          `json:"fields"`
	ItemsSchema map[string]string `json:"items_schema,omitempty"`
}

// SchemaDefinition pairs the compiled JSON Schema for a section type
// with a synthetic example document.
type SchemaDefinition struct {
	Schema  map[string]any `json:"schema"`
	Example map[string]any `json:"example"`
}

// fieldTypeRule maps a field-name pattern to an inferred type. The
// rules form an explicit priority list and the first match wins, so a
// name like "image_count" lands on number before the image/URI rule
// can claim it.
type fieldTypeRule struct {
	match    func(name string) bool
	jsonType string
	format   string
}

func containsAny(name string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(name, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(name string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

var fieldTypeRules = []fieldTypeRule{
	{match: func(n string) bool { return hasAnyPrefix(n, "is_", "has_", "show_") }, jsonType: "boolean"},
	{match: func(n string) bool { return containsAny(n, "_order", "_count", "_rating") }, jsonType: "number"},
	{match: func(n string) bool { return containsAny(n, "_list", "_items") }, jsonType: "array"},
	{match: func(n string) bool { return containsAny(n, "url", "link", "image") }, jsonType: "string", format: "uri"},
}

// inferFieldType resolves a field name to a JSON Schema type via the
// priority rules, defaulting to plain string.
func inferFieldType(name string) (jsonType, format string) {
	lower := strings.ToLower(name)
	for _, rule := range fieldTypeRules {
		if rule.match(lower) {
			return rule.jsonType, rule.format
		}
	}
	return "string", ""
}

// permissiveSchema accepts any JSON object. Used whenever a section
// type has no usable schema: an absent schema must never block editing
// or rendering.
func permissiveSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
	}
}

// ConvertToJSONSchema compiles the declarative description into a JSON
// Schema. A nil schema or empty field list degrades to the permissive
// schema; an empty object still validates against the result.
func ConvertToJSONSchema(s *SectionSchema) map[string]any {
	if s == nil || len(s.Fields) == 0 {
		return permissiveSchema()
	}

	properties := make(map[string]any, len(s.Fields))
	for _, field := range s.Fields {
		if field == "items" {
			properties[field] = itemsFieldSchema(s.ItemsSchema)
			continue
		}
		jsonType, format := inferFieldType(field)
		prop := map[string]any{"type": jsonType}
		if format != "" {
			prop["format"] = format
		}
		if jsonType == "array" {
			prop["items"] = map[string]any{"type": "string"}
		}
		properties[field] = prop
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
}

// itemsFieldSchema builds the schema for the special "items" field:
// an array of objects whose shape comes from the explicit items_schema
// type map rather than name heuristics.
func itemsFieldSchema(itemsSchema map[string]string) map[string]any {
	if len(itemsSchema) == 0 {
		return map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object", "additionalProperties": true},
		}
	}
	properties := make(map[string]any, len(itemsSchema))
	for field, typeName := range itemsSchema {
		properties[field] = map[string]any{"type": normalizeTypeName(typeName)}
	}
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"properties":           properties,
			"additionalProperties": true,
		},
	}
}

func normalizeTypeName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "number", "integer", "float":
		return "number"
	case "boolean", "bool":
		return "boolean"
	case "array":
		return "array"
	case "object":
		return "object"
	default:
		return "string"
	}
}

// GenerateExampleJSON produces a representative document for a section
// type using the same inference rules as ConvertToJSONSchema.
func GenerateExampleJSON(s *SectionSchema) map[string]any {
	example := map[string]any{}
	if s == nil {
		return example
	}
	for _, field := range s.Fields {
		if field == "items" {
			example[field] = []any{exampleItem(s.ItemsSchema)}
			continue
		}
		jsonType, format := inferFieldType(field)
		example[field] = exampleValue(field, jsonType, format)
	}
	return example
}

func exampleItem(itemsSchema map[string]string) map[string]any {
	item := map[string]any{}
	for field, typeName := range itemsSchema {
		item[field] = exampleValue(field, normalizeTypeName(typeName), "")
	}
	return item
}

func exampleValue(field, jsonType, format string) any {
	switch jsonType {
	case "boolean":
		return true
	case "number":
		return float64(0)
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	default:
		if format == "uri" {
			return "https://example.com/" + field
		}
		return "Example " + strings.ReplaceAll(field, "_", " ")
	}
}

// GetSchemaDefinition returns the compiled schema and example pair.
func GetSchemaDefinition(s *SectionSchema) SchemaDefinition {
	return SchemaDefinition{
		Schema:  ConvertToJSONSchema(s),
		Example: GenerateExampleJSON(s),
	}
}
