// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferFieldTypePriority(t *testing.T) {
	tests := []struct {
		field    string
		wantType string
		wantFmt  string
	}{
		{"is_featured", "boolean", ""},
		{"has_border", "boolean", ""},
		{"show_title", "boolean", ""},
		{"display_order", "number", ""},
		{"item_count", "number", ""},
		{"star_rating", "number", ""},
		{"feature_list", "array", ""},
		{"gallery_items", "array", ""},
		{"image_url", "string", "uri"},
		{"external_link", "string", "uri"},
		{"hero_image", "string", "uri"},
		{"heading", "string", ""},
		{"subtitle", "string", ""},
		// "image_count" matches both the image rule and the count
		// rule; the number rule must win.
		{"image_count", "number", ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			gotType, gotFmt := inferFieldType(tt.field)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantFmt, gotFmt)
		})
	}
}

func TestConvertToJSONSchemaNilDegradesToPermissive(t *testing.T) {
	got := ConvertToJSONSchema(nil)
	assert.Equal(t, "object", got["type"])
	assert.Equal(t, true, got["additionalProperties"])
	assert.NotContains(t, got, "properties")

	result := ValidateJSON(map[string]any{"anything": "goes"}, got)
	assert.True(t, result.Valid)
}

func TestConvertToJSONSchemaEmptyFields(t *testing.T) {
	got := ConvertToJSONSchema(&SectionSchema{})
	result := ValidateJSON(map[string]any{}, got)
	assert.True(t, result.Valid)
}

func TestConvertToJSONSchemaItemsField(t *testing.T) {
	s := &SectionSchema{
		Fields: []string{"heading", "items"},
		ItemsSchema: map[string]string{
			"label": "string",
			"value": "number",
		},
	}
	got := ConvertToJSONSchema(s)
	props := got["properties"].(map[string]any)
	items := props["items"].(map[string]any)
	require.Equal(t, "array", items["type"])

	element := items["items"].(map[string]any)
	elementProps := element["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string"}, elementProps["label"])
	assert.Equal(t, map[string]any{"type": "number"}, elementProps["value"])

	result := ValidateJSON(map[string]any{
		"heading": "Pricing",
		"items": []any{
			map[string]any{"label": "Basic", "value": float64(10)},
		},
	}, got)
	assert.True(t, result.Valid)

	result = ValidateJSON(map[string]any{
		"items": []any{
			map[string]any{"label": "Basic", "value": "ten"},
		},
	}, got)
	assert.False(t, result.Valid)
}

func TestGenerateExampleJSON(t *testing.T) {
	s := &SectionSchema{
		Fields:      []string{"heading", "is_featured", "item_count", "image_url", "items"},
		ItemsSchema: map[string]string{"label": "string"},
	}
	example := GenerateExampleJSON(s)
	assert.Equal(t, "Example heading", example["heading"])
	assert.Equal(t, true, example["is_featured"])
	assert.Equal(t, float64(0), example["item_count"])
	assert.Equal(t, "https://example.com/image_url", example["image_url"])
	require.Len(t, example["items"], 1)

	// The example must validate against its own generated schema.
	result := ValidateJSON(example, ConvertToJSONSchema(s))
	assert.True(t, result.Valid)
}

func TestGetSchemaDefinition(t *testing.T) {
	def := GetSchemaDefinition(&SectionSchema{Fields: []string{"heading"}})
	assert.Contains(t, def.Schema, "properties")
	assert.Contains(t, def.Example, "heading")
}
