// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import "encoding/json"

func stringValue(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}

func int64Value(p *int64, fallback int64) int64 {
	if p == nil {
		return fallback
	}
	return *p
}

func boolValue(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

func stringPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func boolPtr(b bool) *bool { return &b }

// marshalContent serializes a content object for the TEXT column,
// defaulting to an empty object.
func marshalContent(content map[string]any) string {
	if content == nil {
		return "{}"
	}
	data, err := json.Marshal(content)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// unmarshalContent parses a stored content column, tolerating empty
// and malformed text.
func unmarshalContent(text string) map[string]any {
	if text == "" {
		return map[string]any{}
	}
	var content map[string]any
	if err := json.Unmarshal([]byte(text), &content); err != nil || content == nil {
		return map[string]any{}
	}
	return content
}
