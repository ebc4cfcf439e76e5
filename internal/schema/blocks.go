// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package schema holds the entity schema registry, the section schema
// adapter and the JSON validator used by the transfer layer.
package schema

// A block is a reusable JSON Schema fragment merged into entity
// schemas: a flat property map plus representative example values.
type block struct {
	properties map[string]any
	example    map[string]any
}

func seoBlock() block {
	return block{
		properties: map[string]any{
			"meta_title":       map[string]any{"type": "string"},
			"meta_description": map[string]any{"type": "string"},
			"meta_keywords":    map[string]any{"type": "string"},
		},
		example: map[string]any{
			"meta_title":       "Page title for search engines",
			"meta_description": "Short summary shown in search results",
			"meta_keywords":    "keyword1, keyword2",
		},
	}
}

func mediaBlock() block {
	return block{
		properties: map[string]any{
			"image_url": map[string]any{"type": "string", "format": "uri"},
			"image_alt": map[string]any{"type": "string"},
			"video_url": map[string]any{"type": "string", "format": "uri"},
		},
		example: map[string]any{
			"image_url": "https://example.com/image.jpg",
			"image_alt": "Descriptive alt text",
			"video_url": "https://example.com/video.mp4",
		},
	}
}

func ctaBlock() block {
	return block{
		properties: map[string]any{
			"cta_text":   map[string]any{"type": "string"},
			"cta_url":    map[string]any{"type": "string", "format": "uri"},
			"cta_target": map[string]any{"type": "string", "enum": []any{"_self", "_blank"}},
		},
		example: map[string]any{
			"cta_text":   "Get in touch",
			"cta_url":    "https://example.com/contact",
			"cta_target": "_self",
		},
	}
}

func metadataBlock() block {
	return block{
		properties: map[string]any{
			"is_active":     map[string]any{"type": "boolean"},
			"display_order": map[string]any{"type": "number"},
			"created_at":    map[string]any{"type": "string"},
			"updated_at":    map[string]any{"type": "string"},
		},
		example: map[string]any{
			"is_active":     true,
			"display_order": float64(0),
			"created_at":    "2026-01-01T00:00:00Z",
			"updated_at":    "2026-01-01T00:00:00Z",
		},
	}
}

func socialLinksBlock() block {
	return block{
		properties: map[string]any{
			"linkedin_url": map[string]any{"type": "string", "format": "uri"},
			"twitter_url":  map[string]any{"type": "string", "format": "uri"},
			"github_url":   map[string]any{"type": "string", "format": "uri"},
		},
		example: map[string]any{
			"linkedin_url": "https://linkedin.com/in/example",
			"twitter_url":  "https://twitter.com/example",
			"github_url":   "https://github.com/example",
		},
	}
}

func contactBlock() block {
	return block{
		properties: map[string]any{
			"email":   map[string]any{"type": "string", "format": "email"},
			"phone":   map[string]any{"type": "string"},
			"address": map[string]any{"type": "string"},
		},
		example: map[string]any{
			"email":   "hello@example.com",
			"phone":   "+1 555 0100",
			"address": "1 Example Street",
		},
	}
}

// mergeBlocks unions property maps left to right, last writer wins on
// key collision. Example maps merge the same way.
func mergeBlocks(blocks ...block) block {
	merged := block{
		properties: map[string]any{},
		example:    map[string]any{},
	}
	for _, b := range blocks {
		for k, v := range b.properties {
			merged.properties[k] = v
		}
		for k, v := range b.example {
			merged.example[k] = v
		}
	}
	return merged
}
