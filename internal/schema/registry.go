// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import (
	"sort"
	"sync"

	"github.com/stanzacms/stanza/internal/model"
)

// SchemaVersion tags every registered entity schema.
const SchemaVersion = "1.0"

// EntitySchema describes one entity type: an object JSON Schema, a
// representative example document and a human description. Schemas are
// descriptive, not restrictive: additionalProperties stays true at the
// top level so unknown fields pass through.
type EntitySchema struct {
	EntityType  model.EntityType `json:"entity_type"`
	Version     string           `json:"version"`
	Schema      map[string]any   `json:"schema"`
	Example     map[string]any   `json:"example"`
	Description string           `json:"description"`
}

// Registry holds the entity schemas. The defaults are built once at
// construction by pure block composition; RegisterEntitySchema allows
// extension at runtime.
type Registry struct {
	mu      sync.RWMutex
	schemas map[model.EntityType]EntitySchema
}

// NewRegistry builds a registry populated with the default schemas for
// every known entity type.
func NewRegistry() *Registry {
	r := &Registry{schemas: make(map[model.EntityType]EntitySchema)}
	for _, s := range defaultEntitySchemas() {
		r.schemas[s.EntityType] = s
	}
	return r
}

// GetEntitySchema returns the schema for an entity type, or nil when
// none is registered. Callers must treat nil as "no validation
// available, accept any object".
func (r *Registry) GetEntitySchema(t model.EntityType) *EntitySchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[t]
	if !ok {
		return nil
	}
	return &s
}

// GetAllEntitySchemas returns every registered schema sorted by entity
// type for deterministic listings.
func (r *Registry) GetAllEntitySchemas() []EntitySchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]EntitySchema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityType < out[j].EntityType })
	return out
}

// RegisterEntitySchema adds or replaces the schema for its entity type.
func (r *Registry) RegisterEntitySchema(s EntitySchema) {
	if s.Version == "" {
		s.Version = SchemaVersion
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.EntityType] = s
}

// buildEntitySchema composes blocks and entity-specific properties into
// one object schema. Specific properties win over block properties on
// key collision.
func buildEntitySchema(t model.EntityType, description string, specific block, blocks ...block) EntitySchema {
	merged := mergeBlocks(append(blocks, specific)...)
	return EntitySchema{
		EntityType: t,
		Version:    SchemaVersion,
		Schema: map[string]any{
			"type":                 "object",
			"properties":           merged.properties,
			"additionalProperties": true,
		},
		Example:     merged.example,
		Description: description,
	}
}

func defaultEntitySchemas() []EntitySchema {
	return []EntitySchema{
		buildEntitySchema(model.EntityTypePage, "Site page with navigation placement and SEO fields",
			block{
				properties: map[string]any{
					"slug":        map[string]any{"type": "string"},
					"title":       map[string]any{"type": "string"},
					"parent_slug": map[string]any{"type": []any{"string", "null"}},
					"show_in_nav": map[string]any{"type": "boolean"},
					"content":     map[string]any{"type": "object"},
					"description": map[string]any{"type": "string"},
				},
				example: map[string]any{
					"slug":        "about",
					"title":       "About Us",
					"show_in_nav": true,
					"content":     map[string]any{},
					"description": "Who we are",
				},
			},
			seoBlock(), metadataBlock()),
		buildEntitySchema(model.EntityTypeBlogPost, "Blog article with cover media and SEO fields",
			block{
				properties: map[string]any{
					"slug":         map[string]any{"type": "string"},
					"title":        map[string]any{"type": "string"},
					"excerpt":      map[string]any{"type": "string"},
					"body":         map[string]any{"type": "string"},
					"category":     map[string]any{"type": "string"},
					"published_at": map[string]any{"type": []any{"string", "null"}},
				},
				example: map[string]any{
					"slug":         "hello-world",
					"title":        "Hello World",
					"excerpt":      "First post",
					"body":         "Welcome to the blog.",
					"category":     "news",
					"published_at": "2026-01-01T00:00:00Z",
				},
			},
			seoBlock(), mediaBlock(), metadataBlock()),
		buildEntitySchema(model.EntityTypeService, "Service offering with call to action",
			block{
				properties: map[string]any{
					"name":        map[string]any{"type": "string"},
					"summary":     map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"icon":        map[string]any{"type": "string"},
				},
				example: map[string]any{
					"name":        "Consulting",
					"summary":     "Expert advice",
					"description": "We help you plan and deliver.",
					"icon":        "briefcase",
				},
			},
			ctaBlock(), mediaBlock(), metadataBlock()),
		buildEntitySchema(model.EntityTypeProject, "Portfolio project with media gallery",
			block{
				properties: map[string]any{
					"name":        map[string]any{"type": "string"},
					"client":      map[string]any{"type": "string"},
					"summary":     map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"tags":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				example: map[string]any{
					"name":        "Website Relaunch",
					"client":      "Acme Co",
					"summary":     "Full redesign",
					"description": "A ground-up rebuild of the marketing site.",
					"tags":        []any{"web", "design"},
				},
			},
			mediaBlock(), ctaBlock(), metadataBlock()),
		buildEntitySchema(model.EntityTypeTeamMember, "Team member profile with social links",
			block{
				properties: map[string]any{
					"name":  map[string]any{"type": "string"},
					"role":  map[string]any{"type": "string"},
					"bio":   map[string]any{"type": "string"},
					"photo": map[string]any{"type": "string", "format": "uri"},
				},
				example: map[string]any{
					"name":  "Jamie Example",
					"role":  "Engineer",
					"bio":   "Builds things.",
					"photo": "https://example.com/photo.jpg",
				},
			},
			socialLinksBlock(), contactBlock(), metadataBlock()),
		buildEntitySchema(model.EntityTypeTestimonial, "Customer testimonial",
			block{
				properties: map[string]any{
					"author":  map[string]any{"type": "string"},
					"company": map[string]any{"type": "string"},
					"quote":   map[string]any{"type": "string"},
					"rating":  map[string]any{"type": "number"},
				},
				example: map[string]any{
					"author":  "Chris Customer",
					"company": "Acme Co",
					"quote":   "Great work, on time.",
					"rating":  float64(5),
				},
			},
			mediaBlock(), metadataBlock()),
		buildEntitySchema(model.EntityTypeSiteSetting, "Site-wide setting key/value",
			block{
				properties: map[string]any{
					"key":   map[string]any{"type": "string"},
					"value": map[string]any{},
				},
				example: map[string]any{
					"key":   "site_name",
					"value": "Stanza",
				},
			},
			contactBlock(), socialLinksBlock()),
		buildEntitySchema(model.EntityTypeCategory, "Content category",
			block{
				properties: map[string]any{
					"slug": map[string]any{"type": "string"},
					"name": map[string]any{"type": "string"},
				},
				example: map[string]any{
					"slug": "news",
					"name": "News",
				},
			},
			metadataBlock()),
		buildEntitySchema(model.EntityTypeMenuItem, "Menu item with target and placement",
			block{
				properties: map[string]any{
					"menu_location": map[string]any{"type": "string"},
					"label":         map[string]any{"type": "string"},
					"url":           map[string]any{"type": []any{"string", "null"}},
					"page_slug":     map[string]any{"type": []any{"string", "null"}},
					"target":        map[string]any{"type": "string", "enum": []any{"_self", "_blank"}},
				},
				example: map[string]any{
					"menu_location": "header",
					"label":         "Home",
					"url":           "/",
					"target":        "_self",
				},
			},
			metadataBlock()),
		buildEntitySchema(model.EntityTypePageSection, "Typed content block placed on a page",
			block{
				properties: map[string]any{
					"page_type":    map[string]any{"type": "string"},
					"section_type": map[string]any{"type": "string"},
					"title":        map[string]any{"type": []any{"string", "null"}},
					"subtitle":     map[string]any{"type": []any{"string", "null"}},
					"content":      map[string]any{"type": "object"},
				},
				example: map[string]any{
					"page_type":    "home",
					"section_type": "hero",
					"title":        "Welcome",
					"content":      map[string]any{},
				},
			},
			metadataBlock()),
	}
}
