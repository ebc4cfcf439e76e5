// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// PageSection is one typed, reorderable content block on a page.
// PageType references a page's slug; EntityID scopes the section to a
// single record for per-record pages (e.g. one project's detail page).
// Content must validate against the SectionSchema registered for
// SectionType.
type PageSection struct {
	ID           string         `json:"id"`
	PageType     string         `json:"page_type"`
	EntityID     sql.NullString `json:"entity_id,omitempty"`
	SectionType  string         `json:"section_type"`
	Title        sql.NullString `json:"title,omitempty"`
	Subtitle     sql.NullString `json:"subtitle,omitempty"`
	Content      string         `json:"content"` // JSON object, stored as text
	DisplayOrder int64          `json:"display_order"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// SectionType is a named content block kind (hero, pricing, faq, ...).
// Fields and ItemsSchema hold the declarative schema description the
// adapter converts into a JSON Schema; both are stored as JSON text.
type SectionType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Fields      string    `json:"fields"`       // JSON array of field names
	ItemsSchema string    `json:"items_schema"` // JSON object: field -> primitive type name
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
