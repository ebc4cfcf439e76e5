// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer provides import/export functionality for Stanza
// content: versioned JSON envelopes, conflict-aware reconciliation and
// topological ordering for hierarchical records.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/stanzacms/stanza/internal/model"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// Envelope entity_type tags for the two composite formats.
const (
	EntityTypePagesAndMenu = "pages_and_menu"
	EntityTypePageSection  = "page_section"
)

// ConflictStrategy defines how to handle records whose natural key
// already exists in the backend.
type ConflictStrategy string

const (
	ConflictSkip      ConflictStrategy = "skip"
	ConflictOverwrite ConflictStrategy = "overwrite"
	ConflictMerge     ConflictStrategy = "merge"
)

// IsValid checks the strategy against the closed set.
func (s ConflictStrategy) IsValid() bool {
	switch s {
	case ConflictSkip, ConflictOverwrite, ConflictMerge:
		return true
	}
	return false
}

// ReorderStrategy defines how section display orders are assigned
// after an import.
type ReorderStrategy string

const (
	// ReorderPreserve keeps each imported section's own order, then
	// compacts the full list to remove gaps.
	ReorderPreserve ReorderStrategy = "preserve"
	// ReorderAppend places imported sections after the current
	// maximum order.
	ReorderAppend ReorderStrategy = "append"
	// ReorderRenumber reassigns 0..N-1 across the whole page after
	// all writes.
	ReorderRenumber ReorderStrategy = "renumber"
)

// IsValid checks the strategy against the closed set.
func (s ReorderStrategy) IsValid() bool {
	switch s {
	case ReorderPreserve, ReorderAppend, ReorderRenumber:
		return true
	}
	return false
}

// ImportOptions configures an import run.
type ImportOptions struct {
	ConflictStrategy ConflictStrategy
	ReorderStrategy  ReorderStrategy
	AllowCreate      bool
}

// DefaultImportOptions returns the safe defaults: skip conflicts,
// preserve imported ordering, allow new records.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		ConflictStrategy: ConflictSkip,
		ReorderStrategy:  ReorderPreserve,
		AllowCreate:      true,
	}
}

// EntityEnvelope is the generic export wrapper for single-collection
// entity types. Entity fields stay schemaless; each record is a JSON
// object with an optional "id".
type EntityEnvelope struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	EntityType model.EntityType `json:"entity_type"`
	Entities   []map[string]any `json:"entities"`
}

// PageImportItem is one page record in the pages+menu envelope.
// Cross-references use the slug natural key; pointer fields separate
// "absent" from a supplied value for merge semantics.
type PageImportItem struct {
	Slug            string         `json:"slug"`
	Title           string         `json:"title"`
	ParentSlug      *string        `json:"parent_slug,omitempty"`
	DisplayOrder    *int64         `json:"display_order,omitempty"`
	IsActive        *bool          `json:"is_active,omitempty"`
	ShowInNav       *bool          `json:"show_in_nav,omitempty"`
	Content         map[string]any `json:"content,omitempty"`
	Description     *string        `json:"description,omitempty"`
	MetaTitle       *string        `json:"meta_title,omitempty"`
	MetaDescription *string        `json:"meta_description,omitempty"`
	MetaKeywords    *string        `json:"meta_keywords,omitempty"`
}

// MenuItemFlat is one menu item in the canonical flat form. Key is a
// synthetic, locally-unique identifier that only exists to express
// parent/child edges inside the file; it is never stored. Children is
// accepted on input as the alternative nested form and is flattened
// during parsing.
type MenuItemFlat struct {
	Key          string         `json:"key"`
	MenuLocation string         `json:"menu_location"`
	Label        string         `json:"label"`
	URL          *string        `json:"url,omitempty"`
	PageSlug     *string        `json:"page_slug,omitempty"`
	ParentKey    *string        `json:"parent_key,omitempty"`
	DisplayOrder *int64         `json:"display_order,omitempty"`
	Target       *string        `json:"target,omitempty"`
	IsActive     *bool          `json:"is_active,omitempty"`
	Children     []MenuItemFlat `json:"children,omitempty"`
}

// PagesMenuEnvelope is the composite export wrapper for the page tree
// and the navigation menus.
type PagesMenuEnvelope struct {
	Version       string           `json:"version"`
	EntityType    string           `json:"entity_type"`
	ExportedAt    time.Time        `json:"exported_at"`
	MenuLocations []string         `json:"menu_locations"`
	Pages         []PageImportItem `json:"pages"`
	MenuItems     []MenuItemFlat   `json:"menu_items"`
}

// SectionImportItem is one section record in the section envelope.
type SectionImportItem struct {
	ID           *string        `json:"id,omitempty"`
	SectionType  string         `json:"section_type"`
	Title        *string        `json:"title,omitempty"`
	Subtitle     *string        `json:"subtitle,omitempty"`
	Content      map[string]any `json:"content,omitempty"`
	DisplayOrder *int64         `json:"display_order,omitempty"`
	IsActive     *bool          `json:"is_active,omitempty"`
}

// SectionsEnvelope is the export wrapper for one page's section list.
type SectionsEnvelope struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	EntityType string              `json:"entity_type"`
	PageType   string              `json:"page_type"`
	EntityID   *string             `json:"entity_id,omitempty"`
	Sections   []SectionImportItem `json:"sections"`
}

// ParseEntityEnvelope reads and structurally validates a generic
// entity export. Malformed JSON or a missing envelope key is an error,
// never a silent empty result.
func ParseEntityEnvelope(r io.Reader) (*EntityEnvelope, error) {
	var env EntityEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	if env.Version == "" {
		return nil, errors.New("import file missing version field")
	}
	if env.EntityType == "" {
		return nil, errors.New("import file missing entity_type field")
	}
	if env.Entities == nil {
		return nil, errors.New("import file missing entities array")
	}
	return &env, nil
}

// ValidateEntityEnvelope rejects a type mismatch between the file and
// the importer, and empty entity lists.
func ValidateEntityEnvelope(env *EntityEnvelope, expected model.EntityType) error {
	if env.EntityType != expected {
		return fmt.Errorf("import file contains %q entities, expected %q", env.EntityType, expected)
	}
	if len(env.Entities) == 0 {
		return errors.New("import file contains no entities")
	}
	return nil
}

// ParsePagesMenuEnvelope reads and structurally validates a pages+menu
// export, flattening any nested menu items into the canonical flat
// form.
func ParsePagesMenuEnvelope(r io.Reader) (*PagesMenuEnvelope, error) {
	var env PagesMenuEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	if env.Version == "" {
		return nil, errors.New("import file missing version field")
	}
	if env.EntityType != EntityTypePagesAndMenu {
		return nil, fmt.Errorf("import file entity_type is %q, expected %q", env.EntityType, EntityTypePagesAndMenu)
	}
	env.MenuItems = flattenMenuItems(env.MenuItems)
	return &env, nil
}

// ParseSectionsEnvelope reads and structurally validates a section
// export.
func ParseSectionsEnvelope(r io.Reader) (*SectionsEnvelope, error) {
	var env SectionsEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	if env.Version == "" {
		return nil, errors.New("import file missing version field")
	}
	if env.EntityType != EntityTypePageSection {
		return nil, fmt.Errorf("import file entity_type is %q, expected %q", env.EntityType, EntityTypePageSection)
	}
	if env.PageType == "" {
		return nil, errors.New("import file missing page_type field")
	}
	return &env, nil
}

// flattenMenuItems converts the nested children form into the flat
// parent_key form. Items without an explicit key get a synthetic one,
// and items without an explicit display_order are numbered in
// depth-first traversal order, matching how export assigns keys.
func flattenMenuItems(items []MenuItemFlat) []MenuItemFlat {
	if !hasNestedItems(items) {
		return items
	}

	var flat []MenuItemFlat
	counters := make(map[string]int)

	var walk func(item MenuItemFlat, parentKey *string, location string)
	walk = func(item MenuItemFlat, parentKey *string, location string) {
		if item.MenuLocation == "" {
			item.MenuLocation = location
		}
		seq := counters[item.MenuLocation]
		counters[item.MenuLocation] = seq + 1

		if item.Key == "" {
			item.Key = fmt.Sprintf("menu-%s-%d", item.MenuLocation, seq)
		}
		if item.ParentKey == nil && parentKey != nil {
			item.ParentKey = parentKey
		}
		if item.DisplayOrder == nil {
			order := int64(seq)
			item.DisplayOrder = &order
		}

		children := item.Children
		item.Children = nil
		flat = append(flat, item)

		key := item.Key
		for _, child := range children {
			walk(child, &key, item.MenuLocation)
		}
	}

	for _, item := range items {
		walk(item, nil, item.MenuLocation)
	}
	return flat
}

func hasNestedItems(items []MenuItemFlat) bool {
	for _, item := range items {
		if len(item.Children) > 0 {
			return true
		}
	}
	return false
}
