// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/util"
)

// Exporter serializes backend content into the versioned envelope
// formats. Export never mutates; it reads a full snapshot and maps it
// to the portable natural-key shape.
type Exporter struct {
	store  *store.Queries
	logger *slog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(queries *store.Queries, logger *slog.Logger) *Exporter {
	return &Exporter{store: queries, logger: logger}
}

// ExportEntities wraps every record of one entity type in a generic
// envelope.
func (e *Exporter) ExportEntities(ctx context.Context, entityType model.EntityType) (*EntityEnvelope, error) {
	entities, err := e.store.ListEntitiesByType(ctx, entityType)
	if err != nil {
		return nil, fmt.Errorf("listing %s entities: %w", entityType, err)
	}

	records := make([]map[string]any, 0, len(entities))
	for _, entity := range entities {
		records = append(records, entityRecord(entity))
	}
	return &EntityEnvelope{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		EntityType: entityType,
		Entities:   records,
	}, nil
}

// ExportEntity wraps a single record in a generic envelope.
func (e *Exporter) ExportEntity(ctx context.Context, entityType model.EntityType, id string) (*EntityEnvelope, error) {
	entity, err := e.store.GetEntityByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading entity %s: %w", id, err)
	}
	if entity.EntityType != entityType {
		return nil, fmt.Errorf("entity %s is %q, not %q", id, entity.EntityType, entityType)
	}
	return &EntityEnvelope{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		EntityType: entityType,
		Entities:   []map[string]any{entityRecord(entity)},
	}, nil
}

func entityRecord(entity model.Entity) map[string]any {
	record := unmarshalContent(entity.Data)
	record["id"] = entity.ID
	return record
}

// ExportPagesMenu loads all pages and menu items and maps them to the
// portable envelope: page parents become parent_slug via an id-to-slug
// map, and menu parent/child edges become synthetic keys assigned in a
// depth-first walk of the existing tree grouped by menu_location.
// Re-importing the result reproduces an isomorphic structure.
func (e *Exporter) ExportPagesMenu(ctx context.Context) (*PagesMenuEnvelope, error) {
	pages, err := e.store.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	items, err := e.store.ListMenuItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}

	slugByID := make(map[string]string, len(pages))
	for _, p := range pages {
		slugByID[p.ID] = p.Slug
	}

	exportPages := make([]PageImportItem, 0, len(pages))
	for _, p := range pages {
		item := PageImportItem{
			Slug:         p.Slug,
			Title:        p.Title,
			DisplayOrder: int64Ptr(p.DisplayOrder),
			IsActive:     boolPtr(p.IsActive),
			ShowInNav:    boolPtr(p.ShowInNav),
			Content:      unmarshalContent(p.Content),
		}
		if p.ParentID.Valid {
			if slug, ok := slugByID[p.ParentID.String]; ok {
				item.ParentSlug = stringPtr(slug)
			} else {
				e.logger.Warn("page parent_id points at a missing page", "slug", p.Slug)
			}
		}
		if p.Description != "" {
			item.Description = stringPtr(p.Description)
		}
		if p.MetaTitle != "" {
			item.MetaTitle = stringPtr(p.MetaTitle)
		}
		if p.MetaDescription != "" {
			item.MetaDescription = stringPtr(p.MetaDescription)
		}
		if p.MetaKeywords != "" {
			item.MetaKeywords = stringPtr(p.MetaKeywords)
		}
		exportPages = append(exportPages, item)
	}

	itemsByLocation := make(map[string][]model.MenuItem)
	var locations []string
	for _, it := range items {
		if _, seen := itemsByLocation[it.MenuLocation]; !seen {
			locations = append(locations, it.MenuLocation)
		}
		itemsByLocation[it.MenuLocation] = append(itemsByLocation[it.MenuLocation], it)
	}

	var exportItems []MenuItemFlat
	for _, location := range locations {
		exportItems = append(exportItems, flattenMenuTree(
			model.BuildMenuTree(itemsByLocation[location]), location, slugByID, e.logger)...)
	}

	return &PagesMenuEnvelope{
		Version:       ExportVersion,
		EntityType:    EntityTypePagesAndMenu,
		ExportedAt:    time.Now().UTC(),
		MenuLocations: locations,
		Pages:         exportPages,
		MenuItems:     exportItems,
	}, nil
}

// flattenMenuTree re-walks one location's existing parent/child tree
// depth first, assigning synthetic menu-{location}-{n} keys in
// traversal order.
func flattenMenuTree(tree []model.MenuItemWithChildren, location string, slugByID map[string]string, logger *slog.Logger) []MenuItemFlat {
	var flat []MenuItemFlat
	counter := 0

	var walk func(nodes []model.MenuItemWithChildren, parentKey *string)
	walk = func(nodes []model.MenuItemWithChildren, parentKey *string) {
		for _, node := range nodes {
			key := fmt.Sprintf("menu-%s-%d", location, counter)
			counter++

			item := MenuItemFlat{
				Key:          key,
				MenuLocation: location,
				Label:        node.Label,
				ParentKey:    parentKey,
				DisplayOrder: int64Ptr(node.DisplayOrder),
				Target:       stringPtr(node.Target),
				IsActive:     boolPtr(node.IsActive),
			}
			if node.URL.Valid && node.URL.String != "" {
				item.URL = stringPtr(node.URL.String)
			}
			if node.PageID.Valid {
				if slug, ok := slugByID[node.PageID.String]; ok {
					item.PageSlug = stringPtr(slug)
				} else {
					logger.Warn("menu item page_id points at a missing page", "label", node.Label)
				}
			}
			flat = append(flat, item)
			walk(node.Children, stringPtr(key))
		}
	}

	walk(tree, nil)
	return flat
}

// ExportSections wraps one page's ordered section list in an envelope.
func (e *Exporter) ExportSections(ctx context.Context, pageType string, entityID *string) (*SectionsEnvelope, error) {
	sections, err := e.store.ListSectionsForPage(ctx, pageType, util.NullStringFromPtr(entityID))
	if err != nil {
		return nil, fmt.Errorf("listing sections for %s: %w", pageType, err)
	}

	exportSections := make([]SectionImportItem, 0, len(sections))
	for _, s := range sections {
		item := SectionImportItem{
			ID:           stringPtr(s.ID),
			SectionType:  s.SectionType,
			Content:      unmarshalContent(s.Content),
			DisplayOrder: int64Ptr(s.DisplayOrder),
			IsActive:     boolPtr(s.IsActive),
		}
		if s.Title.Valid {
			item.Title = stringPtr(s.Title.String)
		}
		if s.Subtitle.Valid {
			item.Subtitle = stringPtr(s.Subtitle.String)
		}
		exportSections = append(exportSections, item)
	}

	return &SectionsEnvelope{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		EntityType: EntityTypePageSection,
		PageType:   pageType,
		EntityID:   entityID,
		Sections:   exportSections,
	}, nil
}

// WriteJSON serializes an envelope with indentation for a
// downloadable file.
func WriteJSON(w io.Writer, envelope any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope)
}

// ExportFilename derives a download name from the envelope's type tag
// and a display name or id.
func ExportFilename(entityType, name string, exportedAt time.Time) string {
	base := util.Slugify(name)
	if base == "" {
		base = strings.ReplaceAll(entityType, "_", "-")
	}
	return fmt.Sprintf("%s-%s-%s.json", strings.ReplaceAll(entityType, "_", "-"), base,
		exportedAt.Format("2006-01-02"))
}
