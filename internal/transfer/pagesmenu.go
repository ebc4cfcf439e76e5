// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/util"
)

// ValidatePagesMenu runs the full pre-write validation pipeline on a
// pages+menu envelope: structural checks, uniqueness, referential
// integrity and cycle freedom, collected exhaustively so the caller
// sees every problem at once. Nothing is written when this fails.
func ValidatePagesMenu(env *PagesMenuEnvelope) ValidationResult {
	var result ValidationResult

	pageIndexBySlug := make(map[string]int, len(env.Pages))
	for idx, page := range env.Pages {
		if page.Slug == "" {
			result.addPageError(idx, fmt.Sprintf("/pages/%d/slug", idx), "missing page slug")
			continue
		}
		if !util.IsValidSlug(page.Slug) {
			result.addPageError(idx, fmt.Sprintf("/pages/%d/slug", idx),
				fmt.Sprintf("invalid slug %q", page.Slug))
		}
		if page.Title == "" {
			result.addPageError(idx, fmt.Sprintf("/pages/%d/title", idx), "missing page title")
		}
		if _, dup := pageIndexBySlug[page.Slug]; dup {
			result.addPageError(idx, fmt.Sprintf("/pages/%d/slug", idx),
				fmt.Sprintf("Duplicate slug %q", page.Slug))
			continue
		}
		pageIndexBySlug[page.Slug] = idx
	}

	for idx, page := range env.Pages {
		if page.ParentSlug == nil || *page.ParentSlug == "" {
			continue
		}
		if *page.ParentSlug == page.Slug {
			result.addPageError(idx, fmt.Sprintf("/pages/%d/parent_slug", idx),
				fmt.Sprintf("Cycle detected: page %q lists itself as parent_slug", page.Slug))
			continue
		}
		if _, ok := pageIndexBySlug[*page.ParentSlug]; !ok {
			result.addPageError(idx, fmt.Sprintf("/pages/%d/parent_slug", idx),
				fmt.Sprintf("parent_slug %q not found in import", *page.ParentSlug))
		}
	}

	for _, offender := range detectCycles(len(env.Pages), func(i int) int {
		parent := env.Pages[i].ParentSlug
		if parent == nil || *parent == "" {
			return -1
		}
		if p, ok := pageIndexBySlug[*parent]; ok && p != i {
			return p
		}
		return -1
	}) {
		result.addPageError(offender, fmt.Sprintf("/pages/%d/parent_slug", offender),
			fmt.Sprintf("Cycle detected in page parent_slug chain involving %q", env.Pages[offender].Slug))
	}

	menuIndexByKey := make(map[string]int, len(env.MenuItems))
	for idx, item := range env.MenuItems {
		if item.Key == "" {
			result.addMenuItemError(idx, fmt.Sprintf("/menu_items/%d/key", idx), "missing menu item key")
			continue
		}
		if item.Label == "" {
			result.addMenuItemError(idx, fmt.Sprintf("/menu_items/%d/label", idx), "missing menu item label")
		}
		if item.MenuLocation == "" {
			result.addMenuItemError(idx, fmt.Sprintf("/menu_items/%d/menu_location", idx), "missing menu_location")
		}
		if item.Target != nil && !model.IsValidTarget(*item.Target) {
			result.addMenuItemError(idx, fmt.Sprintf("/menu_items/%d/target", idx),
				fmt.Sprintf("invalid target %q", *item.Target))
		}
		scoped := item.MenuLocation + ":" + item.Key
		if _, dup := menuIndexByKey[scoped]; dup {
			result.addMenuItemError(idx, fmt.Sprintf("/menu_items/%d/key", idx),
				fmt.Sprintf("Duplicate key %q in menu_location %q", item.Key, item.MenuLocation))
			continue
		}
		menuIndexByKey[scoped] = idx
	}

	for idx, item := range env.MenuItems {
		if item.PageSlug != nil && *item.PageSlug != "" {
			if _, ok := pageIndexBySlug[*item.PageSlug]; !ok {
				result.addMenuItemError(idx, fmt.Sprintf("/menu_items/%d/page_slug", idx),
					fmt.Sprintf("page_slug %q not found in import", *item.PageSlug))
			}
		}
		if item.ParentKey != nil && *item.ParentKey != "" {
			scoped := item.MenuLocation + ":" + *item.ParentKey
			if p, ok := menuIndexByKey[scoped]; !ok || p == idx {
				result.addMenuItemError(idx, fmt.Sprintf("/menu_items/%d/parent_key", idx),
					fmt.Sprintf("parent_key %q not found in menu_location %q", *item.ParentKey, item.MenuLocation))
			}
		}
		if (item.URL == nil || *item.URL == "") && (item.PageSlug == nil || *item.PageSlug == "") {
			result.addMenuItemWarning(idx, fmt.Sprintf("/menu_items/%d", idx),
				fmt.Sprintf("menu item %q has neither url nor page_slug and will render as a dead link", item.Label))
		}
	}

	for _, offender := range detectCycles(len(env.MenuItems), func(i int) int {
		item := env.MenuItems[i]
		if item.ParentKey == nil || *item.ParentKey == "" {
			return -1
		}
		if p, ok := menuIndexByKey[item.MenuLocation+":"+*item.ParentKey]; ok && p != i {
			return p
		}
		return -1
	}) {
		result.addMenuItemError(offender, fmt.Sprintf("/menu_items/%d/parent_key", offender),
			fmt.Sprintf("Cycle detected in menu item parent_key chain involving %q", env.MenuItems[offender].Key))
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ImportPagesMenu validates and imports a pages+menu envelope. Pages
// are written first in dependency order, then menu items, so every
// parent's backend id is known before any child that references it.
func (i *Importer) ImportPagesMenu(ctx context.Context, env *PagesMenuEnvelope, opts ImportOptions) (*ImportResult, *ValidationResult, error) {
	if !opts.ConflictStrategy.IsValid() {
		return nil, nil, fmt.Errorf("unknown conflict strategy %q", opts.ConflictStrategy)
	}

	validation := ValidatePagesMenu(env)
	if !validation.Valid {
		return nil, &validation, errors.New("validation failed")
	}
	for _, w := range validation.Warnings {
		i.logger.Warn("import warning", "path", w.Path, "message", w.Message)
	}

	result := &ImportResult{Total: len(env.Pages) + len(env.MenuItems)}
	now := time.Now().UTC()

	slugToID := make(map[string]string, len(env.Pages))
	i.importPages(ctx, env.Pages, slugToID, opts, result, now)
	i.importMenuItems(ctx, env.MenuItems, slugToID, opts, result, now)

	i.cache.InvalidatePages(ctx)
	i.cache.InvalidateMenus(ctx)
	i.recordEvent(ctx, "imported pages and menu", result)
	return result.finish(), &validation, nil
}

func (i *Importer) importPages(ctx context.Context, pages []PageImportItem, slugToID map[string]string, opts ImportOptions, result *ImportResult, now time.Time) {
	pageIndexBySlug := make(map[string]int, len(pages))
	for idx, page := range pages {
		pageIndexBySlug[page.Slug] = idx
	}

	order, err := topologicalOrder(len(pages), func(idx int) int {
		parent := pages[idx].ParentSlug
		if parent == nil || *parent == "" {
			return -1
		}
		if p, ok := pageIndexBySlug[*parent]; ok {
			return p
		}
		return -1
	})
	if err != nil {
		// Validation rejected cycles already; a stall here is an
		// internal invariant violation.
		i.logger.Error("page dependency ordering failed", "error", err)
		for idx, page := range pages {
			result.addPageError(idx, page.Slug, err.Error())
		}
		return
	}

	for _, idx := range order {
		page := pages[idx]

		parentID := sql.NullString{}
		if page.ParentSlug != nil && *page.ParentSlug != "" {
			if id, ok := slugToID[*page.ParentSlug]; ok {
				parentID = util.NullStringFromValue(id)
			} else if existing, err := i.store.GetPageBySlug(ctx, *page.ParentSlug); err == nil {
				parentID = util.NullStringFromValue(existing.ID)
			} else {
				// Parent failed to import; its children are failures
				// too, not silently re-rooted records.
				result.addPageError(idx, page.Slug,
					fmt.Sprintf("parent page %q was not imported", *page.ParentSlug))
				continue
			}
		}

		existing, err := i.store.GetPageBySlug(ctx, page.Slug)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			result.addPageError(idx, page.Slug, err.Error())
			continue
		}
		exists := err == nil

		if exists {
			switch opts.ConflictStrategy {
			case ConflictSkip:
				slugToID[page.Slug] = existing.ID
				result.Skipped++
				continue
			case ConflictOverwrite:
				updated, err := i.store.UpdatePage(ctx, i.overwritePageParams(existing.ID, page, parentID, now))
				if err != nil {
					result.addPageError(idx, page.Slug, err.Error())
					continue
				}
				slugToID[page.Slug] = updated.ID
				result.Overwritten++
				continue
			case ConflictMerge:
				updated, err := i.store.UpdatePage(ctx, i.mergePageParams(existing, page, parentID, now))
				if err != nil {
					result.addPageError(idx, page.Slug, err.Error())
					continue
				}
				slugToID[page.Slug] = updated.ID
				result.Overwritten++
				continue
			}
		}

		if !opts.AllowCreate {
			result.Skipped++
			continue
		}
		created, err := i.store.CreatePage(ctx, store.CreatePageParams{
			Slug:            page.Slug,
			Title:           i.sanitize(page.Title),
			ParentID:        parentID,
			DisplayOrder:    int64Value(page.DisplayOrder, 0),
			IsActive:        boolValue(page.IsActive, true),
			ShowInNav:       boolValue(page.ShowInNav, true),
			Content:         marshalContent(page.Content),
			Description:     i.sanitize(stringValue(page.Description, "")),
			MetaTitle:       i.sanitize(stringValue(page.MetaTitle, "")),
			MetaDescription: i.sanitize(stringValue(page.MetaDescription, "")),
			MetaKeywords:    i.sanitize(stringValue(page.MetaKeywords, "")),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			result.addPageError(idx, page.Slug, err.Error())
			continue
		}
		slugToID[page.Slug] = created.ID
		result.Imported++
	}
}

// overwritePageParams replaces all mapped fields with incoming values,
// falling back to field defaults when the file omits an optional.
func (i *Importer) overwritePageParams(id string, page PageImportItem, parentID sql.NullString, now time.Time) store.UpdatePageParams {
	return store.UpdatePageParams{
		ID:              id,
		Slug:            page.Slug,
		Title:           i.sanitize(page.Title),
		ParentID:        parentID,
		DisplayOrder:    int64Value(page.DisplayOrder, 0),
		IsActive:        boolValue(page.IsActive, true),
		ShowInNav:       boolValue(page.ShowInNav, true),
		Content:         marshalContent(page.Content),
		Description:     i.sanitize(stringValue(page.Description, "")),
		MetaTitle:       i.sanitize(stringValue(page.MetaTitle, "")),
		MetaDescription: i.sanitize(stringValue(page.MetaDescription, "")),
		MetaKeywords:    i.sanitize(stringValue(page.MetaKeywords, "")),
		UpdatedAt:       now,
	}
}

// mergePageParams applies the field-selective page merge: the parent
// reference is always taken from the incoming record, even when null,
// so a file can explicitly re-parent a page to top level. Every other
// field takes the incoming value only when it is supplied and non-null.
func (i *Importer) mergePageParams(existing model.Page, page PageImportItem, parentID sql.NullString, now time.Time) store.UpdatePageParams {
	params := store.UpdatePageParams{
		ID:              existing.ID,
		Slug:            existing.Slug,
		Title:           existing.Title,
		ParentID:        parentID,
		DisplayOrder:    existing.DisplayOrder,
		IsActive:        existing.IsActive,
		ShowInNav:       existing.ShowInNav,
		Content:         existing.Content,
		Description:     existing.Description,
		MetaTitle:       existing.MetaTitle,
		MetaDescription: existing.MetaDescription,
		MetaKeywords:    existing.MetaKeywords,
		UpdatedAt:       now,
	}
	if page.Title != "" {
		params.Title = i.sanitize(page.Title)
	}
	if page.DisplayOrder != nil {
		params.DisplayOrder = *page.DisplayOrder
	}
	if page.IsActive != nil {
		params.IsActive = *page.IsActive
	}
	if page.ShowInNav != nil {
		params.ShowInNav = *page.ShowInNav
	}
	if page.Content != nil {
		params.Content = marshalContent(page.Content)
	}
	if page.Description != nil {
		params.Description = i.sanitize(*page.Description)
	}
	if page.MetaTitle != nil {
		params.MetaTitle = i.sanitize(*page.MetaTitle)
	}
	if page.MetaDescription != nil {
		params.MetaDescription = i.sanitize(*page.MetaDescription)
	}
	if page.MetaKeywords != nil {
		params.MetaKeywords = i.sanitize(*page.MetaKeywords)
	}
	return params
}

func (i *Importer) importMenuItems(ctx context.Context, items []MenuItemFlat, slugToID map[string]string, opts ImportOptions, result *ImportResult, now time.Time) {
	menuIndexByKey := make(map[string]int, len(items))
	for idx, item := range items {
		menuIndexByKey[item.MenuLocation+":"+item.Key] = idx
	}

	order, err := topologicalOrder(len(items), func(idx int) int {
		item := items[idx]
		if item.ParentKey == nil || *item.ParentKey == "" {
			return -1
		}
		if p, ok := menuIndexByKey[item.MenuLocation+":"+*item.ParentKey]; ok {
			return p
		}
		return -1
	})
	if err != nil {
		i.logger.Error("menu item dependency ordering failed", "error", err)
		for idx, item := range items {
			result.addMenuItemError(idx, item.Key, err.Error())
		}
		return
	}

	keyToID := make(map[string]string, len(items))
	for _, idx := range order {
		item := items[idx]

		parentID := sql.NullString{}
		if item.ParentKey != nil && *item.ParentKey != "" {
			id, ok := keyToID[item.MenuLocation+":"+*item.ParentKey]
			if !ok {
				result.addMenuItemError(idx, item.Key,
					fmt.Sprintf("parent item %q was not imported", *item.ParentKey))
				continue
			}
			parentID = util.NullStringFromValue(id)
		}

		pageID := sql.NullString{}
		if item.PageSlug != nil && *item.PageSlug != "" {
			if id, ok := slugToID[*item.PageSlug]; ok {
				pageID = util.NullStringFromValue(id)
			} else if page, err := i.store.GetPageBySlug(ctx, *item.PageSlug); err == nil {
				pageID = util.NullStringFromValue(page.ID)
			} else {
				result.addMenuItemError(idx, item.Key,
					fmt.Sprintf("page %q was not imported", *item.PageSlug))
				continue
			}
		}

		// File keys are synthetic; the backend natural key is the
		// (menu_location, label) pair.
		existing, err := i.store.GetMenuItemByLocationAndLabel(ctx, item.MenuLocation, item.Label)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			result.addMenuItemError(idx, item.Key, err.Error())
			continue
		}
		exists := err == nil

		if exists {
			switch opts.ConflictStrategy {
			case ConflictSkip:
				keyToID[item.MenuLocation+":"+item.Key] = existing.ID
				result.Skipped++
				continue
			case ConflictOverwrite, ConflictMerge:
				// Menu items carry no partial payloads worth a
				// field-selective merge; merge behaves as overwrite.
				updated, err := i.store.UpdateMenuItem(ctx, store.UpdateMenuItemParams{
					ID:           existing.ID,
					MenuLocation: item.MenuLocation,
					Label:        i.sanitize(item.Label),
					URL:          util.NullStringFromPtr(item.URL),
					PageID:       pageID,
					ParentID:     parentID,
					DisplayOrder: int64Value(item.DisplayOrder, 0),
					Target:       stringValue(item.Target, model.TargetSelf),
					IsActive:     boolValue(item.IsActive, true),
					UpdatedAt:    now,
				})
				if err != nil {
					result.addMenuItemError(idx, item.Key, err.Error())
					continue
				}
				keyToID[item.MenuLocation+":"+item.Key] = updated.ID
				result.Overwritten++
				continue
			}
		}

		if !opts.AllowCreate {
			result.Skipped++
			continue
		}
		created, err := i.store.CreateMenuItem(ctx, store.CreateMenuItemParams{
			MenuLocation: item.MenuLocation,
			Label:        i.sanitize(item.Label),
			URL:          util.NullStringFromPtr(item.URL),
			PageID:       pageID,
			ParentID:     parentID,
			DisplayOrder: int64Value(item.DisplayOrder, 0),
			Target:       stringValue(item.Target, model.TargetSelf),
			IsActive:     boolValue(item.IsActive, true),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			result.addMenuItemError(idx, item.Key, err.Error())
			continue
		}
		keyToID[item.MenuLocation+":"+item.Key] = created.ID
		result.Imported++
	}
}
