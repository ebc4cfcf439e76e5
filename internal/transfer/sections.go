// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/schema"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/util"
)

// sectionSchemaFor decodes a section type's stored field list and
// items map into the adapter's declarative form. Malformed stored
// schemas degrade to nil, which the adapter treats as permissive.
func sectionSchemaFor(st model.SectionType) *schema.SectionSchema {
	var fields []string
	if st.Fields != "" {
		if err := json.Unmarshal([]byte(st.Fields), &fields); err != nil {
			return nil
		}
	}
	var itemsSchema map[string]string
	if st.ItemsSchema != "" && st.ItemsSchema != "{}" {
		if err := json.Unmarshal([]byte(st.ItemsSchema), &itemsSchema); err != nil {
			return nil
		}
	}
	return &schema.SectionSchema{Fields: fields, ItemsSchema: itemsSchema}
}

// ValidateSections checks a section envelope against the known section
// types: an unknown section_type is a hard error, an inactive one is a
// warning, and each section's content must validate against the
// type's schema.
func ValidateSections(env *SectionsEnvelope, sectionTypes []model.SectionType) ValidationResult {
	var result ValidationResult

	typesByName := make(map[string]model.SectionType, len(sectionTypes))
	for _, st := range sectionTypes {
		typesByName[st.Name] = st
	}

	for idx, section := range env.Sections {
		if section.SectionType == "" {
			result.addSectionError(idx, fmt.Sprintf("/sections/%d/section_type", idx), "missing section_type")
			continue
		}
		st, ok := typesByName[section.SectionType]
		if !ok {
			result.addSectionError(idx, fmt.Sprintf("/sections/%d/section_type", idx),
				fmt.Sprintf("section_type %q not found", section.SectionType))
			continue
		}
		if !st.IsActive {
			result.addSectionWarning(idx, fmt.Sprintf("/sections/%d/section_type", idx),
				fmt.Sprintf("section_type %q is inactive", section.SectionType))
		}

		content := section.Content
		if content == nil {
			content = map[string]any{}
		}
		jsonSchema := schema.ConvertToJSONSchema(sectionSchemaFor(st))
		if v := schema.ValidateJSON(content, jsonSchema); !v.Valid {
			for _, e := range v.Errors {
				result.addSectionError(idx, fmt.Sprintf("/sections/%d/content%s", idx, e.Path), e.Message)
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ImportSections validates and imports one page's section list.
// Matching prefers an exact id; for non-skip policies unmatched
// imports fall back to (section_type, title, display_order) equality,
// because sections exported from another environment do not share ids.
func (i *Importer) ImportSections(ctx context.Context, env *SectionsEnvelope, opts ImportOptions) (*ImportResult, *ValidationResult, error) {
	if !opts.ConflictStrategy.IsValid() {
		return nil, nil, fmt.Errorf("unknown conflict strategy %q", opts.ConflictStrategy)
	}
	if !opts.ReorderStrategy.IsValid() {
		return nil, nil, fmt.Errorf("unknown reorder strategy %q", opts.ReorderStrategy)
	}

	sectionTypes, err := i.store.ListSectionTypes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading section types: %w", err)
	}

	validation := ValidateSections(env, sectionTypes)
	if !validation.Valid {
		return nil, &validation, errors.New("validation failed")
	}
	for _, w := range validation.Warnings {
		i.logger.Warn("import warning", "path", w.Path, "message", w.Message)
	}

	entityID := util.NullStringFromPtr(env.EntityID)
	existing, err := i.store.ListSectionsForPage(ctx, env.PageType, entityID)
	if err != nil {
		return nil, &validation, fmt.Errorf("loading existing sections: %w", err)
	}

	result := &ImportResult{Total: len(env.Sections)}
	now := time.Now().UTC()

	maxOrder := int64(-1)
	for _, s := range existing {
		if s.DisplayOrder > maxOrder {
			maxOrder = s.DisplayOrder
		}
	}
	matchedIDs := make(map[string]bool, len(existing))

	for idx, section := range env.Sections {
		match, found := matchSection(existing, matchedIDs, section, opts.ConflictStrategy)

		if found {
			matchedIDs[match.ID] = true
			switch opts.ConflictStrategy {
			case ConflictSkip:
				result.Skipped++
				continue
			case ConflictOverwrite:
				if _, err := i.store.UpdateSection(ctx, store.UpdateSectionParams{
					ID:           match.ID,
					SectionType:  section.SectionType,
					Title:        i.sanitizeNull(section.Title),
					Subtitle:     i.sanitizeNull(section.Subtitle),
					Content:      marshalContent(section.Content),
					DisplayOrder: int64Value(section.DisplayOrder, match.DisplayOrder),
					IsActive:     boolValue(section.IsActive, true),
					UpdatedAt:    now,
				}); err != nil {
					result.addSectionError(idx, section.SectionType, err.Error())
					continue
				}
				result.Overwritten++
				continue
			case ConflictMerge:
				merged := mergeDeep(unmarshalContent(match.Content), contentOrEmpty(section.Content))
				params := store.UpdateSectionParams{
					ID:           match.ID,
					SectionType:  match.SectionType,
					Title:        match.Title,
					Subtitle:     match.Subtitle,
					Content:      marshalContent(merged),
					DisplayOrder: match.DisplayOrder,
					IsActive:     match.IsActive,
					UpdatedAt:    now,
				}
				if section.Title != nil {
					params.Title = i.sanitizeNull(section.Title)
				}
				if section.Subtitle != nil {
					params.Subtitle = i.sanitizeNull(section.Subtitle)
				}
				if section.DisplayOrder != nil {
					params.DisplayOrder = *section.DisplayOrder
				}
				if section.IsActive != nil {
					params.IsActive = *section.IsActive
				}
				if _, err := i.store.UpdateSection(ctx, params); err != nil {
					result.addSectionError(idx, section.SectionType, err.Error())
					continue
				}
				result.Overwritten++
				continue
			}
		}

		if !opts.AllowCreate {
			result.Skipped++
			continue
		}

		var order int64
		if opts.ReorderStrategy == ReorderAppend {
			maxOrder++
			order = maxOrder
		} else {
			order = int64Value(section.DisplayOrder, int64(idx))
		}
		if _, err := i.store.CreateSection(ctx, store.CreateSectionParams{
			PageType:     env.PageType,
			EntityID:     entityID,
			SectionType:  section.SectionType,
			Title:        i.sanitizeNull(section.Title),
			Subtitle:     i.sanitizeNull(section.Subtitle),
			Content:      marshalContent(section.Content),
			DisplayOrder: order,
			IsActive:     boolValue(section.IsActive, true),
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			result.addSectionError(idx, section.SectionType, err.Error())
			continue
		}
		result.Imported++
	}

	if opts.ReorderStrategy != ReorderAppend {
		if err := i.compactSectionOrders(ctx, env.PageType, entityID, now); err != nil {
			i.logger.Warn("failed to compact section orders", "page_type", env.PageType, "error", err)
		}
	}

	i.cache.InvalidateSections(ctx, env.PageType)
	i.recordEvent(ctx, fmt.Sprintf("imported sections for %s", env.PageType), result)
	return result.finish(), &validation, nil
}

// matchSection resolves an imported section to an existing row: exact
// id first; for non-skip policies, the (section_type, title,
// display_order) tuple. Rows already claimed by an earlier import
// record are not matched twice.
func matchSection(existing []model.PageSection, matchedIDs map[string]bool, section SectionImportItem, strategy ConflictStrategy) (model.PageSection, bool) {
	if section.ID != nil && *section.ID != "" {
		for _, s := range existing {
			if s.ID == *section.ID && !matchedIDs[s.ID] {
				return s, true
			}
		}
	}
	if strategy == ConflictSkip {
		return model.PageSection{}, false
	}
	title := util.NullStringFromPtr(section.Title)
	order := int64Value(section.DisplayOrder, -1)
	for _, s := range existing {
		if matchedIDs[s.ID] {
			continue
		}
		if s.SectionType == section.SectionType && s.Title == title && s.DisplayOrder == order {
			return s, true
		}
	}
	return model.PageSection{}, false
}

// compactSectionOrders reassigns 0..N-1 across the page's full section
// list in current order, removing gaps and normalizing ties.
func (i *Importer) compactSectionOrders(ctx context.Context, pageType string, entityID sql.NullString, now time.Time) error {
	sections, err := i.store.ListSectionsForPage(ctx, pageType, entityID)
	if err != nil {
		return err
	}
	for idx, s := range sections {
		if s.DisplayOrder == int64(idx) {
			continue
		}
		if err := i.store.UpdateSectionOrder(ctx, s.ID, int64(idx), now); err != nil {
			return err
		}
	}
	return nil
}

func (i *Importer) sanitizeNull(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return util.NullStringFromValue(i.sanitize(*p))
}

func contentOrEmpty(content map[string]any) map[string]any {
	if content == nil {
		return map[string]any{}
	}
	return content
}
