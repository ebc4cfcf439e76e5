// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/stanzacms/stanza/internal/model"
)

const sectionColumns = `id, page_type, entity_id, section_type, title, subtitle, content,
	display_order, is_active, created_at, updated_at`

// CreateSectionParams holds the fields for inserting a page section.
type CreateSectionParams struct {
	ID           string // empty means backend-generated
	PageType     string
	EntityID     sql.NullString
	SectionType  string
	Title        sql.NullString
	Subtitle     sql.NullString
	Content      string
	DisplayOrder int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateSection inserts a page section and returns the stored row.
func (q *Queries) CreateSection(ctx context.Context, arg CreateSectionParams) (model.PageSection, error) {
	id := arg.ID
	if id == "" {
		id = uuid.NewString()
	}
	content := arg.Content
	if content == "" {
		content = "{}"
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO page_sections (`+sectionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.PageType, arg.EntityID, arg.SectionType, arg.Title, arg.Subtitle,
		content, arg.DisplayOrder, arg.IsActive, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.PageSection{}, err
	}
	return q.GetSectionByID(ctx, id)
}

// UpdateSectionParams holds the fields for updating a page section.
type UpdateSectionParams struct {
	ID           string
	SectionType  string
	Title        sql.NullString
	Subtitle     sql.NullString
	Content      string
	DisplayOrder int64
	IsActive     bool
	UpdatedAt    time.Time
}

// UpdateSection replaces all mapped fields on an existing section row.
func (q *Queries) UpdateSection(ctx context.Context, arg UpdateSectionParams) (model.PageSection, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE page_sections SET section_type = ?, title = ?, subtitle = ?, content = ?,
			display_order = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		arg.SectionType, arg.Title, arg.Subtitle, arg.Content,
		arg.DisplayOrder, arg.IsActive, arg.UpdatedAt, arg.ID)
	if err != nil {
		return model.PageSection{}, err
	}
	return q.GetSectionByID(ctx, arg.ID)
}

// UpdateSectionOrder reassigns one section's display_order.
func (q *Queries) UpdateSectionOrder(ctx context.Context, id string, order int64, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE page_sections SET display_order = ?, updated_at = ? WHERE id = ?`,
		order, updatedAt, id)
	return err
}

// GetSectionByID returns one section by id.
func (q *Queries) GetSectionByID(ctx context.Context, id string) (model.PageSection, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+sectionColumns+` FROM page_sections WHERE id = ?`, id)
	return scanSectionFrom(row)
}

// ListSectionsForPage returns one page's sections ordered by display_order.
// entityID narrows to a per-record page when valid.
func (q *Queries) ListSectionsForPage(ctx context.Context, pageType string, entityID sql.NullString) ([]model.PageSection, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if entityID.Valid {
		rows, err = q.db.QueryContext(ctx, `
			SELECT `+sectionColumns+` FROM page_sections
			WHERE page_type = ? AND entity_id = ?
			ORDER BY display_order, id`, pageType, entityID.String)
	} else {
		rows, err = q.db.QueryContext(ctx, `
			SELECT `+sectionColumns+` FROM page_sections
			WHERE page_type = ? AND entity_id IS NULL
			ORDER BY display_order, id`, pageType)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sections []model.PageSection
	for rows.Next() {
		s, err := scanSectionFrom(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// DeleteSection removes a section by id.
func (q *Queries) DeleteSection(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM page_sections WHERE id = ?`, id)
	return err
}

func scanSectionFrom(s rowScanner) (model.PageSection, error) {
	var sec model.PageSection
	err := s.Scan(&sec.ID, &sec.PageType, &sec.EntityID, &sec.SectionType, &sec.Title,
		&sec.Subtitle, &sec.Content, &sec.DisplayOrder, &sec.IsActive,
		&sec.CreatedAt, &sec.UpdatedAt)
	return sec, err
}

// CreateSectionTypeParams holds the fields for inserting a section type.
type CreateSectionTypeParams struct {
	ID          string
	Name        string
	Description string
	Fields      string
	ItemsSchema string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateSectionType inserts a section type definition.
func (q *Queries) CreateSectionType(ctx context.Context, arg CreateSectionTypeParams) (model.SectionType, error) {
	id := arg.ID
	if id == "" {
		id = uuid.NewString()
	}
	fields := arg.Fields
	if fields == "" {
		fields = "[]"
	}
	itemsSchema := arg.ItemsSchema
	if itemsSchema == "" {
		itemsSchema = "{}"
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO section_types (id, name, description, fields, items_schema, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.Name, arg.Description, fields, itemsSchema, arg.IsActive,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.SectionType{}, err
	}
	return q.GetSectionTypeByName(ctx, arg.Name)
}

// GetSectionTypeByName returns one section type by its unique name.
func (q *Queries) GetSectionTypeByName(ctx context.Context, name string) (model.SectionType, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, description, fields, items_schema, is_active, created_at, updated_at
		FROM section_types WHERE name = ?`, name)
	var st model.SectionType
	err := row.Scan(&st.ID, &st.Name, &st.Description, &st.Fields, &st.ItemsSchema,
		&st.IsActive, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

// ListSectionTypes returns all section type definitions.
func (q *Queries) ListSectionTypes(ctx context.Context) ([]model.SectionType, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, description, fields, items_schema, is_active, created_at, updated_at
		FROM section_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var types []model.SectionType
	for rows.Next() {
		var st model.SectionType
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.Fields, &st.ItemsSchema,
			&st.IsActive, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, rows.Err()
}
