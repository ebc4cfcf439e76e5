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

const pageColumns = `id, slug, title, parent_id, display_order, is_active, show_in_nav,
	content, description, meta_title, meta_description, meta_keywords, created_at, updated_at`

// CreatePageParams holds the fields for inserting a page.
type CreatePageParams struct {
	ID              string // empty means backend-generated
	Slug            string
	Title           string
	ParentID        sql.NullString
	DisplayOrder    int64
	IsActive        bool
	ShowInNav       bool
	Content         string
	Description     string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreatePage inserts a page and returns the stored row.
func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (model.Page, error) {
	id := arg.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO pages (`+pageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.Slug, arg.Title, arg.ParentID, arg.DisplayOrder, arg.IsActive, arg.ShowInNav,
		arg.Content, arg.Description, arg.MetaTitle, arg.MetaDescription, arg.MetaKeywords,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.Page{}, err
	}
	return q.GetPageByID(ctx, id)
}

// UpdatePageParams holds the fields for updating a page.
type UpdatePageParams struct {
	ID              string
	Slug            string
	Title           string
	ParentID        sql.NullString
	DisplayOrder    int64
	IsActive        bool
	ShowInNav       bool
	Content         string
	Description     string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	UpdatedAt       time.Time
}

// UpdatePage replaces all mapped fields on an existing page row.
func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (model.Page, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE pages SET slug = ?, title = ?, parent_id = ?, display_order = ?, is_active = ?,
			show_in_nav = ?, content = ?, description = ?, meta_title = ?, meta_description = ?,
			meta_keywords = ?, updated_at = ?
		WHERE id = ?`,
		arg.Slug, arg.Title, arg.ParentID, arg.DisplayOrder, arg.IsActive, arg.ShowInNav,
		arg.Content, arg.Description, arg.MetaTitle, arg.MetaDescription, arg.MetaKeywords,
		arg.UpdatedAt, arg.ID)
	if err != nil {
		return model.Page{}, err
	}
	return q.GetPageByID(ctx, arg.ID)
}

// GetPageByID returns one page by id.
func (q *Queries) GetPageByID(ctx context.Context, id string) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id)
	return scanPage(row)
}

// GetPageBySlug returns one page by its slug.
func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = ?`, slug)
	return scanPage(row)
}

// ListPages returns all pages ordered by display_order, id.
// Ties on display_order are tolerated; the id tiebreak keeps reads deterministic.
func (q *Queries) ListPages(ctx context.Context) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages ORDER BY display_order, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pages []model.Page
	for rows.Next() {
		p, err := scanPageRows(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// ListNavPages returns active pages flagged for navigation.
func (q *Queries) ListNavPages(ctx context.Context) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+pageColumns+` FROM pages
		WHERE is_active = TRUE AND show_in_nav = TRUE
		ORDER BY display_order, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pages []model.Page
	for rows.Next() {
		p, err := scanPageRows(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// DeletePage removes a page by id. Children are re-rooted rather than
// cascaded: their parent_id is cleared first.
func (q *Queries) DeletePage(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx,
		`UPDATE pages SET parent_id = NULL WHERE parent_id = ?`, id); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	return err
}

// CountPages returns the total number of pages.
func (q *Queries) CountPages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPageFrom(s rowScanner) (model.Page, error) {
	var p model.Page
	err := s.Scan(&p.ID, &p.Slug, &p.Title, &p.ParentID, &p.DisplayOrder, &p.IsActive,
		&p.ShowInNav, &p.Content, &p.Description, &p.MetaTitle, &p.MetaDescription,
		&p.MetaKeywords, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanPage(row *sql.Row) (model.Page, error)       { return scanPageFrom(row) }
func scanPageRows(rows *sql.Rows) (model.Page, error) { return scanPageFrom(rows) }
