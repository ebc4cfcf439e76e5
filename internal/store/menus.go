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

const menuItemColumns = `id, menu_location, label, url, page_id, parent_id, display_order,
	target, is_active, created_at, updated_at`

// CreateMenuItemParams holds the fields for inserting a menu item.
type CreateMenuItemParams struct {
	ID           string // empty means backend-generated
	MenuLocation string
	Label        string
	URL          sql.NullString
	PageID       sql.NullString
	ParentID     sql.NullString
	DisplayOrder int64
	Target       string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateMenuItem inserts a menu item and returns the stored row.
func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (model.MenuItem, error) {
	id := arg.ID
	if id == "" {
		id = uuid.NewString()
	}
	target := arg.Target
	if target == "" {
		target = model.TargetSelf
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO menu_items (`+menuItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.MenuLocation, arg.Label, arg.URL, arg.PageID, arg.ParentID,
		arg.DisplayOrder, target, arg.IsActive, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.MenuItem{}, err
	}
	return q.GetMenuItemByID(ctx, id)
}

// UpdateMenuItemParams holds the fields for updating a menu item.
type UpdateMenuItemParams struct {
	ID           string
	MenuLocation string
	Label        string
	URL          sql.NullString
	PageID       sql.NullString
	ParentID     sql.NullString
	DisplayOrder int64
	Target       string
	IsActive     bool
	UpdatedAt    time.Time
}

// UpdateMenuItem replaces all mapped fields on an existing menu item row.
func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (model.MenuItem, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE menu_items SET menu_location = ?, label = ?, url = ?, page_id = ?, parent_id = ?,
			display_order = ?, target = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		arg.MenuLocation, arg.Label, arg.URL, arg.PageID, arg.ParentID,
		arg.DisplayOrder, arg.Target, arg.IsActive, arg.UpdatedAt, arg.ID)
	if err != nil {
		return model.MenuItem{}, err
	}
	return q.GetMenuItemByID(ctx, arg.ID)
}

// GetMenuItemByID returns one menu item by id.
func (q *Queries) GetMenuItemByID(ctx context.Context, id string) (model.MenuItem, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, id)
	return scanMenuItemFrom(row)
}

// GetMenuItemByLocationAndLabel returns the first item matching the
// (menu_location, label) pair. This is the natural key used for import
// conflict matching; exported keys are synthetic and not stored.
func (q *Queries) GetMenuItemByLocationAndLabel(ctx context.Context, location, label string) (model.MenuItem, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+menuItemColumns+` FROM menu_items
		WHERE menu_location = ? AND label = ?
		ORDER BY display_order, id LIMIT 1`, location, label)
	return scanMenuItemFrom(row)
}

// ListMenuItems returns all menu items ordered by location then display order.
func (q *Queries) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	return q.queryMenuItems(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items ORDER BY menu_location, display_order, id`)
}

// ListMenuItemsByLocation returns all items for one menu location.
func (q *Queries) ListMenuItemsByLocation(ctx context.Context, location string) ([]model.MenuItem, error) {
	return q.queryMenuItems(ctx, `
		SELECT `+menuItemColumns+` FROM menu_items
		WHERE menu_location = ? ORDER BY display_order, id`, location)
}

// ListMenuLocations returns the distinct menu locations in use.
func (q *Queries) ListMenuLocations(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT DISTINCT menu_location FROM menu_items ORDER BY menu_location`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// DeleteMenuItem removes a menu item by id, re-rooting its children.
func (q *Queries) DeleteMenuItem(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx,
		`UPDATE menu_items SET parent_id = NULL WHERE parent_id = ?`, id); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	return err
}

func (q *Queries) queryMenuItems(ctx context.Context, query string, args ...any) ([]model.MenuItem, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.MenuItem
	for rows.Next() {
		it, err := scanMenuItemFrom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanMenuItemFrom(s rowScanner) (model.MenuItem, error) {
	var it model.MenuItem
	err := s.Scan(&it.ID, &it.MenuLocation, &it.Label, &it.URL, &it.PageID, &it.ParentID,
		&it.DisplayOrder, &it.Target, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}
