// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stanzacms/stanza/internal/model"
)

// CreateEntityParams holds the fields for inserting an entity record.
type CreateEntityParams struct {
	ID         string // empty means backend-generated
	EntityType model.EntityType
	Data       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateEntity inserts an entity record and returns the stored row.
// A supplied ID is preserved so imports can round-trip identifiers.
func (q *Queries) CreateEntity(ctx context.Context, arg CreateEntityParams) (model.Entity, error) {
	id := arg.ID
	if id == "" {
		id = uuid.NewString()
	}
	data := arg.Data
	if data == "" {
		data = "{}"
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO entities (id, entity_type, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, arg.EntityType, data, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.Entity{}, err
	}
	return q.GetEntityByID(ctx, id)
}

// UpdateEntity replaces the data payload of an existing entity record.
func (q *Queries) UpdateEntity(ctx context.Context, id, data string, updatedAt time.Time) (model.Entity, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE entities SET data = ?, updated_at = ? WHERE id = ?`,
		data, updatedAt, id)
	if err != nil {
		return model.Entity{}, err
	}
	return q.GetEntityByID(ctx, id)
}

// GetEntityByID returns one entity record by id.
func (q *Queries) GetEntityByID(ctx context.Context, id string) (model.Entity, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, entity_type, data, created_at, updated_at
		FROM entities WHERE id = ?`, id)
	var e model.Entity
	err := row.Scan(&e.ID, &e.EntityType, &e.Data, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// ListEntitiesByType returns all records of one entity type.
func (q *Queries) ListEntitiesByType(ctx context.Context, entityType model.EntityType) ([]model.Entity, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, entity_type, data, created_at, updated_at
		FROM entities WHERE entity_type = ? ORDER BY created_at, id`, entityType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entities []model.Entity
	for rows.Next() {
		var e model.Entity
		if err := rows.Scan(&e.ID, &e.EntityType, &e.Data, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// DeleteEntity removes an entity record by id.
func (q *Queries) DeleteEntity(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id)
	return err
}

// CountEntitiesByType returns the number of records for one entity type.
func (q *Queries) CountEntitiesByType(ctx context.Context, entityType model.EntityType) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entities WHERE entity_type = ?`, entityType).Scan(&n)
	return n, err
}
