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

// CreateMediaParams holds the fields for inserting a media record.
type CreateMediaParams struct {
	ID        string
	Filename  string
	MimeType  string
	Size      int64
	Width     sql.NullInt64
	Height    sql.NullInt64
	Alt       string
	CreatedAt time.Time
}

// CreateMedia inserts a media record and returns the stored row.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (model.Media, error) {
	id := arg.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO media (id, filename, mime_type, size, width, height, alt, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, arg.Filename, arg.MimeType, arg.Size, arg.Width, arg.Height, arg.Alt, arg.CreatedAt)
	if err != nil {
		return model.Media{}, err
	}
	return q.GetMediaByID(ctx, id)
}

// GetMediaByID returns one media record by id.
func (q *Queries) GetMediaByID(ctx context.Context, id string) (model.Media, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, filename, mime_type, size, width, height, alt, created_at
		FROM media WHERE id = ?`, id)
	var m model.Media
	err := row.Scan(&m.ID, &m.Filename, &m.MimeType, &m.Size, &m.Width, &m.Height, &m.Alt, &m.CreatedAt)
	return m, err
}

// ListMedia returns all media records, newest first.
func (q *Queries) ListMedia(ctx context.Context) ([]model.Media, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, filename, mime_type, size, width, height, alt, created_at
		FROM media ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var media []model.Media
	for rows.Next() {
		var m model.Media
		if err := rows.Scan(&m.ID, &m.Filename, &m.MimeType, &m.Size, &m.Width, &m.Height, &m.Alt, &m.CreatedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// DeleteMedia removes a media record by id.
func (q *Queries) DeleteMedia(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	return err
}
