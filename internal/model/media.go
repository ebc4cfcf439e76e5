package model

import (
	"database/sql"
	"time"
)

// Media is an uploaded file record. The bytes live on disk under the
// uploads directory; this row carries the metadata.
type Media struct {
	ID        string        `json:"id"`
	Filename  string        `json:"filename"`
	MimeType  string        `json:"mime_type"`
	Size      int64         `json:"size"`
	Width     sql.NullInt64 `json:"width"`
	Height    sql.NullInt64 `json:"height"`
	Alt       string        `json:"alt"`
	CreatedAt time.Time     `json:"created_at"`
}
