package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryContent  = "content"
	EventCategoryTransfer = "transfer"
	EventCategoryCache    = "cache"
	EventCategoryMedia    = "media"
	EventCategorySystem   = "system"
)

// Event is an audit log entry. WARN and ERROR level log records are
// persisted here by the logging handler; imports and exports also write
// summary events directly.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"` // JSON object, stored as text
	CreatedAt time.Time `json:"created_at"`
}
