// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func recentEvents(t *testing.T, q *store.Queries) []model.Event {
	t.Helper()
	events, err := q.ListRecentEvents(context.Background(), 10)
	require.NoError(t, err)
	return events
}

func TestEventLogHandlerPersistsError(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Error("import failed", "file", "pages.json")

	events := recentEvents(t, store.New(db))
	require.Len(t, events, 1)
	assert.Equal(t, model.EventLevelError, events[0].Level)
	assert.Equal(t, model.EventCategoryTransfer, events[0].Category)
	assert.Equal(t, "import failed", events[0].Message)
	assert.Contains(t, events[0].Metadata, `"file":"pages.json"`)
}

func TestEventLogHandlerIgnoresInfo(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Info("server started")
	logger.Debug("noise")

	assert.Empty(t, recentEvents(t, store.New(db)))
}

func TestEventLogHandlerExplicitCategory(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db))
	logger.Warn("slow lookup", "category", model.EventCategoryCache, "key", "pages:list")

	events := recentEvents(t, store.New(db))
	require.Len(t, events, 1)
	assert.Equal(t, model.EventCategoryCache, events[0].Category)
	assert.NotContains(t, events[0].Metadata, "category", "category attr is lifted out of metadata")
	assert.Contains(t, events[0].Metadata, `"key":"pages:list"`)
}

func TestEventLogHandlerCategoryInference(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"export completed with failures", model.EventCategoryTransfer},
		{"page parent missing", model.EventCategoryContent},
		{"cache invalidation failed", model.EventCategoryCache},
		{"upload rejected", model.EventCategoryMedia},
		{"disk nearly full", model.EventCategorySystem},
	}

	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	for _, tt := range tests {
		logger.Warn(tt.message)
	}

	events := recentEvents(t, store.New(db))
	require.Len(t, events, len(tests))
	byMessage := make(map[string]string, len(events))
	for _, ev := range events {
		byMessage[ev.Message] = ev.Category
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, byMessage[tt.message], tt.message)
	}
}

func TestEventLogHandlerWithAttrs(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).With("request_id", "r-1")
	logger.Warn("section type missing")

	events := recentEvents(t, store.New(db))
	require.Len(t, events, 1)
	// Attrs added via With live on the record too.
	assert.Contains(t, events[0].Metadata, `"request_id":"r-1"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}
