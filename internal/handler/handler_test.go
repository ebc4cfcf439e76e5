// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanzacms/stanza/internal/cache"
	"github.com/stanzacms/stanza/internal/handler"
	"github.com/stanzacms/stanza/internal/media"
	"github.com/stanzacms/stanza/internal/schema"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/testutil"
)

// newTestServer wires a handler over a temp database with a memory
// cache and returns the mounted router plus the raw queries for
// seeding.
func newTestServer(t *testing.T) (http.Handler, *store.Queries) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	backend := cache.NewSimpleMemoryCache(time.Minute)
	t.Cleanup(func() { _ = backend.Close() })

	queries := store.New(db)
	logger := testutil.TestLoggerSilent()
	content := cache.NewContentCache(backend, queries, logger, time.Minute)

	mediaStore, err := media.NewStore(t.TempDir(), "http://localhost:8080", logger)
	require.NoError(t, err)

	h := handler.NewHandler(db, schema.NewRegistry(), content, mediaStore, logger)
	return h.Routes(), queries
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func seedSectionType(t *testing.T, q *store.Queries, name string, fields []string, items map[string]string) {
	t.Helper()
	fieldsJSON, err := json.Marshal(fields)
	require.NoError(t, err)
	itemsJSON, err := json.Marshal(items)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = q.CreateSectionType(context.Background(), store.CreateSectionTypeParams{
		Name:        name,
		Fields:      string(fieldsJSON),
		ItemsSchema: string(itemsJSON),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPageLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/pages", map[string]any{
		"title":   "About Us",
		"content": map[string]any{"body": "hello"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData(t, rec)
	assert.Equal(t, "about-us", created["slug"], "slug derived from title")

	rec = doJSON(t, srv, http.MethodGet, "/pages/about-us", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "About Us", decodeData(t, rec)["title"])

	rec = doJSON(t, srv, http.MethodPut, "/pages/about-us", map[string]any{
		"title": "About",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "About", decodeData(t, rec)["title"])

	rec = doJSON(t, srv, http.MethodDelete, "/pages/about-us", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/pages/about-us", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePageValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/pages", map[string]any{"slug": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "title required")

	rec = doJSON(t, srv, http.MethodPost, "/pages", map[string]any{
		"title": "Bad", "slug": "Not A Slug!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDuplicateSlugConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]any{"title": "Home", "slug": "home"}
	rec := doJSON(t, srv, http.MethodPost, "/pages", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/pages", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMenuItemLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/menus/items", map[string]any{
		"menu_location": "header",
		"label":         "Docs",
		"url":           "/docs",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeData(t, rec)["id"].(string)

	rec = doJSON(t, srv, http.MethodGet, "/menus/header", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Docs"`)

	rec = doJSON(t, srv, http.MethodGet, "/menus", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "header")

	rec = doJSON(t, srv, http.MethodDelete, "/menus/items/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateMenuItemRejectsBadTarget(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/menus/items", map[string]any{
		"menu_location": "header",
		"label":         "Bad",
		"target":        "_top",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSectionContentValidatedAgainstSchema(t *testing.T) {
	srv, q := newTestServer(t)
	seedSectionType(t, q, "hero", []string{"title", "is_visible", "image_url"}, nil)

	// Wrong types for the inferred schema.
	rec := doJSON(t, srv, http.MethodPost, "/sections", map[string]any{
		"page_type":    "home",
		"section_type": "hero",
		"content":      map[string]any{"title": "Big", "is_visible": "yes"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/sections", map[string]any{
		"page_type":    "home",
		"section_type": "hero",
		"content":      map[string]any{"title": "Big", "is_visible": true},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/sections/home", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hero"`)
}

func TestCreateSectionUnknownType(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/sections", map[string]any{
		"page_type":    "home",
		"section_type": "nonexistent",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchemasEndpoints(t *testing.T) {
	srv, q := newTestServer(t)
	seedSectionType(t, q, "faq", []string{"title", "items"}, map[string]string{
		"question": "string", "answer": "string",
	})

	rec := doJSON(t, srv, http.MethodGet, "/schemas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "blog_post")

	rec = doJSON(t, srv, http.MethodGet, "/schemas/service", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/schemas/not-a-type", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/schemas/sections/faq", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "faq", data["name"])
	assert.NotNil(t, data["schema"])
	assert.NotNil(t, data["example"])
}

func TestPreviewMarkdownSanitizes(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/preview/markdown", map[string]any{
		"markdown": "# Title\n\n<script>alert(1)</script>\n\n**bold**",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	html := decodeData(t, rec)["html"].(string)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.NotContains(t, html, "<script>")
}

func TestListEntitiesUnknownType(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/entities/widget", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
