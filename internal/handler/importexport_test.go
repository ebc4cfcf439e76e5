// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanzacms/stanza/internal/transfer"
)

func pagesMenuEnvelope(pages []map[string]any, items []map[string]any) map[string]any {
	return map[string]any{
		"version":        transfer.ExportVersion,
		"entity_type":    transfer.EntityTypePagesAndMenu,
		"exported_at":    time.Now().UTC(),
		"menu_locations": []string{"header"},
		"pages":          pages,
		"menu_items":     items,
	}
}

func TestImportPagesMenu(t *testing.T) {
	srv, _ := newTestServer(t)

	body := pagesMenuEnvelope(
		[]map[string]any{
			{"slug": "home", "title": "Home"},
			{"slug": "docs", "title": "Docs", "parent_slug": "home"},
		},
		[]map[string]any{
			{"key": "m1", "menu_location": "header", "label": "Home", "page_slug": "home"},
		},
	)

	rec := doJSON(t, srv, http.MethodPost, "/import/pages-menu", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/pages/docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/menus/header", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Home"`)
}

func TestImportPagesMenuValidateOnly(t *testing.T) {
	srv, _ := newTestServer(t)

	body := pagesMenuEnvelope(
		[]map[string]any{{"slug": "home", "title": "Home"}},
		nil,
	)
	rec := doJSON(t, srv, http.MethodPost, "/import/pages-menu?validate_only=true", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valid":true`)

	// Nothing was written.
	rec = doJSON(t, srv, http.MethodGet, "/pages/home", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportPagesMenuRejectsCycle(t *testing.T) {
	srv, _ := newTestServer(t)

	body := pagesMenuEnvelope(
		[]map[string]any{
			{"slug": "a", "title": "A", "parent_slug": "b"},
			{"slug": "b", "title": "B", "parent_slug": "a"},
		},
		nil,
	)
	rec := doJSON(t, srv, http.MethodPost, "/import/pages-menu", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestImportPagesMenuBadEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/import/pages-menu", map[string]any{
		"version":     transfer.ExportVersion,
		"entity_type": "something_else",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/import/pages-menu?conflict_strategy=upsert",
		pagesMenuEnvelope(nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown strategy rejected")
}

func TestImportEntitiesRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]any{
		"version":     transfer.ExportVersion,
		"exported_at": time.Now().UTC(),
		"entity_type": "service",
		"entities": []map[string]any{
			{"id": "svc-1", "name": "Consulting", "price": 100},
		},
	}
	rec := doJSON(t, srv, http.MethodPost, "/import/entities/service", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/entities/service", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Consulting")
}

func TestBulkDeleteEntities(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]any{
		"version":     transfer.ExportVersion,
		"exported_at": time.Now().UTC(),
		"entity_type": "service",
		"entities": []map[string]any{
			{"id": "svc-1", "name": "Consulting"},
			{"id": "svc-2", "name": "Training"},
		},
	}
	rec := doJSON(t, srv, http.MethodPost, "/import/entities/service", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/entities/service/bulk-delete", map[string]any{
		"ids": []string{"svc-1", "svc-2"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"deleted":2`)

	rec = doJSON(t, srv, http.MethodGet, "/entities/service", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":0`)
}

func TestImportEntitiesTypeMismatch(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]any{
		"version":     transfer.ExportVersion,
		"entity_type": "service",
		"entities":    []map[string]any{{"name": "x"}},
	}
	rec := doJSON(t, srv, http.MethodPost, "/import/entities/project", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExportPagesMenuDownload(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/pages", map[string]any{
		"title": "Home", "slug": "home",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/export/pages-menu", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "pages-and-menu")

	var env transfer.PagesMenuEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, transfer.ExportVersion, env.Version)
	require.Len(t, env.Pages, 1)
	assert.Equal(t, "home", env.Pages[0].Slug)
}

func TestImportExportSections(t *testing.T) {
	srv, q := newTestServer(t)
	seedSectionType(t, q, "hero", []string{"title"}, nil)

	body := map[string]any{
		"version":     transfer.ExportVersion,
		"entity_type": transfer.EntityTypePageSection,
		"exported_at": time.Now().UTC(),
		"page_type":   "home",
		"sections": []map[string]any{
			{"section_type": "hero", "title": "Welcome", "content": map[string]any{"title": "Welcome"}},
		},
	}
	rec := doJSON(t, srv, http.MethodPost, "/import/sections", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/export/sections/home", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env transfer.SectionsEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "home", env.PageType)
	require.Len(t, env.Sections, 1)
	assert.Equal(t, "hero", env.Sections[0].SectionType)
}

func TestImportSectionsUnknownTypeRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]any{
		"version":     transfer.ExportVersion,
		"entity_type": transfer.EntityTypePageSection,
		"page_type":   "home",
		"sections": []map[string]any{
			{"section_type": "nonexistent"},
		},
	}
	rec := doJSON(t, srv, http.MethodPost, "/import/sections", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}
