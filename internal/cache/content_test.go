// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanzacms/stanza/internal/cache"
	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/testutil"
	"github.com/stanzacms/stanza/internal/transfer"
)

// The importer only sees the invalidation surface.
var _ transfer.Invalidator = (*cache.ContentCache)(nil)

func newContentCache(t *testing.T) (*cache.ContentCache, *store.Queries) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	backend := cache.NewSimpleMemoryCache(time.Minute)
	t.Cleanup(func() { _ = backend.Close() })

	queries := store.New(db)
	return cache.NewContentCache(backend, queries, testutil.TestLoggerSilent(), time.Minute), queries
}

func seedPage(t *testing.T, q *store.Queries, slug string) model.Page {
	t.Helper()
	now := time.Now().UTC()
	page, err := q.CreatePage(context.Background(), store.CreatePageParams{
		Slug:      slug,
		Title:     slug,
		Content:   "{}",
		IsActive:  true,
		ShowInNav: true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return page
}

func TestContentCachePagesReadThrough(t *testing.T) {
	c, q := newContentCache(t)
	ctx := context.Background()

	seedPage(t, q, "home")

	pages, err := c.Pages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	// A direct store write is invisible until invalidation.
	seedPage(t, q, "about")

	pages, err = c.Pages(ctx)
	require.NoError(t, err)
	assert.Len(t, pages, 1, "stale list served from cache")

	c.InvalidatePages(ctx)

	pages, err = c.Pages(ctx)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestContentCachePageBySlug(t *testing.T) {
	c, q := newContentCache(t)
	ctx := context.Background()

	seedPage(t, q, "services")

	page, err := c.PageBySlug(ctx, "services")
	require.NoError(t, err)
	assert.Equal(t, "services", page.Slug)

	_, err = c.PageBySlug(ctx, "missing")
	assert.Error(t, err, "store errors pass through uncached")
}

func TestContentCacheMenuTree(t *testing.T) {
	c, q := newContentCache(t)
	ctx := context.Background()
	now := time.Now().UTC()

	parent, err := q.CreateMenuItem(ctx, store.CreateMenuItemParams{
		MenuLocation: model.MenuLocationHeader,
		Label:        "Docs",
		URL:          sql.NullString{String: "/docs", Valid: true},
		Target:       model.TargetSelf,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	_, err = q.CreateMenuItem(ctx, store.CreateMenuItemParams{
		MenuLocation: model.MenuLocationHeader,
		Label:        "Guides",
		URL:          sql.NullString{String: "/docs/guides", Valid: true},
		ParentID:     sql.NullString{String: parent.ID, Valid: true},
		Target:       model.TargetSelf,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)

	tree, err := c.MenuTree(ctx, model.MenuLocationHeader)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Guides", tree[0].Children[0].Label)

	// Cached per location: the footer is independent.
	footer, err := c.MenuTree(ctx, model.MenuLocationFooter)
	require.NoError(t, err)
	assert.Empty(t, footer)
}

func TestContentCacheInvalidateSectionsScopedByPageType(t *testing.T) {
	c, q := newContentCache(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, pageType := range []string{"home", "contact"} {
		_, err := q.CreateSection(ctx, store.CreateSectionParams{
			PageType:    pageType,
			SectionType: "hero",
			Content:     "{}",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		require.NoError(t, err)
	}

	home, err := c.SectionsForPage(ctx, "home", nil)
	require.NoError(t, err)
	require.Len(t, home, 1)
	contact, err := c.SectionsForPage(ctx, "contact", nil)
	require.NoError(t, err)
	require.Len(t, contact, 1)

	_, err = q.CreateSection(ctx, store.CreateSectionParams{
		PageType:    "home",
		SectionType: "cta",
		Content:     "{}",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)

	c.InvalidateSections(ctx, "home")

	home, err = c.SectionsForPage(ctx, "home", nil)
	require.NoError(t, err)
	assert.Len(t, home, 2, "home entries reloaded")
}

func TestContentCacheSurvivesClosedBackend(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	queries := store.New(db)

	backend := cache.NewSimpleMemoryCache(time.Minute)
	require.NoError(t, backend.Close())

	c := cache.NewContentCache(backend, queries, testutil.TestLoggerSilent(), time.Minute)
	seedPage(t, queries, "home")

	pages, err := c.Pages(context.Background())
	require.NoError(t, err, "closed backend degrades to uncached reads")
	assert.Len(t, pages, 1)

	c.InvalidatePages(context.Background())
}
