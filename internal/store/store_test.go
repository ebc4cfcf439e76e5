// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/testutil"
	"github.com/stanzacms/stanza/internal/util"
)

func newTestQueries(t *testing.T) *store.Queries {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return store.New(db)
}

func createTestPage(t *testing.T, q *store.Queries, slug string, parentID sql.NullString, order int64) model.Page {
	t.Helper()
	now := time.Now().UTC()
	page, err := q.CreatePage(context.Background(), store.CreatePageParams{
		Slug:         slug,
		Title:        slug,
		ParentID:     parentID,
		DisplayOrder: order,
		IsActive:     true,
		ShowInNav:    true,
		Content:      "{}",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return page
}

func TestCreatePageGeneratesID(t *testing.T) {
	q := newTestQueries(t)

	page := createTestPage(t, q, "about", sql.NullString{}, 0)
	assert.NotEmpty(t, page.ID)
	assert.Equal(t, "about", page.Slug)
	assert.True(t, page.IsActive)

	got, err := q.GetPageBySlug(context.Background(), "about")
	require.NoError(t, err)
	assert.Equal(t, page.ID, got.ID)
}

func TestCreatePagePreservesSuppliedID(t *testing.T) {
	q := newTestQueries(t)
	now := time.Now().UTC()

	page, err := q.CreatePage(context.Background(), store.CreatePageParams{
		ID:        "fixed-id",
		Slug:      "home",
		Title:     "Home",
		Content:   "{}",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", page.ID)
}

func TestCreatePageDuplicateSlug(t *testing.T) {
	q := newTestQueries(t)

	createTestPage(t, q, "services", sql.NullString{}, 0)
	now := time.Now().UTC()
	_, err := q.CreatePage(context.Background(), store.CreatePageParams{
		Slug:      "services",
		Title:     "Services again",
		Content:   "{}",
		CreatedAt: now,
		UpdatedAt: now,
	})
	assert.Error(t, err)
}

func TestListPagesOrdering(t *testing.T) {
	q := newTestQueries(t)

	createTestPage(t, q, "third", sql.NullString{}, 2)
	createTestPage(t, q, "first", sql.NullString{}, 0)
	createTestPage(t, q, "second", sql.NullString{}, 1)

	pages, err := q.ListPages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "first", pages[0].Slug)
	assert.Equal(t, "second", pages[1].Slug)
	assert.Equal(t, "third", pages[2].Slug)
}

func TestDeletePageReRootsChildren(t *testing.T) {
	q := newTestQueries(t)

	parent := createTestPage(t, q, "parent", sql.NullString{}, 0)
	child := createTestPage(t, q, "child", util.NullStringFromValue(parent.ID), 0)

	require.NoError(t, q.DeletePage(context.Background(), parent.ID))

	got, err := q.GetPageByID(context.Background(), child.ID)
	require.NoError(t, err)
	assert.False(t, got.ParentID.Valid)

	_, err = q.GetPageByID(context.Background(), parent.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMenuItemNaturalKeyLookup(t *testing.T) {
	q := newTestQueries(t)
	now := time.Now().UTC()

	_, err := q.CreateMenuItem(context.Background(), store.CreateMenuItemParams{
		MenuLocation: model.MenuLocationHeader,
		Label:        "Contact",
		URL:          util.NullStringFromValue("/contact"),
		DisplayOrder: 3,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)

	item, err := q.GetMenuItemByLocationAndLabel(context.Background(), model.MenuLocationHeader, "Contact")
	require.NoError(t, err)
	assert.Equal(t, "/contact", item.URL.String)
	assert.Equal(t, model.TargetSelf, item.Target)

	_, err = q.GetMenuItemByLocationAndLabel(context.Background(), model.MenuLocationFooter, "Contact")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListMenuLocations(t *testing.T) {
	q := newTestQueries(t)
	now := time.Now().UTC()

	for _, loc := range []string{model.MenuLocationFooter, model.MenuLocationHeader, model.MenuLocationHeader} {
		_, err := q.CreateMenuItem(context.Background(), store.CreateMenuItemParams{
			MenuLocation: loc,
			Label:        "item-" + loc,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		require.NoError(t, err)
	}

	locations, err := q.ListMenuLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{model.MenuLocationFooter, model.MenuLocationHeader}, locations)
}

func TestListSectionsForPage(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, st := range []string{"hero", "features", "cta"} {
		_, err := q.CreateSection(ctx, store.CreateSectionParams{
			PageType:     "home",
			SectionType:  st,
			Content:      "{}",
			DisplayOrder: int64(i),
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		require.NoError(t, err)
	}
	// Section scoped to a per-record page must not leak into the
	// page-level listing.
	_, err := q.CreateSection(ctx, store.CreateSectionParams{
		PageType:    "blog_post",
		EntityID:    util.NullStringFromValue("post-1"),
		SectionType: "hero",
		Content:     "{}",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)

	sections, err := q.ListSectionsForPage(ctx, "home", sql.NullString{})
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "hero", sections[0].SectionType)
	assert.Equal(t, "cta", sections[2].SectionType)

	scoped, err := q.ListSectionsForPage(ctx, "blog_post", util.NullStringFromValue("post-1"))
	require.NoError(t, err)
	assert.Len(t, scoped, 1)
}

func TestSectionTypeRoundTrip(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()
	now := time.Now().UTC()

	created, err := q.CreateSectionType(ctx, store.CreateSectionTypeParams{
		Name:        "hero",
		Description: "Top-of-page banner",
		Fields:      `["heading","subheading","image_url"]`,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "{}", created.ItemsSchema)

	got, err := q.GetSectionTypeByName(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	types, err := q.ListSectionTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 1)
}

func TestEntityCRUD(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()
	now := time.Now().UTC()

	created, err := q.CreateEntity(ctx, store.CreateEntityParams{
		EntityType: model.EntityTypeService,
		Data:       `{"name":"Consulting"}`,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)

	updated, err := q.UpdateEntity(ctx, created.ID, `{"name":"Advisory"}`, now.Add(time.Minute))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Advisory"}`, updated.Data)

	list, err := q.ListEntitiesByType(ctx, model.EntityTypeService)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, q.DeleteEntity(ctx, created.ID))
	n, err := q.CountEntitiesByType(ctx, model.EntityTypeService)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBulkDeleteSections(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()
	now := time.Now().UTC()

	var ids []string
	for i := 0; i < 120; i++ {
		s, err := q.CreateSection(ctx, store.CreateSectionParams{
			PageType:     "home",
			SectionType:  "features",
			Content:      "{}",
			DisplayOrder: int64(i),
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	result := q.BulkDeleteSections(ctx, ids)
	assert.Equal(t, 120, result.Deleted)
	assert.Zero(t, result.Failed)

	sections, err := q.ListSectionsForPage(ctx, "home", sql.NullString{})
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestEventsRoundTrip(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := q.CreateEvent(ctx, store.CreateEventParams{
			Level:     model.EventLevelInfo,
			Category:  model.EventCategoryTransfer,
			Message:   "import finished",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	events, err := q.ListRecentEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].CreatedAt.After(events[1].CreatedAt))

	pruned, err := q.PruneEvents(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 2, pruned)
}
