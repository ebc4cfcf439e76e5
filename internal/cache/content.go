// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/util"
)

// Key prefixes for the content cache. Invalidation works on these
// prefixes, so every key a loader writes must start with one of them.
const (
	keyPrefixPages    = "pages:"
	keyPrefixMenus    = "menus:"
	keyPrefixSections = "sections:"
)

// ContentCache is a read-through cache over the content store. Loads
// that miss fall through to the store and backfill the cache; a cache
// backend failure degrades to an uncached read rather than an error.
// It also serves as the importer's invalidation hook.
type ContentCache struct {
	cache  Cache
	store  *store.Queries
	logger *slog.Logger
	ttl    time.Duration
}

// NewContentCache creates a ContentCache over the given backend.
func NewContentCache(backend Cache, queries *store.Queries, logger *slog.Logger, ttl time.Duration) *ContentCache {
	return &ContentCache{cache: backend, store: queries, logger: logger, ttl: ttl}
}

// Pages returns all pages, cached.
func (c *ContentCache) Pages(ctx context.Context) ([]model.Page, error) {
	return cached(ctx, c, keyPrefixPages+"list", func() ([]model.Page, error) {
		return c.store.ListPages(ctx)
	})
}

// NavPages returns active navigation pages, cached.
func (c *ContentCache) NavPages(ctx context.Context) ([]model.Page, error) {
	return cached(ctx, c, keyPrefixPages+"nav", func() ([]model.Page, error) {
		return c.store.ListNavPages(ctx)
	})
}

// PageBySlug returns one page by slug, cached per slug.
func (c *ContentCache) PageBySlug(ctx context.Context, slug string) (model.Page, error) {
	return cached(ctx, c, keyPrefixPages+"slug:"+slug, func() (model.Page, error) {
		return c.store.GetPageBySlug(ctx, slug)
	})
}

// MenuTree returns one location's menu as a parent/child tree, cached
// per location.
func (c *ContentCache) MenuTree(ctx context.Context, location string) ([]model.MenuItemWithChildren, error) {
	return cached(ctx, c, keyPrefixMenus+location, func() ([]model.MenuItemWithChildren, error) {
		items, err := c.store.ListMenuItemsByLocation(ctx, location)
		if err != nil {
			return nil, err
		}
		return model.BuildMenuTree(items), nil
	})
}

// SectionsForPage returns one page's ordered active sections, cached
// per page type and entity scope.
func (c *ContentCache) SectionsForPage(ctx context.Context, pageType string, entityID *string) ([]model.PageSection, error) {
	key := keyPrefixSections + pageType
	if entityID != nil {
		key += ":" + *entityID
	}
	return cached(ctx, c, key, func() ([]model.PageSection, error) {
		return c.store.ListSectionsForPage(ctx, pageType, util.NullStringFromPtr(entityID))
	})
}

// InvalidatePages drops all cached page lists and lookups.
func (c *ContentCache) InvalidatePages(ctx context.Context) {
	c.invalidate(ctx, keyPrefixPages)
	// Menus embed page links, so a page change can retitle or retarget
	// rendered menus.
	c.invalidate(ctx, keyPrefixMenus)
}

// InvalidateMenus drops all cached menu trees.
func (c *ContentCache) InvalidateMenus(ctx context.Context) {
	c.invalidate(ctx, keyPrefixMenus)
}

// InvalidateSections drops cached sections for one page type, or all
// section entries when pageType is empty.
func (c *ContentCache) InvalidateSections(ctx context.Context, pageType string) {
	c.invalidate(ctx, keyPrefixSections+pageType)
}

// Clear drops every content entry.
func (c *ContentCache) Clear(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

func (c *ContentCache) invalidate(ctx context.Context, prefix string) {
	if err := c.cache.DeleteByPrefix(ctx, prefix); err != nil && !errors.Is(err, ErrCacheClosed) {
		c.logger.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}

// cached is the read-through path: hit decodes, miss loads and
// backfills. Cache errors are logged and bypassed so the store remains
// the source of truth.
func cached[T any](ctx context.Context, c *ContentCache, key string, load func() (T, error)) (T, error) {
	var zero T

	raw, err := c.cache.Get(ctx, key)
	if err == nil {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, nil
		}
		c.logger.Warn("dropping undecodable cache entry", "key", key)
		_ = c.cache.Delete(ctx, key)
	} else if !errors.Is(err, ErrCacheMiss) && !errors.Is(err, ErrCacheClosed) {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	value, err := load()
	if err != nil {
		return zero, err
	}

	raw, err = json.Marshal(value)
	if err != nil {
		return zero, fmt.Errorf("encoding cache entry %s: %w", key, err)
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil && !errors.Is(err, ErrCacheClosed) {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return value, nil
}
