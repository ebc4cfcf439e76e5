// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	ok, err := c.Has(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheReturnsCopy(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("abc"), 0))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCacheDeleteByPrefix(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "pages:list", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "pages:slug:home", []byte("b"), 0))
	require.NoError(t, c.Set(ctx, "menus:header", []byte("c"), 0))

	require.NoError(t, c.DeleteByPrefix(ctx, "pages:"))

	_, err := c.Get(ctx, "pages:list")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "pages:slug:home")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.Get(ctx, "menus:header")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), got)
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Clear(ctx))

	assert.Zero(t, c.Stats().Items)
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	require.NoError(t, c.Close())

	ctx := context.Background()
	_, err := c.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrCacheClosed)
	assert.ErrorIs(t, c.Set(ctx, "key", nil, 0), ErrCacheClosed)

	// Close is idempotent.
	assert.NoError(t, c.Close())
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))
	_, _ = c.Get(ctx, "key")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.Items)
	assert.InDelta(t, 50.0, stats.HitRate, 0.01)

	c.ResetStats()
	assert.Zero(t, c.Stats().Hits)
}
