// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeShallow(t *testing.T) {
	existing := map[string]any{"title": "Old", "description": "Keep"}
	incoming := map[string]any{"title": "New", "description": nil, "extra": 1}

	merged := mergeShallow(existing, incoming)
	assert.Equal(t, "New", merged["title"])
	assert.Equal(t, "Keep", merged["description"], "nil never overwrites")
	assert.Equal(t, 1, merged["extra"])
	assert.Equal(t, "Old", existing["title"], "inputs are not mutated")
}

func TestMergeDeepNestedObjects(t *testing.T) {
	existing := map[string]any{"a": map[string]any{"x": 1}}
	incoming := map[string]any{"a": map[string]any{"y": 2}}

	merged := mergeDeep(existing, incoming)
	assert.Equal(t, map[string]any{"x": 1, "y": 2}, merged["a"])
	assert.Equal(t, map[string]any{"x": 1}, existing["a"], "inputs are not mutated")
}

func TestMergeDeepArraysReplacedWholesale(t *testing.T) {
	existing := map[string]any{"tags": []any{"a", "b"}, "nested": map[string]any{"list": []any{1}}}
	incoming := map[string]any{"tags": []any{"c"}, "nested": map[string]any{"list": []any{2, 3}}}

	merged := mergeDeep(existing, incoming)
	assert.Equal(t, []any{"c"}, merged["tags"])
	assert.Equal(t, map[string]any{"list": []any{2, 3}}, merged["nested"])
}

func TestMergeDeepTypeChangeReplaces(t *testing.T) {
	existing := map[string]any{"a": map[string]any{"x": 1}}
	incoming := map[string]any{"a": "scalar now"}

	merged := mergeDeep(existing, incoming)
	assert.Equal(t, "scalar now", merged["a"])
}

func TestDetectCyclesReportsOffender(t *testing.T) {
	// 0 -> 2 -> 1 -> 0
	parents := []int{2, 0, 1}
	offenders := detectCycles(3, func(i int) int { return parents[i] })
	assert.Equal(t, []int{0}, offenders)
}

func TestDetectCyclesCleanTree(t *testing.T) {
	// 1 and 2 under 0; 3 is a root.
	parents := []int{-1, 0, 0, -1}
	assert.Empty(t, detectCycles(4, func(i int) int { return parents[i] }))
}

func TestTopologicalOrderParentsFirst(t *testing.T) {
	// 0's parent is 3, 3's parent is 1.
	parents := []int{3, -1, -1, 1}
	order, err := topologicalOrder(4, func(i int) int { return parents[i] })
	assert.NoError(t, err)

	position := make(map[int]int, len(order))
	for pos, idx := range order {
		position[idx] = pos
	}
	assert.Less(t, position[1], position[3])
	assert.Less(t, position[3], position[0])
	assert.Len(t, order, 4)
}

func TestTopologicalOrderStallsOnCycle(t *testing.T) {
	parents := []int{1, 0}
	_, err := topologicalOrder(2, func(i int) int { return parents[i] })
	assert.Error(t, err)
}
