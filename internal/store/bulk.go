// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"strings"
)

// bulkChunkSize caps how many ids a single bulk statement targets.
// Oversized IN lists degrade on both backends.
const bulkChunkSize = 50

// BulkDeleteResult reports the outcome of a chunked bulk delete.
type BulkDeleteResult struct {
	Deleted int      `json:"deleted"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// BulkDeleteSections removes sections in id chunks. A chunk that fails
// as a whole is retried record by record so one bad id does not sink
// the rest of the chunk.
func (q *Queries) BulkDeleteSections(ctx context.Context, ids []string) BulkDeleteResult {
	return q.bulkDelete(ctx, "page_sections", ids)
}

// BulkDeleteEntities removes entity records in id chunks with the same
// per-record fallback as BulkDeleteSections.
func (q *Queries) BulkDeleteEntities(ctx context.Context, ids []string) BulkDeleteResult {
	return q.bulkDelete(ctx, "entities", ids)
}

func (q *Queries) bulkDelete(ctx context.Context, table string, ids []string) BulkDeleteResult {
	var result BulkDeleteResult
	for start := 0; start < len(ids); start += bulkChunkSize {
		end := start + bulkChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(chunk)), ", ")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		_, err := q.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE id IN (`+placeholders+`)`, args...)
		if err == nil {
			result.Deleted += len(chunk)
			continue
		}

		// Chunk failed; fall back to one statement per id.
		for _, id := range chunk {
			if _, err := q.db.ExecContext(ctx,
				`DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", table, id, err))
				continue
			}
			result.Deleted++
		}
	}
	return result
}
