// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/schema"
	"github.com/stanzacms/stanza/internal/store"
)

// Invalidator receives a signal after an import mutates content so
// derived read views (page lists, nav trees, per-slug lookups) get
// refreshed. Imports must not assume callers refresh automatically.
type Invalidator interface {
	InvalidatePages(ctx context.Context)
	InvalidateMenus(ctx context.Context)
	InvalidateSections(ctx context.Context, pageType string)
}

// noopInvalidator keeps the importer usable without a cache layer.
type noopInvalidator struct{}

func (noopInvalidator) InvalidatePages(context.Context)             {}
func (noopInvalidator) InvalidateMenus(context.Context)             {}
func (noopInvalidator) InvalidateSections(context.Context, string)  {}

// Importer reconciles parsed import envelopes against existing backend
// rows. Records are processed strictly sequentially: the topological
// order is an execution order, because later records resolve their
// parent references from earlier records' ids.
type Importer struct {
	store     *store.Queries
	logger    *slog.Logger
	registry  *schema.Registry
	sanitizer *bluemonday.Policy
	cache     Invalidator
}

// NewImporter creates an Importer. Free-text fields pass through a
// strict sanitization policy on the way in.
func NewImporter(queries *store.Queries, registry *schema.Registry, logger *slog.Logger) *Importer {
	return &Importer{
		store:     queries,
		logger:    logger,
		registry:  registry,
		sanitizer: bluemonday.StrictPolicy(),
		cache:     noopInvalidator{},
	}
}

// SetInvalidator wires the cache invalidation hook.
func (i *Importer) SetInvalidator(inv Invalidator) {
	if inv != nil {
		i.cache = inv
	}
}

func (i *Importer) sanitize(s string) string {
	return i.sanitizer.Sanitize(s)
}

// recordEvent writes an audit event for an import run. Failures here
// are logged, never propagated; the import outcome stands on its own.
func (i *Importer) recordEvent(ctx context.Context, message string, result *ImportResult) {
	metadata, err := json.Marshal(result)
	if err != nil {
		metadata = []byte("{}")
	}
	level := model.EventLevelInfo
	if result.Failed > 0 {
		level = model.EventLevelWarning
	}
	if err := i.store.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  model.EventCategoryTransfer,
		Message:   message,
		Metadata:  string(metadata),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		i.logger.Warn("failed to record import event", "error", err)
	}
}

// ImportEntities reconciles a generic entity envelope: records with an
// id are matched against existing rows and resolved per the conflict
// strategy; unmatched records are inserted when creation is allowed.
// Each record's outcome is independent; one failure never aborts the
// batch.
func (i *Importer) ImportEntities(ctx context.Context, env *EntityEnvelope, opts ImportOptions) (*ImportResult, error) {
	if err := ValidateEntityEnvelope(env, env.EntityType); err != nil {
		return nil, err
	}
	if !model.IsValidEntityType(env.EntityType) {
		return nil, fmt.Errorf("unknown entity type %q", env.EntityType)
	}
	if !opts.ConflictStrategy.IsValid() {
		return nil, fmt.Errorf("unknown conflict strategy %q", opts.ConflictStrategy)
	}

	result := &ImportResult{Total: len(env.Entities)}
	now := time.Now().UTC()

	entitySchema := i.registry.GetEntitySchema(env.EntityType)

	for idx, record := range env.Entities {
		id, _ := record["id"].(string)

		if entitySchema != nil {
			if v := schema.ValidateJSON(stripID(record), entitySchema.Schema); !v.Valid {
				result.addEntityError(idx, id, formatSchemaErrors(v.Errors))
				continue
			}
		}

		data, err := json.Marshal(stripID(record))
		if err != nil {
			result.addEntityError(idx, id, err.Error())
			continue
		}

		var existing model.Entity
		exists := false
		if id != "" {
			existing, err = i.store.GetEntityByID(ctx, id)
			if err == nil {
				exists = true
			} else if !errors.Is(err, sql.ErrNoRows) {
				result.addEntityError(idx, id, err.Error())
				continue
			}
		}

		if exists {
			switch opts.ConflictStrategy {
			case ConflictSkip:
				result.Skipped++
			case ConflictOverwrite:
				if _, err := i.store.UpdateEntity(ctx, id, string(data), now); err != nil {
					result.addEntityError(idx, id, err.Error())
					continue
				}
				result.Overwritten++
			case ConflictMerge:
				merged, err := mergeEntityData(existing.Data, stripID(record))
				if err != nil {
					result.addEntityError(idx, id, err.Error())
					continue
				}
				if _, err := i.store.UpdateEntity(ctx, id, merged, now); err != nil {
					result.addEntityError(idx, id, err.Error())
					continue
				}
				result.Overwritten++
			}
			continue
		}

		if !opts.AllowCreate {
			result.Skipped++
			continue
		}
		if _, err := i.store.CreateEntity(ctx, store.CreateEntityParams{
			ID:         id,
			EntityType: env.EntityType,
			Data:       string(data),
			CreatedAt:  now,
			UpdatedAt:  now,
		}); err != nil {
			result.addEntityError(idx, id, err.Error())
			continue
		}
		result.Imported++
	}

	i.recordEvent(ctx, fmt.Sprintf("imported %s entities", env.EntityType), result)
	return result.finish(), nil
}

// ImportEntitiesFromReader parses and imports a generic entity export.
func (i *Importer) ImportEntitiesFromReader(ctx context.Context, r io.Reader, expected model.EntityType, opts ImportOptions) (*ImportResult, error) {
	env, err := ParseEntityEnvelope(r)
	if err != nil {
		return nil, err
	}
	if err := ValidateEntityEnvelope(env, expected); err != nil {
		return nil, err
	}
	return i.ImportEntities(ctx, env, opts)
}

// stripID copies a record without its "id" key so the stored data
// payload never duplicates the primary key column.
func stripID(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// mergeEntityData applies the shallow entity merge: an incoming field
// with a defined value wins, incoming null never overwrites.
func mergeEntityData(existingJSON string, incoming map[string]any) (string, error) {
	existing := map[string]any{}
	if existingJSON != "" {
		if err := json.Unmarshal([]byte(existingJSON), &existing); err != nil {
			return "", fmt.Errorf("existing record is not a JSON object: %w", err)
		}
	}
	merged, err := json.Marshal(mergeShallow(existing, incoming))
	if err != nil {
		return "", err
	}
	return string(merged), nil
}

func formatSchemaErrors(errs []schema.ValidationError) string {
	if len(errs) == 0 {
		return "schema validation failed"
	}
	msg := errs[0].Message + " at " + errs[0].Path
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(errs)-1)
	}
	return "schema validation failed: " + msg
}
