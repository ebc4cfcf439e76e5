// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stanzacms/stanza/internal/model"
)

// entityResponse flattens a stored entity record for API responses.
type entityResponse struct {
	ID         string           `json:"id"`
	EntityType model.EntityType `json:"entity_type"`
	Data       map[string]any   `json:"data"`
}

// ListEntities handles GET /entities/{entityType}.
func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entityType := model.EntityType(chi.URLParam(r, "entityType"))
	if !model.IsValidEntityType(entityType) {
		writeBadRequest(w, "unknown entity type", map[string]string{"entity_type": string(entityType)})
		return
	}

	entities, err := h.queries.ListEntitiesByType(r.Context(), entityType)
	if err != nil {
		h.logger.Error("listing entities", "entity_type", entityType, "error", err)
		writeInternalError(w, "failed to list entities")
		return
	}

	out := make([]entityResponse, 0, len(entities))
	for _, e := range entities {
		data := map[string]any{}
		_ = json.Unmarshal([]byte(e.Data), &data)
		out = append(out, entityResponse{ID: e.ID, EntityType: e.EntityType, Data: data})
	}
	writeList(w, out, len(out))
}

// BulkDeleteEntities handles POST /entities/{entityType}/bulk-delete.
// Deletion is chunked in the store with per-record fallback, so a bad
// id does not sink the rest.
func (h *Handler) BulkDeleteEntities(w http.ResponseWriter, r *http.Request) {
	entityType := model.EntityType(chi.URLParam(r, "entityType"))
	if !model.IsValidEntityType(entityType) {
		writeBadRequest(w, "unknown entity type", map[string]string{"entity_type": string(entityType)})
		return
	}

	var req bulkDeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeBadRequest(w, "ids is required", nil)
		return
	}

	result := h.queries.BulkDeleteEntities(r.Context(), req.IDs)
	writeData(w, result)
}

// DeleteEntity handles DELETE /entities/{entityType}/{id}.
func (h *Handler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	entityType := model.EntityType(chi.URLParam(r, "entityType"))
	id := chi.URLParam(r, "id")

	entity, err := h.queries.GetEntityByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeNotFound(w, "entity not found")
		return
	}
	if err != nil {
		writeInternalError(w, "failed to load entity")
		return
	}
	if entity.EntityType != entityType {
		writeNotFound(w, "entity not found")
		return
	}

	if err := h.queries.DeleteEntity(r.Context(), id); err != nil {
		h.logger.Error("deleting entity", "id", id, "error", err)
		writeInternalError(w, "failed to delete entity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
