// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/schema"
)

// ListSchemas handles GET /schemas, returning every registered entity
// schema with its example document.
func (h *Handler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas := h.registry.GetAllEntitySchemas()
	writeList(w, schemas, len(schemas))
}

// GetSchema handles GET /schemas/{entityType}.
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	entityType := model.EntityType(chi.URLParam(r, "entityType"))
	s := h.registry.GetEntitySchema(entityType)
	if s == nil {
		writeNotFound(w, "no schema registered for entity type")
		return
	}
	writeData(w, s)
}

// GetSectionSchema handles GET /schemas/sections/{name}: the section
// type's declarative description converted to a JSON Schema, paired
// with a generated example document.
func (h *Handler) GetSectionSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	st, err := h.queries.GetSectionTypeByName(r.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		writeNotFound(w, "section type not found")
		return
	}
	if err != nil {
		writeInternalError(w, "failed to load section type")
		return
	}

	def := schema.GetSchemaDefinition(decodeSectionSchema(st))
	writeData(w, map[string]any{
		"name":        st.Name,
		"description": st.Description,
		"schema":      def.Schema,
		"example":     def.Example,
	})
}
