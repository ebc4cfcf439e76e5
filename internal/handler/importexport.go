// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/transfer"
)

const maxImportBodyBytes int64 = 50 << 20 // 50 MB

// importOptionsFromQuery builds ImportOptions from query parameters,
// falling back to the safe defaults.
func importOptionsFromQuery(r *http.Request) (transfer.ImportOptions, error) {
	opts := transfer.DefaultImportOptions()

	if v := r.URL.Query().Get("conflict_strategy"); v != "" {
		s := transfer.ConflictStrategy(v)
		if !s.IsValid() {
			return opts, fmt.Errorf("unknown conflict_strategy %q", v)
		}
		opts.ConflictStrategy = s
	}
	if v := r.URL.Query().Get("reorder_strategy"); v != "" {
		s := transfer.ReorderStrategy(v)
		if !s.IsValid() {
			return opts, fmt.Errorf("unknown reorder_strategy %q", v)
		}
		opts.ReorderStrategy = s
	}
	if v := r.URL.Query().Get("allow_create"); v == "false" {
		opts.AllowCreate = false
	}

	return opts, nil
}

func validateOnly(r *http.Request) bool {
	return r.URL.Query().Get("validate_only") == "true"
}

// ImportEntities handles POST /import/entities/{entityType}. The body
// is a generic entity envelope.
func (h *Handler) ImportEntities(w http.ResponseWriter, r *http.Request) {
	entityType := model.EntityType(chi.URLParam(r, "entityType"))
	if !model.IsValidEntityType(entityType) {
		writeBadRequest(w, "unknown entity type", map[string]string{"entity_type": string(entityType)})
		return
	}

	opts, err := importOptionsFromQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error(), nil)
		return
	}

	env, err := transfer.ParseEntityEnvelope(http.MaxBytesReader(w, r.Body, maxImportBodyBytes))
	if err != nil {
		writeBadRequest(w, err.Error(), nil)
		return
	}
	if err := transfer.ValidateEntityEnvelope(env, entityType); err != nil {
		writeUnprocessable(w, err.Error(), nil)
		return
	}

	if validateOnly(r) {
		writeData(w, map[string]any{"valid": true, "total": len(env.Entities)})
		return
	}

	result, err := h.importer.ImportEntities(r.Context(), env, opts)
	if err != nil {
		h.logger.Error("entity import failed", "entity_type", entityType, "error", err)
		writeInternalError(w, "import failed")
		return
	}
	writeData(w, result)
}

// ImportPagesMenu handles POST /import/pages-menu. Validation always
// runs first; a validate_only request stops after it.
func (h *Handler) ImportPagesMenu(w http.ResponseWriter, r *http.Request) {
	opts, err := importOptionsFromQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error(), nil)
		return
	}

	env, err := transfer.ParsePagesMenuEnvelope(http.MaxBytesReader(w, r.Body, maxImportBodyBytes))
	if err != nil {
		writeBadRequest(w, err.Error(), nil)
		return
	}

	if validateOnly(r) {
		validation := transfer.ValidatePagesMenu(env)
		writeData(w, validation)
		return
	}

	result, validation, err := h.importer.ImportPagesMenu(r.Context(), env, opts)
	if validation != nil && !validation.Valid {
		writeUnprocessable(w, "import validation failed", validation)
		return
	}
	if err != nil {
		h.logger.Error("pages+menu import failed", "error", err)
		writeInternalError(w, "import failed")
		return
	}
	writeData(w, result)
}

// ImportSections handles POST /import/sections.
func (h *Handler) ImportSections(w http.ResponseWriter, r *http.Request) {
	opts, err := importOptionsFromQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error(), nil)
		return
	}

	env, err := transfer.ParseSectionsEnvelope(http.MaxBytesReader(w, r.Body, maxImportBodyBytes))
	if err != nil {
		writeBadRequest(w, err.Error(), nil)
		return
	}

	if validateOnly(r) {
		sectionTypes, err := h.queries.ListSectionTypes(r.Context())
		if err != nil {
			writeInternalError(w, "failed to load section types")
			return
		}
		writeData(w, transfer.ValidateSections(env, sectionTypes))
		return
	}

	result, validation, err := h.importer.ImportSections(r.Context(), env, opts)
	if validation != nil && !validation.Valid {
		writeUnprocessable(w, "import validation failed", validation)
		return
	}
	if err != nil {
		h.logger.Error("sections import failed", "page_type", env.PageType, "error", err)
		writeInternalError(w, "import failed")
		return
	}
	writeData(w, result)
}

// ExportEntities handles GET /export/entities/{entityType}, returning
// a downloadable envelope.
func (h *Handler) ExportEntities(w http.ResponseWriter, r *http.Request) {
	entityType := model.EntityType(chi.URLParam(r, "entityType"))
	if !model.IsValidEntityType(entityType) {
		writeBadRequest(w, "unknown entity type", map[string]string{"entity_type": string(entityType)})
		return
	}

	var (
		env *transfer.EntityEnvelope
		err error
	)
	if id := r.URL.Query().Get("id"); id != "" {
		env, err = h.exporter.ExportEntity(r.Context(), entityType, id)
	} else {
		env, err = h.exporter.ExportEntities(r.Context(), entityType)
	}
	if err != nil {
		h.logger.Error("entity export failed", "entity_type", entityType, "error", err)
		writeInternalError(w, "export failed")
		return
	}

	h.writeEnvelopeDownload(w, env, string(entityType), "")
}

// ExportPagesMenu handles GET /export/pages-menu.
func (h *Handler) ExportPagesMenu(w http.ResponseWriter, r *http.Request) {
	env, err := h.exporter.ExportPagesMenu(r.Context())
	if err != nil {
		h.logger.Error("pages+menu export failed", "error", err)
		writeInternalError(w, "export failed")
		return
	}
	h.writeEnvelopeDownload(w, env, transfer.EntityTypePagesAndMenu, "")
}

// ExportSections handles GET /export/sections/{pageType}.
func (h *Handler) ExportSections(w http.ResponseWriter, r *http.Request) {
	pageType := chi.URLParam(r, "pageType")
	var entityID *string
	if v := r.URL.Query().Get("entity_id"); v != "" {
		entityID = &v
	}

	env, err := h.exporter.ExportSections(r.Context(), pageType, entityID)
	if err != nil {
		h.logger.Error("sections export failed", "page_type", pageType, "error", err)
		writeInternalError(w, "export failed")
		return
	}
	h.writeEnvelopeDownload(w, env, transfer.EntityTypePageSection, pageType)
}

func (h *Handler) writeEnvelopeDownload(w http.ResponseWriter, envelope any, entityType, name string) {
	filename := transfer.ExportFilename(entityType, name, time.Now().UTC())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := transfer.WriteJSON(w, envelope); err != nil {
		h.logger.Error("writing export response", "error", err)
	}
}
