// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/schema"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/util"
)

// sectionRequest is the request body for creating or updating a section.
type sectionRequest struct {
	PageType     string         `json:"page_type"`
	EntityID     *string        `json:"entity_id,omitempty"`
	SectionType  string         `json:"section_type"`
	Title        *string        `json:"title,omitempty"`
	Subtitle     *string        `json:"subtitle,omitempty"`
	Content      map[string]any `json:"content,omitempty"`
	DisplayOrder *int64         `json:"display_order,omitempty"`
	IsActive     *bool          `json:"is_active,omitempty"`
}

// bulkDeleteRequest is the request body for bulk section deletion.
type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// ListSections handles GET /sections/{pageType}. The optional
// entity_id query scopes per-record pages.
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	pageType := chi.URLParam(r, "pageType")
	var entityID *string
	if v := r.URL.Query().Get("entity_id"); v != "" {
		entityID = &v
	}

	var (
		sections []model.PageSection
		err      error
	)
	if h.content != nil {
		sections, err = h.content.SectionsForPage(r.Context(), pageType, entityID)
	} else {
		sections, err = h.queries.ListSectionsForPage(r.Context(), pageType, util.NullStringFromPtr(entityID))
	}
	if err != nil {
		h.logger.Error("listing sections", "page_type", pageType, "error", err)
		writeInternalError(w, "failed to list sections")
		return
	}
	writeList(w, sections, len(sections))
}

// CreateSection handles POST /sections. Content is validated against
// the section type's schema before the write.
func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PageType == "" || req.SectionType == "" {
		writeBadRequest(w, "page_type and section_type are required", nil)
		return
	}

	jsonSchema, ok := h.sectionJSONSchema(w, r, req.SectionType)
	if !ok {
		return
	}
	if !h.validateSectionContent(w, req.Content, jsonSchema) {
		return
	}

	content, err := json.Marshal(req.Content)
	if err != nil || req.Content == nil {
		content = []byte("{}")
	}

	now := time.Now().UTC()
	section, err := h.queries.CreateSection(r.Context(), store.CreateSectionParams{
		PageType:     req.PageType,
		EntityID:     util.NullStringFromPtr(req.EntityID),
		SectionType:  req.SectionType,
		Title:        util.NullStringFromPtr(req.Title),
		Subtitle:     util.NullStringFromPtr(req.Subtitle),
		Content:      string(content),
		DisplayOrder: int64OrZero(req.DisplayOrder),
		IsActive:     boolOrTrue(req.IsActive),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		h.logger.Error("creating section", "page_type", req.PageType, "error", err)
		writeInternalError(w, "failed to create section")
		return
	}

	h.invalidateSections(r, req.PageType)
	writeCreated(w, section)
}

// UpdateSection handles PUT /sections/{id}. Absent fields keep their
// current values; content is replaced wholesale after validation.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.queries.GetSectionByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeNotFound(w, "section not found")
		return
	}
	if err != nil {
		writeInternalError(w, "failed to load section")
		return
	}

	var req sectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	params := store.UpdateSectionParams{
		ID:           existing.ID,
		SectionType:  existing.SectionType,
		Title:        existing.Title,
		Subtitle:     existing.Subtitle,
		Content:      existing.Content,
		DisplayOrder: existing.DisplayOrder,
		IsActive:     existing.IsActive,
		UpdatedAt:    time.Now().UTC(),
	}
	if req.Title != nil {
		params.Title = util.NullStringFromPtr(req.Title)
	}
	if req.Subtitle != nil {
		params.Subtitle = util.NullStringFromPtr(req.Subtitle)
	}
	if req.DisplayOrder != nil {
		params.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}
	if req.Content != nil {
		jsonSchema, ok := h.sectionJSONSchema(w, r, existing.SectionType)
		if !ok {
			return
		}
		if !h.validateSectionContent(w, req.Content, jsonSchema) {
			return
		}
		content, err := json.Marshal(req.Content)
		if err == nil {
			params.Content = string(content)
		}
	}

	section, err := h.queries.UpdateSection(r.Context(), params)
	if err != nil {
		h.logger.Error("updating section", "id", id, "error", err)
		writeInternalError(w, "failed to update section")
		return
	}

	h.invalidateSections(r, existing.PageType)
	writeData(w, section)
}

// DeleteSection handles DELETE /sections/{id}.
func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.queries.GetSectionByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeNotFound(w, "section not found")
		return
	}
	if err != nil {
		writeInternalError(w, "failed to load section")
		return
	}

	if err := h.queries.DeleteSection(r.Context(), id); err != nil {
		h.logger.Error("deleting section", "id", id, "error", err)
		writeInternalError(w, "failed to delete section")
		return
	}

	h.invalidateSections(r, existing.PageType)
	w.WriteHeader(http.StatusNoContent)
}

// BulkDeleteSections handles POST /sections/bulk-delete. Deletion is
// chunked with per-record fallback; partial failure reports per-id
// errors rather than aborting.
func (h *Handler) BulkDeleteSections(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeBadRequest(w, "ids is required", nil)
		return
	}

	result := h.queries.BulkDeleteSections(r.Context(), req.IDs)
	if h.content != nil {
		// Page types of the deleted rows are unknown at this point;
		// drop every section entry.
		h.content.InvalidateSections(r.Context(), "")
	}
	writeData(w, result)
}

func (h *Handler) invalidateSections(r *http.Request, pageType string) {
	if h.content != nil {
		h.content.InvalidateSections(r.Context(), pageType)
	}
}

// sectionJSONSchema loads a section type by name and converts its
// declarative description to a JSON Schema. Unknown types are a client
// error; a malformed stored description degrades to permissive.
func (h *Handler) sectionJSONSchema(w http.ResponseWriter, r *http.Request, name string) (map[string]any, bool) {
	st, err := h.queries.GetSectionTypeByName(r.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		writeBadRequest(w, "unknown section_type", map[string]string{"section_type": name})
		return nil, false
	}
	if err != nil {
		writeInternalError(w, "failed to load section type")
		return nil, false
	}
	return schema.ConvertToJSONSchema(decodeSectionSchema(st)), true
}

// decodeSectionSchema parses a section type's stored field list and
// items description. Malformed JSON yields nil, which converts to the
// permissive schema.
func decodeSectionSchema(st model.SectionType) *schema.SectionSchema {
	var fields []string
	if err := json.Unmarshal([]byte(st.Fields), &fields); err != nil {
		return nil
	}
	items := map[string]string{}
	if st.ItemsSchema != "" {
		if err := json.Unmarshal([]byte(st.ItemsSchema), &items); err != nil {
			return nil
		}
	}
	return &schema.SectionSchema{Fields: fields, ItemsSchema: items}
}

func (h *Handler) validateSectionContent(w http.ResponseWriter, content map[string]any, jsonSchema map[string]any) bool {
	if content == nil {
		content = map[string]any{}
	}
	result := schema.ValidateJSON(content, jsonSchema)
	if !result.Valid {
		writeUnprocessable(w, "section content failed validation", result.Errors)
		return false
	}
	return true
}
