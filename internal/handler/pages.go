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
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/util"
)

// pageResponse represents a page in API responses.
type pageResponse struct {
	ID              string         `json:"id"`
	Slug            string         `json:"slug"`
	Title           string         `json:"title"`
	ParentID        *string        `json:"parent_id,omitempty"`
	DisplayOrder    int64          `json:"display_order"`
	IsActive        bool           `json:"is_active"`
	ShowInNav       bool           `json:"show_in_nav"`
	Content         map[string]any `json:"content"`
	Description     string         `json:"description,omitempty"`
	MetaTitle       string         `json:"meta_title,omitempty"`
	MetaDescription string         `json:"meta_description,omitempty"`
	MetaKeywords    string         `json:"meta_keywords,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func pageToResponse(p model.Page) pageResponse {
	content := map[string]any{}
	_ = json.Unmarshal([]byte(p.Content), &content)
	return pageResponse{
		ID:              p.ID,
		Slug:            p.Slug,
		Title:           p.Title,
		ParentID:        util.StringPtrFromNull(p.ParentID),
		DisplayOrder:    p.DisplayOrder,
		IsActive:        p.IsActive,
		ShowInNav:       p.ShowInNav,
		Content:         content,
		Description:     p.Description,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		MetaKeywords:    p.MetaKeywords,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// pageRequest is the request body for creating or updating a page.
type pageRequest struct {
	Slug            string         `json:"slug"`
	Title           string         `json:"title"`
	ParentID        *string        `json:"parent_id,omitempty"`
	DisplayOrder    *int64         `json:"display_order,omitempty"`
	IsActive        *bool          `json:"is_active,omitempty"`
	ShowInNav       *bool          `json:"show_in_nav,omitempty"`
	Content         map[string]any `json:"content,omitempty"`
	Description     string         `json:"description,omitempty"`
	MetaTitle       string         `json:"meta_title,omitempty"`
	MetaDescription string         `json:"meta_description,omitempty"`
	MetaKeywords    string         `json:"meta_keywords,omitempty"`
}

// ListPages handles GET /pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.listPages(r)
	if err != nil {
		h.logger.Error("listing pages", "error", err)
		writeInternalError(w, "failed to list pages")
		return
	}

	out := make([]pageResponse, 0, len(pages))
	for _, p := range pages {
		out = append(out, pageToResponse(p))
	}
	writeList(w, out, len(out))
}

func (h *Handler) listPages(r *http.Request) ([]model.Page, error) {
	ctx := r.Context()
	if r.URL.Query().Get("nav") == "true" {
		if h.content != nil {
			return h.content.NavPages(ctx)
		}
		return h.queries.ListNavPages(ctx)
	}
	if h.content != nil {
		return h.content.Pages(ctx)
	}
	return h.queries.ListPages(ctx)
}

// GetPage handles GET /pages/{slug}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var (
		page model.Page
		err  error
	)
	if h.content != nil {
		page, err = h.content.PageBySlug(r.Context(), slug)
	} else {
		page, err = h.queries.GetPageBySlug(r.Context(), slug)
	}
	if errors.Is(err, sql.ErrNoRows) {
		writeNotFound(w, "page not found")
		return
	}
	if err != nil {
		h.logger.Error("loading page", "slug", slug, "error", err)
		writeInternalError(w, "failed to load page")
		return
	}
	writeData(w, pageToResponse(page))
}

// CreatePage handles POST /pages.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeBadRequest(w, "title is required", nil)
		return
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Title)
	}
	if !util.IsValidSlug(req.Slug) {
		writeBadRequest(w, "invalid slug", nil)
		return
	}

	content, err := json.Marshal(req.Content)
	if err != nil || req.Content == nil {
		content = []byte("{}")
	}

	now := time.Now().UTC()
	page, err := h.queries.CreatePage(r.Context(), store.CreatePageParams{
		Slug:            req.Slug,
		Title:           req.Title,
		ParentID:        util.NullStringFromPtr(req.ParentID),
		DisplayOrder:    int64OrZero(req.DisplayOrder),
		IsActive:        boolOrTrue(req.IsActive),
		ShowInNav:       boolOrTrue(req.ShowInNav),
		Content:         string(content),
		Description:     req.Description,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		h.logger.Error("creating page", "slug", req.Slug, "error", err)
		writeError(w, http.StatusConflict, "conflict", "failed to create page", nil)
		return
	}

	h.invalidatePages(r)
	writeCreated(w, pageToResponse(page))
}

// UpdatePage handles PUT /pages/{slug}. Absent fields keep their
// current values; parent_id is always taken from the request so a page
// can be re-parented to the top level with an explicit null.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	existing, err := h.queries.GetPageBySlug(r.Context(), slug)
	if errors.Is(err, sql.ErrNoRows) {
		writeNotFound(w, "page not found")
		return
	}
	if err != nil {
		writeInternalError(w, "failed to load page")
		return
	}

	var req pageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	params := store.UpdatePageParams{
		ID:              existing.ID,
		Slug:            existing.Slug,
		Title:           existing.Title,
		ParentID:        util.NullStringFromPtr(req.ParentID),
		DisplayOrder:    existing.DisplayOrder,
		IsActive:        existing.IsActive,
		ShowInNav:       existing.ShowInNav,
		Content:         existing.Content,
		Description:     existing.Description,
		MetaTitle:       existing.MetaTitle,
		MetaDescription: existing.MetaDescription,
		MetaKeywords:    existing.MetaKeywords,
		UpdatedAt:       time.Now().UTC(),
	}
	if req.Slug != "" {
		if !util.IsValidSlug(req.Slug) {
			writeBadRequest(w, "invalid slug", nil)
			return
		}
		params.Slug = req.Slug
	}
	if req.Title != "" {
		params.Title = req.Title
	}
	if req.DisplayOrder != nil {
		params.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}
	if req.ShowInNav != nil {
		params.ShowInNav = *req.ShowInNav
	}
	if req.Content != nil {
		content, err := json.Marshal(req.Content)
		if err == nil {
			params.Content = string(content)
		}
	}
	if req.Description != "" {
		params.Description = req.Description
	}
	if req.MetaTitle != "" {
		params.MetaTitle = req.MetaTitle
	}
	if req.MetaDescription != "" {
		params.MetaDescription = req.MetaDescription
	}
	if req.MetaKeywords != "" {
		params.MetaKeywords = req.MetaKeywords
	}

	page, err := h.queries.UpdatePage(r.Context(), params)
	if err != nil {
		h.logger.Error("updating page", "slug", slug, "error", err)
		writeInternalError(w, "failed to update page")
		return
	}

	h.invalidatePages(r)
	writeData(w, pageToResponse(page))
}

// DeletePage handles DELETE /pages/{slug}. Children are re-rooted to
// the top level.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	page, err := h.queries.GetPageBySlug(r.Context(), slug)
	if errors.Is(err, sql.ErrNoRows) {
		writeNotFound(w, "page not found")
		return
	}
	if err != nil {
		writeInternalError(w, "failed to load page")
		return
	}

	if err := h.queries.DeletePage(r.Context(), page.ID); err != nil {
		h.logger.Error("deleting page", "slug", slug, "error", err)
		writeInternalError(w, "failed to delete page")
		return
	}

	h.invalidatePages(r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invalidatePages(r *http.Request) {
	if h.content != nil {
		h.content.InvalidatePages(r.Context())
	}
}

func int64OrZero(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func boolOrTrue(p *bool) bool {
	if p == nil {
		return true
	}
	return *p
}
