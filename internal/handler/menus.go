// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/util"
)

// menuItemRequest is the request body for creating a menu item.
type menuItemRequest struct {
	MenuLocation string  `json:"menu_location"`
	Label        string  `json:"label"`
	URL          *string `json:"url,omitempty"`
	PageID       *string `json:"page_id,omitempty"`
	ParentID     *string `json:"parent_id,omitempty"`
	DisplayOrder *int64  `json:"display_order,omitempty"`
	Target       string  `json:"target,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// ListMenuLocations handles GET /menus.
func (h *Handler) ListMenuLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.queries.ListMenuLocations(r.Context())
	if err != nil {
		h.logger.Error("listing menu locations", "error", err)
		writeInternalError(w, "failed to list menu locations")
		return
	}
	writeList(w, locations, len(locations))
}

// GetMenuTree handles GET /menus/{location}, returning the parent/child
// tree for one location.
func (h *Handler) GetMenuTree(w http.ResponseWriter, r *http.Request) {
	location := chi.URLParam(r, "location")

	var (
		tree []model.MenuItemWithChildren
		err  error
	)
	if h.content != nil {
		tree, err = h.content.MenuTree(r.Context(), location)
	} else {
		var items []model.MenuItem
		items, err = h.queries.ListMenuItemsByLocation(r.Context(), location)
		if err == nil {
			tree = model.BuildMenuTree(items)
		}
	}
	if err != nil {
		h.logger.Error("loading menu tree", "location", location, "error", err)
		writeInternalError(w, "failed to load menu")
		return
	}
	writeData(w, tree)
}

// CreateMenuItem handles POST /menus/items.
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Label == "" || req.MenuLocation == "" {
		writeBadRequest(w, "label and menu_location are required", nil)
		return
	}
	if req.Target != "" && !model.IsValidTarget(req.Target) {
		writeBadRequest(w, "invalid target", nil)
		return
	}

	now := time.Now().UTC()
	item, err := h.queries.CreateMenuItem(r.Context(), store.CreateMenuItemParams{
		MenuLocation: req.MenuLocation,
		Label:        req.Label,
		URL:          util.NullStringFromPtr(req.URL),
		PageID:       util.NullStringFromPtr(req.PageID),
		ParentID:     util.NullStringFromPtr(req.ParentID),
		DisplayOrder: int64OrZero(req.DisplayOrder),
		Target:       req.Target,
		IsActive:     boolOrTrue(req.IsActive),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		h.logger.Error("creating menu item", "label", req.Label, "error", err)
		writeInternalError(w, "failed to create menu item")
		return
	}

	if h.content != nil {
		h.content.InvalidateMenus(r.Context())
	}
	writeCreated(w, item)
}

// DeleteMenuItem handles DELETE /menus/items/{id}.
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.queries.GetMenuItemByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeNotFound(w, "menu item not found")
			return
		}
		writeInternalError(w, "failed to load menu item")
		return
	}

	if err := h.queries.DeleteMenuItem(r.Context(), id); err != nil {
		h.logger.Error("deleting menu item", "id", id, "error", err)
		writeInternalError(w, "failed to delete menu item")
		return
	}

	if h.content != nil {
		h.content.InvalidateMenus(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}
