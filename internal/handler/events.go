// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"
)

// ListEvents handles GET /events, newest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := int64(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 || n > 500 {
			writeBadRequest(w, "limit must be between 1 and 500", nil)
			return
		}
		limit = n
	}

	events, err := h.queries.ListRecentEvents(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing events", "error", err)
		writeInternalError(w, "failed to list events")
		return
	}
	writeList(w, events, len(events))
}
