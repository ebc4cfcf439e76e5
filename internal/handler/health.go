// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"
)

// Health handles GET /healthz. The database check is the only
// dependency probe; the cache degrades gracefully and is not a
// liveness concern.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		h.logger.Error("health check database ping failed", "error", err)
	}

	writeJSON(w, code, map[string]any{
		"status": status,
		"time":   time.Now().UTC(),
	})
}
