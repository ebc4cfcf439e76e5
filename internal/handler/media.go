// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stanzacms/stanza/internal/media"
	"github.com/stanzacms/stanza/internal/model"
	"github.com/stanzacms/stanza/internal/store"
)

// mediaResponse decorates a media row with its public URLs.
type mediaResponse struct {
	model.Media
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

func (h *Handler) mediaToResponse(m model.Media) mediaResponse {
	resp := mediaResponse{
		Media: m,
		URL:   h.media.PublicURL(m.ID, m.Filename),
	}
	if m.Width.Valid {
		resp.ThumbnailURL = h.media.ThumbnailURL(m.ID, m.Filename)
	}
	return resp
}

// ListMedia handles GET /media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListMedia(r.Context())
	if err != nil {
		h.logger.Error("listing media", "error", err)
		writeInternalError(w, "failed to list media")
		return
	}

	out := make([]mediaResponse, 0, len(items))
	for _, m := range items {
		out = append(out, h.mediaToResponse(m))
	}
	writeList(w, out, len(out))
}

// UploadMedia handles POST /media with a multipart "file" part.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.MaxUploadSize); err != nil {
		writeBadRequest(w, "invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "missing file part", nil)
		return
	}
	defer func() { _ = file.Close() }()

	saved, err := h.media.Save(header.Filename, file)
	if err != nil {
		writeBadRequest(w, err.Error(), nil)
		return
	}

	row, err := h.queries.CreateMedia(r.Context(), store.CreateMediaParams{
		ID:        saved.ID,
		Filename:  saved.Filename,
		MimeType:  saved.MimeType,
		Size:      saved.Size,
		Width:     nullDim(saved.Width),
		Height:    nullDim(saved.Height),
		Alt:       r.FormValue("alt"),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// Roll back the stored file so the object store and the table
		// stay consistent.
		_ = h.media.Remove(saved.ID)
		h.logger.Error("recording upload", "filename", saved.Filename, "error", err)
		writeInternalError(w, "failed to record upload")
		return
	}

	writeCreated(w, h.mediaToResponse(row))
}

// DeleteMedia handles DELETE /media/{id}, removing the row and the
// stored files.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.queries.GetMediaByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeNotFound(w, "media not found")
			return
		}
		writeInternalError(w, "failed to load media")
		return
	}

	if err := h.queries.DeleteMedia(r.Context(), id); err != nil {
		h.logger.Error("deleting media", "id", id, "error", err)
		writeInternalError(w, "failed to delete media")
		return
	}
	if err := h.media.Remove(id); err != nil {
		h.logger.Warn("removing media files", "id", id, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func nullDim(v int) sql.NullInt64 {
	if v <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
