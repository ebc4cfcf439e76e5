// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the JSON admin API for the content service.
package handler

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/stanzacms/stanza/internal/cache"
	"github.com/stanzacms/stanza/internal/media"
	"github.com/stanzacms/stanza/internal/schema"
	"github.com/stanzacms/stanza/internal/store"
	"github.com/stanzacms/stanza/internal/transfer"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db       *sql.DB
	queries  *store.Queries
	registry *schema.Registry
	importer *transfer.Importer
	exporter *transfer.Exporter
	content  *cache.ContentCache
	media    *media.Store
	logger   *slog.Logger
}

// NewHandler creates the API handler. The content cache may be nil, in
// which case reads go straight to the store and imports skip
// invalidation.
func NewHandler(db *sql.DB, registry *schema.Registry, content *cache.ContentCache, mediaStore *media.Store, logger *slog.Logger) *Handler {
	queries := store.New(db)
	importer := transfer.NewImporter(queries, registry, logger)
	if content != nil {
		importer.SetInvalidator(content)
	}
	return &Handler{
		db:       db,
		queries:  queries,
		registry: registry,
		importer: importer,
		exporter: transfer.NewExporter(queries, logger),
		content:  content,
		media:    mediaStore,
		logger:   logger,
	}
}

// Routes mounts all API routes. Authentication and rate limiting are
// applied by the caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", h.Health)

	r.Route("/pages", func(r chi.Router) {
		r.Get("/", h.ListPages)
		r.Post("/", h.CreatePage)
		r.Get("/{slug}", h.GetPage)
		r.Put("/{slug}", h.UpdatePage)
		r.Delete("/{slug}", h.DeletePage)
	})

	r.Route("/menus", func(r chi.Router) {
		r.Get("/", h.ListMenuLocations)
		r.Get("/{location}", h.GetMenuTree)
		r.Post("/items", h.CreateMenuItem)
		r.Delete("/items/{id}", h.DeleteMenuItem)
	})

	r.Route("/sections", func(r chi.Router) {
		r.Get("/{pageType}", h.ListSections)
		r.Post("/", h.CreateSection)
		r.Put("/{id}", h.UpdateSection)
		r.Delete("/{id}", h.DeleteSection)
		r.Post("/bulk-delete", h.BulkDeleteSections)
	})

	r.Route("/entities", func(r chi.Router) {
		r.Get("/{entityType}", h.ListEntities)
		r.Post("/{entityType}/bulk-delete", h.BulkDeleteEntities)
		r.Delete("/{entityType}/{id}", h.DeleteEntity)
	})

	r.Route("/schemas", func(r chi.Router) {
		r.Get("/", h.ListSchemas)
		r.Get("/{entityType}", h.GetSchema)
		r.Get("/sections/{name}", h.GetSectionSchema)
	})

	r.Route("/import", func(r chi.Router) {
		r.Post("/entities/{entityType}", h.ImportEntities)
		r.Post("/pages-menu", h.ImportPagesMenu)
		r.Post("/sections", h.ImportSections)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/entities/{entityType}", h.ExportEntities)
		r.Get("/pages-menu", h.ExportPagesMenu)
		r.Get("/sections/{pageType}", h.ExportSections)
	})

	r.Post("/preview/markdown", h.PreviewMarkdown)
	r.Get("/events", h.ListEvents)

	if h.media != nil {
		r.Route("/media", func(r chi.Router) {
			r.Get("/", h.ListMedia)
			r.Post("/", h.UploadMedia)
			r.Delete("/{id}", h.DeleteMedia)
		})
	}

	return r
}
