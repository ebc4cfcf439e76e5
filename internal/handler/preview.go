// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"net/http"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdownPreview converts untrusted markdown to sanitized HTML.
var (
	previewMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	previewPolicy   = bluemonday.UGCPolicy()
)

// previewRequest is the request body for markdown preview.
type previewRequest struct {
	Markdown string `json:"markdown"`
}

// PreviewMarkdown handles POST /preview/markdown, rendering a blog
// body or rich-text field the way the public site would.
func (h *Handler) PreviewMarkdown(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var buf bytes.Buffer
	if err := previewMarkdown.Convert([]byte(req.Markdown), &buf); err != nil {
		h.logger.Error("markdown conversion failed", "error", err)
		writeInternalError(w, "failed to render markdown")
		return
	}

	writeData(w, map[string]string{
		"html": previewPolicy.Sanitize(buf.String()),
	})
}
