// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media provides the local binary object store: uploaded files
// live under a single uploads directory keyed by generated id, with
// image metadata extraction and thumbnail generation.
package media

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload limits
const MaxUploadSize = 20 * 1024 * 1024 // 20MB

// AllowedMimeTypes defines the MIME types that can be uploaded.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"video/mp4":       true,
}

// SavedFile describes a stored upload.
type SavedFile struct {
	ID       string
	Filename string
	MimeType string
	Size     int64
	Width    int
	Height   int // zero for non-images
}

// Store is a local-filesystem object store.
type Store struct {
	dir       string
	publicURL string
	logger    *slog.Logger
}

// NewStore creates the uploads directory if needed.
func NewStore(dir, publicURL string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &Store{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}, nil
}

// Save stores one upload. Images are re-encoded with their EXIF
// orientation applied and get a thumbnail; other allowed types are
// stored verbatim.
func (s *Store) Save(filename string, r io.Reader) (*SavedFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > MaxUploadSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", MaxUploadSize)
	}

	mimeType := detectMimeType(data)
	if !AllowedMimeTypes[mimeType] {
		return nil, fmt.Errorf("file type %s is not allowed", mimeType)
	}

	saved := &SavedFile{
		ID:       uuid.NewString(),
		Filename: sanitizeFilename(filename),
		MimeType: mimeType,
		Size:     int64(len(data)),
	}

	if isImage(mimeType) {
		processed, err := processImage(data)
		if err != nil {
			return nil, fmt.Errorf("processing image: %w", err)
		}
		saved.MimeType = processed.mimeType
		saved.Size = int64(len(processed.data))
		saved.Width = processed.width
		saved.Height = processed.height
		data = processed.data

		if err := s.writeFile(saved.ID, thumbnailName(saved.Filename), processed.thumbnail); err != nil {
			// A missing thumbnail is not fatal for the upload.
			s.logger.Warn("saving thumbnail failed", "id", saved.ID, "error", err)
		}
	}

	if err := s.writeFile(saved.ID, saved.Filename, data); err != nil {
		return nil, err
	}
	return saved, nil
}

// PublicURL returns the public URL for a stored file.
func (s *Store) PublicURL(id, filename string) string {
	return fmt.Sprintf("%s/uploads/%s/%s", s.publicURL, id, filepath.Base(filename))
}

// ThumbnailURL returns the public URL for an image's thumbnail.
func (s *Store) ThumbnailURL(id, filename string) string {
	return s.PublicURL(id, thumbnailName(filename))
}

// Remove deletes a stored file and its thumbnail.
func (s *Store) Remove(id string) error {
	dir := filepath.Join(s.dir, id)
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", id, err)
	}
	return nil
}

// Dir returns the uploads directory, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) writeFile(id, filename string, data []byte) error {
	dir := filepath.Join(s.dir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating media dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// sanitizeFilename strips path components and awkward characters.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

func thumbnailName(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	// Thumbnails are always JPEG.
	return base + "_thumb.jpg"
}

func detectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}

func isImage(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
