// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanzacms/stanza/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "http://localhost:8080/", testutil.TestLoggerSilent())
	require.NoError(t, err)
	return s
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveImageExtractsDimensions(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.Save("photo.png", bytes.NewReader(testPNG(t, 640, 480)))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "photo.png", saved.Filename)
	assert.Equal(t, "image/png", saved.MimeType)
	assert.Equal(t, 640, saved.Width)
	assert.Equal(t, 480, saved.Height)

	_, err = os.Stat(filepath.Join(s.Dir(), saved.ID, "photo.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(s.Dir(), saved.ID, "photo_thumb.jpg"))
	assert.NoError(t, err, "thumbnail written next to original")
}

func TestSaveRejectsDisallowedType(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save("script.html", bytes.NewReader([]byte("<html><script>x</script></html>")))
	assert.Error(t, err)
}

func TestSaveSanitizesFilename(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.Save("../../etc/pass wd.png", bytes.NewReader(testPNG(t, 10, 10)))
	require.NoError(t, err)
	assert.Equal(t, "pass-wd.png", saved.Filename)
	assert.NotContains(t, saved.Filename, "..")
}

func TestPublicURLs(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "http://localhost:8080/uploads/abc/photo.png", s.PublicURL("abc", "photo.png"))
	assert.Equal(t, "http://localhost:8080/uploads/abc/photo_thumb.jpg", s.ThumbnailURL("abc", "photo.png"))
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.Save("photo.png", bytes.NewReader(testPNG(t, 10, 10)))
	require.NoError(t, err)

	require.NoError(t, s.Remove(saved.ID))
	_, err = os.Stat(filepath.Join(s.Dir(), saved.ID))
	assert.True(t, os.IsNotExist(err))

	// Removing an absent id is not an error.
	assert.NoError(t, s.Remove("missing"))
}

func TestThumbnailDownscales(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.Save("big.png", bytes.NewReader(testPNG(t, 1600, 800)))
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(s.Dir(), saved.ID, "big_thumb.jpg"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, 320)
	assert.LessOrEqual(t, cfg.Height, 320)
}
