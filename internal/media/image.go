// Copyright (c) 2026 Stanza CMS Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

const (
	thumbnailMaxDim = 320
	encodeQuality   = 95
	thumbQuality    = 80
)

// processedImage is the result of decoding, orienting and re-encoding
// an uploaded image.
type processedImage struct {
	data      []byte
	thumbnail []byte
	mimeType  string
	width     int
	height    int
}

// processImage decodes an upload, applies its EXIF orientation,
// re-encodes it without metadata and renders a thumbnail. WebP input is
// re-encoded as JPEG; pure Go has no WebP encoder.
func processImage(data []byte) (*processedImage, error) {
	format := detectImageFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	encoded, err := encodeImage(img, format, encodeQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	thumb := imaging.Fit(img, thumbnailMaxDim, thumbnailMaxDim, imaging.Lanczos)
	thumbData, err := encodeImage(thumb, "jpeg", thumbQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}

	return &processedImage{
		data:      encoded,
		thumbnail: thumbData,
		mimeType:  formatToMimeType(format),
		width:     bounds.Dx(),
		height:    bounds.Dy(),
	}, nil
}

// readExifOrientation reads the EXIF orientation tag, defaulting to
// 1 (normal) when absent or unreadable.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation applies an EXIF orientation transform.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		// jpeg, webp and anything else encode to JPEG.
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// detectImageFormat identifies the decodable formats from raw bytes.
// TIFF is rejected (CVE-2023-36308 in disintegration/imaging).
func detectImageFormat(data []byte) string {
	contentType := detectMimeType(data)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
