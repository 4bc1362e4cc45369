// Package media prepares screenshots for upload: decode, uniform downscale,
// lossy re-encode.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"path"
	"strings"

	"github.com/nfnt/resize"

	_ "image/png" // screenshot sources are png or jpeg
)

const (
	DefaultMaxWidth = 1280
	DefaultQuality  = 65
)

// Downscale decodes the image, scales it down by a uniform factor so the
// width does not exceed maxWidth (never upscaling), and re-encodes it as
// JPEG at the given quality. A maxWidth or quality of zero selects the
// default. Decode or encode failure fails the call; no fallback format is
// attempted.
func Downscale(r io.Reader, maxWidth uint, quality int) ([]byte, error) {
	if maxWidth == 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality == 0 {
		quality = DefaultQuality
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if uint(img.Bounds().Dx()) > maxWidth {
		// Height 0 keeps the aspect ratio.
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("re-encode %s image: %w", format, err)
	}
	return buf.Bytes(), nil
}

// EncodedName swaps the file extension for the re-encoded format's.
func EncodedName(filename string) string {
	return strings.TrimSuffix(filename, path.Ext(filename)) + ".jpg"
}
