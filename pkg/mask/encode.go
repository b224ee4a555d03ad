package mask

import (
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/dithermask/pkg/errors"
)

// Format identifies an output format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
	// FormatJSON is the lossless round-trip form, written by package io.
	FormatJSON Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatPNG, FormatTIFF, FormatBMP, FormatJSON}

// ParseFormat parses a format name, case-insensitively. "tif" is accepted
// for TIFF.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatTIFF, FormatBMP, FormatJSON:
		return f, nil
	case "tif":
		return FormatTIFF, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want png, tiff, bmp or json)", s)
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string { return string(f) }

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatTIFF:
		return "image/tiff"
	case FormatBMP:
		return "image/bmp"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// EncodeOption configures image encoding.
type EncodeOption func(*encodeOptions)

type encodeOptions struct {
	depth int
	level float64
}

// WithDepth selects the bit depth of grayscale output, 8 or 16. BMP is always
// written at 8 bits.
func WithDepth(depth int) EncodeOption {
	return func(o *encodeOptions) { o.depth = depth }
}

// WithLevel renders the binary pattern at level instead of the grayscale
// mask. Zero keeps the grayscale mask.
func WithLevel(level float64) EncodeOption {
	return func(o *encodeOptions) { o.level = level }
}

// Encode writes the mask as an image in format f.
func Encode(w io.Writer, m *Mask, f Format, opts ...EncodeOption) error {
	o := encodeOptions{depth: 16}
	for _, opt := range opts {
		opt(&o)
	}
	if o.depth != 8 && o.depth != 16 {
		return errors.New(errors.ErrCodeInvalidInput, "bit depth %d not supported (want 8 or 16)", o.depth)
	}
	if err := errors.ValidateLevel(o.level); err != nil {
		return err
	}

	var img image.Image
	switch {
	case o.level > 0:
		img = m.Binary(o.level)
	case o.depth == 8 || f == FormatBMP:
		img = m.Gray()
	default:
		img = m.Gray16()
	}

	var err error
	switch f {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatJSON:
		return errors.New(errors.ErrCodeUnsupported, "json is not an image format")
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f)
	}
	return nil
}
