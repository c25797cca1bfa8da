// Package imaging decodes image payloads submitted with item reports and
// normalises them to bounded-size JPEG before they reach the blob store.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// DefaultMaxDimension bounds width and height when no limit is configured.
const DefaultMaxDimension = 1600

// DefaultMaxPixels bounds the decoded canvas when no limit is configured.
// It admits a 48 megapixel phone photo.
const DefaultMaxPixels = 50_000_000

var (
	ErrInvalidPayload    = errors.New("invalid image payload")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image too large")
)

// allowedMIME lists the accepted input MIME types, keyed by sniffed type.
var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Result contains the processed image data.
type Result struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Options bounds the accepted input and the produced output.
type Options struct {
	MaxBytes     int64 // decoded payload limit; zero disables the check
	MaxDimension int   // longest output edge in pixels
	MaxPixels    int64 // decoded width*height limit; zero means DefaultMaxPixels
}

// DecodeDataURL extracts the bytes of a base64 payload. Both data URLs
// ("data:image/png;base64,....") and bare base64 are accepted, and missing
// trailing padding is restored before decoding.
func DecodeDataURL(s string) ([]byte, error) {
	payload := strings.TrimSpace(s)
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, fmt.Errorf("%w: malformed data URL", ErrInvalidPayload)
		}
		if !strings.Contains(payload[:idx], ";base64") {
			return nil, fmt.Errorf("%w: data URL is not base64 encoded", ErrInvalidPayload)
		}
		payload = payload[idx+1:]
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}

	if rem := len(payload) % 4; rem != 0 {
		payload += strings.Repeat("=", 4-rem)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}
	return data, nil
}

// Process validates the format by sniffing bytes, downscales if larger than
// opts.MaxDimension and re-encodes as JPEG. The declared canvas is checked
// against opts.MaxPixels before any pixel data is decoded.
func Process(data []byte, opts Options) (*Result, error) {
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, len(data), opts.MaxBytes)
	}

	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, detected)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image header: %w", err)
	}
	maxPixels := opts.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	img = downscale(img, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Ext:         "jpg",
	}, nil
}

// ProcessDataURL is DecodeDataURL followed by Process.
func ProcessDataURL(s string, opts Options) (*Result, error) {
	data, err := DecodeDataURL(s)
	if err != nil {
		return nil, err
	}
	return Process(data, opts)
}

// downscale resizes the image so neither dimension exceeds maxDim,
// preserving aspect ratio.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
