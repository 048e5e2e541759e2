package manager

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImagePixels bounds decoded image area. Larger images are refused
// before their pixels are allocated.
const DefaultMaxImagePixels int64 = 178956970

// DecodeImage turns an /infer payload into an image. The payload is either a
// data URL ("data:image/png;base64,....") or bare base64. maxPixels <= 0
// uses DefaultMaxImagePixels.
func DecodeImage(payload string, maxPixels int64) (image.Image, error) {
	raw, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("cannot identify image file: %w", err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > maxPixels {
		return nil, fmt.Errorf("image size (%d pixels) exceeds limit of %d pixels", px, maxPixels)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("cannot identify image file: %w", err)
	}
	return img, nil
}

func decodePayload(payload string) ([]byte, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return nil, fmt.Errorf("empty image payload")
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return b, nil
	}
	if b, rawErr := base64.RawStdEncoding.DecodeString(payload); rawErr == nil {
		return b, nil
	}
	return nil, fmt.Errorf("invalid base64 image data: %w", err)
}
