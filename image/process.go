package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format

	"github.com/buckket/go-blurhash"
	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Registered so the allowlist can reject it by name
	_ "golang.org/x/image/webp" // Register WebP format
)

const (
	// Define BlurHash components (commonly 4x4 or 9x4)
	componentsX = 4
	componentsY = 4
)

// Info describes a decoded image: its dimensions plus a BlurHash clients
// can render as a placeholder instead of the flagged original.
type Info struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BlurHash string `json:"blur_hash"`
}

// Process decodes the image data, retrieves its dimensions, and calculates
// the BlurHash.
func Process(imageData []byte) (*Info, error) {
	if len(imageData) == 0 {
		return nil, ErrEmptyImage
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()

	blurhashStr, err := blurhash.Encode(componentsX, componentsY, img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blurhash: %w", err)
	}

	return &Info{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		BlurHash: blurhashStr,
	}, nil
}
