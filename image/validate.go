package image

import (
	"bytes"
	"errors"
	"image"
)

// MaxUploadBytes caps accepted image payloads at 16MB.
const MaxUploadBytes = 16 << 20

var (
	ErrEmptyImage        = errors.New("image data is empty")
	ErrTooLarge          = errors.New("image exceeds the 16MB upload limit")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

var allowedFormats = map[string]struct{}{
	"png":  {},
	"jpeg": {},
	"gif":  {},
	"bmp":  {},
	"webp": {},
}

// Validate checks the payload size and sniffs the image format from its
// content, rejecting anything the service does not accept. Only the header
// is decoded; the cost is independent of the payload size.
func Validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxUploadBytes {
		return "", ErrTooLarge
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrUnsupportedFormat
	}
	if _, ok := allowedFormats[format]; !ok {
		return "", ErrUnsupportedFormat
	}

	return format, nil
}
