package archive

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Defines the interface for quarantining and retrieving flagged content.
type Store interface {

	// Put stores the blob under the provided key, overwriting any previous data.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the blob stored under the provided key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}
