// Package objectstore stores event cover images.
package objectstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a path that holds no object.
var ErrNotFound = errors.New("object not found")

// Store puts and deletes objects addressed by slash-separated paths.
type Store interface {
	// Put uploads data at path and returns its public URL.
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// Delete removes the object at path. Deleting a missing object succeeds.
	Delete(ctx context.Context, path string) error
	// URLPrefix is the prefix every URL returned by Put starts with.
	URLPrefix() string
}
