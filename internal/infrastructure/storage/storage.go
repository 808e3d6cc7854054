package storage

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by BlobStore implementations.
var (
	// ErrObjectNotFound indicates the requested object does not exist.
	ErrObjectNotFound = errors.New("object not found")
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	// Name is the object's filename without any prefix.
	Name string `json:"name"`

	// Path is the full storage key within the bucket.
	Path string `json:"path"`

	// URL is the publicly resolvable URL for the object.
	URL string `json:"url"`
}

// BlobStore is the interface to the bucket holding device model files.
//
// Paths are bucket-relative keys like "ready-use-object/router.glb".
// Upload overwrites an existing object at the same path, so retries
// never produce duplicate keys.
type BlobStore interface {
	// List returns objects under the given prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Upload stores data at path, replacing any existing object.
	Upload(ctx context.Context, path string, data []byte, contentType string) error

	// Download returns the object bytes at path.
	// Returns ErrObjectNotFound if the object does not exist.
	Download(ctx context.Context, path string) ([]byte, error)

	// Remove deletes the object at path.
	// Returns ErrObjectNotFound if the object does not exist.
	Remove(ctx context.Context, path string) error

	// PublicURL returns the publicly resolvable URL for path.
	// It does not check that the object exists.
	PublicURL(path string) string

	// SignUploadURL issues a time-limited URL allowing a client to
	// upload directly to path without relaying bytes through the API.
	SignUploadURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
}
