package asset

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/logging"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/storage"
)

const (
	// MaxAssetSize is the upload size limit for model files (20 MiB).
	MaxAssetSize = 20 << 20

	// glbExtension is the only accepted model file extension.
	glbExtension = ".glb"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// SignedUpload is the result of issuing a direct-upload URL.
type SignedUpload struct {
	SignedURL string `json:"signedUrl"`
	Path      string `json:"path"`
}

// Manager governs the shared preload model library and per-device
// owned model blobs.
//
// Preload assets live under a shared prefix and are copied, never
// moved, when a device adopts one. Owned blobs are keyed by
// <sanitized-device-name>-<deviceID>.glb, so a device holds at most
// one live blob at a time.
type Manager struct {
	store         storage.BlobStore
	preloadPrefix string
	signedURLTTL  time.Duration
	logger        *logging.Logger
}

// NewManager creates an asset manager over the given blob store.
func NewManager(store storage.BlobStore, preloadPrefix string, signedURLTTL time.Duration, logger *logging.Logger) *Manager {
	return &Manager{
		store:         store,
		preloadPrefix: strings.Trim(preloadPrefix, "/"),
		signedURLTTL:  signedURLTTL,
		logger:        logger.With("component", "asset"),
	}
}

// ListPreload returns the shared library's assets sorted by name.
func (m *Manager) ListPreload(ctx context.Context) ([]storage.ObjectInfo, error) {
	return m.store.List(ctx, m.preloadPrefix)
}

// CheckNameAvailable verifies name is a legal, unclaimed preload asset
// name. The extension check is case-insensitive; the collision check is
// a case-sensitive exact match against the library.
func (m *Manager) CheckNameAvailable(ctx context.Context, name string) error {
	if !strings.HasSuffix(strings.ToLower(name), glbExtension) {
		return fmt.Errorf("%q: %w", name, ErrInvalidExtension)
	}
	existing, err := m.ListPreload(ctx)
	if err != nil {
		return fmt.Errorf("checking name availability: %w", err)
	}
	for _, obj := range existing {
		if obj.Name == name {
			return fmt.Errorf("%q: %w", name, ErrNameTaken)
		}
	}
	return nil
}

// Publish stores a new preload asset in the shared library.
//
// The upload uses overwrite semantics at a fixed key, so a retry after
// a partial failure cannot create a duplicate under a different key.
// Returns the public URL of the stored asset.
func (m *Manager) Publish(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) > MaxAssetSize {
		return "", fmt.Errorf("%q is %d bytes: %w", name, len(data), ErrTooLarge)
	}
	if err := m.CheckNameAvailable(ctx, name); err != nil {
		return "", err
	}

	objPath := m.preloadPath(name)
	if err := m.store.Upload(ctx, objPath, data, "model/gltf-binary"); err != nil {
		return "", fmt.Errorf("publishing asset: %w", err)
	}

	m.logger.Info("preload asset published", "name", name, "size", len(data))
	return m.store.PublicURL(objPath), nil
}

// SignUpload issues a time-limited direct-upload URL for a new preload
// asset, letting large files bypass the API's own byte relay.
//
// Name availability is re-checked before signing; a concurrent upload
// between this check and the client's upload is an accepted TOCTOU
// window, bounded by the URL's expiry.
func (m *Manager) SignUpload(ctx context.Context, name string) (*SignedUpload, error) {
	if err := m.CheckNameAvailable(ctx, name); err != nil {
		return nil, err
	}

	objPath := m.preloadPath(name)
	signedURL, err := m.store.SignUploadURL(ctx, objPath, m.signedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("signing upload: %w", err)
	}
	return &SignedUpload{SignedURL: signedURL, Path: objPath}, nil
}

// DeletePreload removes an asset from the shared library.
// Devices that already adopted a copy keep their owned blobs.
func (m *Manager) DeletePreload(ctx context.Context, name string) error {
	err := m.store.Remove(ctx, m.preloadPath(name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return fmt.Errorf("%q: %w", name, ErrAssetNotFound)
		}
		return fmt.Errorf("deleting preload asset: %w", err)
	}
	m.logger.Info("preload asset deleted", "name", name)
	return nil
}

// Adopt resolves a model selection into a device-owned blob URL.
//
// A selection pointing at the preload library is copied: the bytes are
// downloaded and re-uploaded under the device-owned key, leaving the
// library asset untouched. The owned key is deterministic, so adopting
// the same selection twice upserts the same blob and yields the same
// URL. A selection already outside the library (the device's existing
// owned URL, or a foreign URL) passes through unchanged.
func (m *Manager) Adopt(ctx context.Context, deviceName, deviceID, selectedURL string) (string, error) {
	srcPath, ok := m.pathFromURL(selectedURL)
	if !ok || !m.isPreloadPath(srcPath) {
		return selectedURL, nil
	}

	data, err := m.store.Download(ctx, srcPath)
	if err != nil {
		return "", fmt.Errorf("downloading preload asset: %w", err)
	}

	ownedPath := OwnedObjectKey(deviceName, deviceID)
	if err := m.store.Upload(ctx, ownedPath, data, "model/gltf-binary"); err != nil {
		return "", fmt.Errorf("uploading owned asset: %w", err)
	}

	m.logger.Info("preload asset adopted", "device_id", deviceID, "path", ownedPath)
	return m.store.PublicURL(ownedPath), nil
}

// RemoveOwned deletes the device-owned blob behind url.
// URLs outside the bucket and preload library objects are ignored.
func (m *Manager) RemoveOwned(ctx context.Context, url string) error {
	objPath, ok := m.pathFromURL(url)
	if !ok || m.isPreloadPath(objPath) {
		return nil
	}
	if err := m.store.Remove(ctx, objPath); err != nil {
		return fmt.Errorf("removing owned asset: %w", err)
	}
	return nil
}

// OwnedObjectKey derives the storage key for a device's owned model.
// Whitespace runs in the device name collapse to single hyphens.
func OwnedObjectKey(deviceName, deviceID string) string {
	return SanitizeObjectName(deviceName) + "-" + deviceID + glbExtension
}

// SanitizeObjectName makes a device name safe for use in a storage key.
func SanitizeObjectName(name string) string {
	sanitized := whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "-")
	if sanitized == "" {
		return "device"
	}
	return sanitized
}

// preloadPath builds the storage key for a library asset name.
func (m *Manager) preloadPath(name string) string {
	return path.Join(m.preloadPrefix, name)
}

// isPreloadPath reports whether a storage key is inside the library.
func (m *Manager) isPreloadPath(objPath string) bool {
	return strings.HasPrefix(objPath, m.preloadPrefix+"/")
}

// pathFromURL extracts the bucket-relative key from a public URL.
// Returns false for URLs outside this bucket.
func (m *Manager) pathFromURL(url string) (string, bool) {
	base := m.store.PublicURL("")
	if url == "" || !strings.HasPrefix(url, base) {
		return "", false
	}
	objPath := strings.TrimPrefix(url, base)
	if objPath == "" {
		return "", false
	}
	return objPath, true
}
