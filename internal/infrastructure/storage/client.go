package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/config"
)

const (
	requestTimeout = 30 * time.Second
	listPageSize   = 1000
)

// Client is a BlobStore backed by a hosted storage HTTP API
// (Supabase-compatible object endpoints).
type Client struct {
	http   *resty.Client
	bucket string
	base   string
}

// NewClient creates a storage client from configuration.
func NewClient(cfg config.StorageConfig) *Client {
	base := strings.TrimRight(cfg.Endpoint, "/")
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(requestTimeout).
		SetAuthToken(cfg.ServiceKey).
		SetHeader("apikey", cfg.ServiceKey)

	return &Client{
		http:   client,
		bucket: cfg.Bucket,
		base:   base,
	}
}

// listEntry is one row of the storage list response.
type listEntry struct {
	Name string  `json:"name"`
	ID   *string `json:"id"`
}

// List returns objects under prefix, sorted by name.
// Folder placeholder entries (null id) are skipped.
func (c *Client) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var entries []listEntry
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"prefix": prefix,
			"limit":  listPageSize,
			"offset": 0,
			"sortBy": map[string]string{"column": "name", "order": "asc"},
		}).
		SetResult(&entries).
		Post(fmt.Sprintf("/object/list/%s", c.bucket))
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("listing objects: storage returned %d", resp.StatusCode())
	}

	objects := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		if e.ID == nil {
			continue
		}
		objPath := path.Join(prefix, e.Name)
		objects = append(objects, ObjectInfo{
			Name: e.Name,
			Path: objPath,
			URL:  c.PublicURL(objPath),
		})
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Name < objects[j].Name
	})
	return objects, nil
}

// Upload stores data at path with upsert semantics.
func (c *Client) Upload(ctx context.Context, objPath string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("/object/%s/%s", c.bucket, objPath))
	if err != nil {
		return fmt.Errorf("uploading %s: %w", objPath, err)
	}
	if resp.IsError() {
		return fmt.Errorf("uploading %s: storage returned %d", objPath, resp.StatusCode())
	}
	return nil
}

// Download returns the object bytes at path.
func (c *Client) Download(ctx context.Context, objPath string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/object/%s/%s", c.bucket, objPath))
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", objPath, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("downloading %s: %w", objPath, ErrObjectNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("downloading %s: storage returned %d", objPath, resp.StatusCode())
	}
	return resp.Body(), nil
}

// Remove deletes the object at path.
func (c *Client) Remove(ctx context.Context, objPath string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/object/%s/%s", c.bucket, objPath))
	if err != nil {
		return fmt.Errorf("removing %s: %w", objPath, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("removing %s: %w", objPath, ErrObjectNotFound)
	}
	if resp.IsError() {
		return fmt.Errorf("removing %s: storage returned %d", objPath, resp.StatusCode())
	}
	return nil
}

// PublicURL returns the public URL for an object path.
func (c *Client) PublicURL(objPath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.base, c.bucket, objPath)
}

// signResponse is the storage API response for a signed upload URL.
type signResponse struct {
	URL string `json:"url"`
}

// SignUploadURL issues a time-limited direct-upload URL for path.
func (c *Client) SignUploadURL(ctx context.Context, objPath string, expiresIn time.Duration) (string, error) {
	var result signResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"expiresIn": int(expiresIn.Seconds())}).
		SetResult(&result).
		Post(fmt.Sprintf("/object/upload/sign/%s/%s", c.bucket, objPath))
	if err != nil {
		return "", fmt.Errorf("signing upload URL for %s: %w", objPath, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("signing upload URL for %s: storage returned %d", objPath, resp.StatusCode())
	}
	if result.URL == "" {
		return "", fmt.Errorf("signing upload URL for %s: empty URL in response", objPath)
	}
	if strings.HasPrefix(result.URL, "/") {
		return c.base + result.URL, nil
	}
	return result.URL, nil
}

var _ BlobStore = (*Client)(nil)
