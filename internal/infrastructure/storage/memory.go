package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory BlobStore for tests and local development.
// Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// NewMemory creates an empty in-memory store.
// baseURL is prepended to object paths by PublicURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (m *Memory) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cleanPrefix := strings.TrimSuffix(prefix, "/")
	var objects []ObjectInfo
	for objPath := range m.objects {
		if cleanPrefix != "" && !strings.HasPrefix(objPath, cleanPrefix+"/") {
			continue
		}
		name := objPath
		if cleanPrefix != "" {
			name = strings.TrimPrefix(objPath, cleanPrefix+"/")
		}
		// Only direct children, matching flat bucket listing.
		if strings.Contains(name, "/") {
			continue
		}
		objects = append(objects, ObjectInfo{
			Name: name,
			Path: objPath,
			URL:  m.PublicURL(objPath),
		})
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Name < objects[j].Name
	})
	return objects, nil
}

func (m *Memory) Upload(_ context.Context, objPath string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[objPath] = buf
	return nil
}

func (m *Memory) Download(_ context.Context, objPath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[objPath]
	if !ok {
		return nil, fmt.Errorf("downloading %s: %w", objPath, ErrObjectNotFound)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (m *Memory) Remove(_ context.Context, objPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[objPath]; !ok {
		return fmt.Errorf("removing %s: %w", objPath, ErrObjectNotFound)
	}
	delete(m.objects, objPath)
	return nil
}

func (m *Memory) PublicURL(objPath string) string {
	return m.baseURL + "/" + objPath
}

func (m *Memory) SignUploadURL(_ context.Context, objPath string, expiresIn time.Duration) (string, error) {
	return fmt.Sprintf("%s/%s?signed=true&expires_in=%d", m.baseURL, objPath, int(expiresIn.Seconds())), nil
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Has reports whether an object exists at path.
func (m *Memory) Has(objPath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[objPath]
	return ok
}

var _ BlobStore = (*Memory)(nil)
