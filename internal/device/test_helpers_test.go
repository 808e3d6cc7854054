package device

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/database"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/logging"
	_ "github.com/Thaaan184/admin-dashboard-publicver/migrations"
)

// testRepo opens a migrated temp database and returns a repository on it.
func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return NewSQLiteRepository(db)
}

// intPtr is a convenience for building placements in tests.
func intPtr(n int) *int {
	return &n
}

// testDevice builds a valid placed device.
func testDevice(id string, rack, slot int) *Device {
	return &Device{
		ID:       id,
		Name:     "Device " + id,
		Category: "Network",
		Rack:     intPtr(rack),
		Slot:     intPtr(slot),
		GLBURL:   "http://blobs.local/owned/" + id + ".glb",
	}
}

// fakeResolver is a ModelResolver that records calls and can be made
// to fail.
type fakeResolver struct {
	mu         sync.Mutex
	adoptErr   error
	removeErr  error
	adopted    []string
	removed    []string
	adoptedURL func(deviceName, deviceID, selectedURL string) string
}

func (f *fakeResolver) Adopt(_ context.Context, deviceName, deviceID, selectedURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.adoptErr != nil {
		return "", f.adoptErr
	}
	f.adopted = append(f.adopted, selectedURL)
	if f.adoptedURL != nil {
		return f.adoptedURL(deviceName, deviceID, selectedURL), nil
	}
	return selectedURL, nil
}

func (f *fakeResolver) RemoveOwned(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, url)
	return nil
}

func (f *fakeResolver) removedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

// testService wires a service over a migrated temp database and the
// given resolver.
func testService(t *testing.T, resolver *fakeResolver) (*Service, *SQLiteRepository) {
	t.Helper()
	repo := testRepo(t)
	svc := NewService(repo, resolver, nil, logging.Default())
	return svc, repo
}

// fillRack inserts count devices on the given rack in slots 1..count.
func fillRack(t *testing.T, repo *SQLiteRepository, rack, count int) {
	t.Helper()
	for i := 1; i <= count; i++ {
		d := testDevice(fmt.Sprintf("dev-rack%d-%d", rack, i), rack, i)
		if err := repo.Create(context.Background(), d); err != nil {
			t.Fatalf("filling rack %d slot %d: %v", rack, i, err)
		}
	}
}
