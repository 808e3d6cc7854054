package database

import (
	"path/filepath"
	"testing"
)

// testDB opens a fresh database in a temp directory.
// The connection is closed and files removed when the test finishes.
func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
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
	return db
}
