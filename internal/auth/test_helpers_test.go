package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/database"
	_ "github.com/Thaaan184/admin-dashboard-publicver/migrations"
)

// testUserRepo opens a migrated temp database and returns a user
// repository on it.
func testUserRepo(t *testing.T) *SQLiteUserRepository {
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
	return NewSQLiteUserRepository(db)
}

// testUser builds a valid user with a pre-hashed password.
func testUser(t *testing.T, username string, role Role) *User {
	t.Helper()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}
	return &User{
		Username:     username,
		Name:         "Test " + username,
		PasswordHash: hash,
		Role:         role,
	}
}
