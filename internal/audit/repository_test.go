package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/database"
	_ "github.com/Thaaan184/admin-dashboard-publicver/migrations"
)

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

func TestCreateAndList(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	entry := &Entry{
		Action:     ActionCreate,
		EntityType: EntityDevice,
		EntityID:   "dev-1",
		UserID:     "usr-1",
		Source:     "api",
		Details:    map[string]any{"rack": float64(3), "slot": float64(1)},
	}
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Error("ID and CreatedAt should be generated")
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if result.Total != 1 || len(result.Logs) != 1 {
		t.Fatalf("total = %d, logs = %d, want 1 each", result.Total, len(result.Logs))
	}

	got := result.Logs[0]
	if got.Action != ActionCreate || got.EntityType != EntityDevice || got.EntityID != "dev-1" {
		t.Errorf("got %+v", got)
	}
	if got.Details["rack"] != float64(3) {
		t.Errorf("details = %v", got.Details)
	}
}

func TestListFilters(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	entries := []*Entry{
		{Action: ActionCreate, EntityType: EntityDevice, EntityID: "dev-1", Source: "api"},
		{Action: ActionDelete, EntityType: EntityDevice, EntityID: "dev-1", Source: "api"},
		{Action: ActionCreate, EntityType: EntityUser, EntityID: "usr-1", Source: "api"},
		{Action: ActionLogin, EntityType: EntityUser, EntityID: "usr-1", Source: "api"},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	byAction, err := repo.List(ctx, Filter{Action: ActionCreate})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if byAction.Total != 2 {
		t.Errorf("action filter total = %d, want 2", byAction.Total)
	}

	byEntity, err := repo.List(ctx, Filter{EntityType: EntityUser, EntityID: "usr-1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if byEntity.Total != 2 {
		t.Errorf("entity filter total = %d, want 2", byEntity.Total)
	}
}

func TestListPagination(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Create(ctx, &Entry{
			Action: ActionUpdate, EntityType: EntityDevice, Source: "api",
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	page, err := repo.List(ctx, Filter{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 5 || len(page.Logs) != 2 {
		t.Errorf("total = %d, page = %d, want 5 and 2", page.Total, len(page.Logs))
	}

	// Limit is clamped, empty results stay a JSON array.
	empty, err := repo.List(ctx, Filter{Offset: 100})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if empty.Logs == nil {
		t.Error("Logs should be an empty slice, not nil")
	}
}
