package device

import (
	"context"
	"errors"
	"testing"
)

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	d := testDevice("dev-1", 3, 1)
	d.Brand = "Cisco"
	d.IP = "10.0.0.1"
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != d.Name || got.Brand != "Cisco" || got.IP != "10.0.0.1" {
		t.Errorf("got %+v, want fields from %+v", got, d)
	}
	if got.Rack == nil || *got.Rack != 3 || got.Slot == nil || *got.Slot != 1 {
		t.Errorf("placement = (%v, %v), want (3, 1)", got.Rack, got.Slot)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.GetByID(context.Background(), "dev-nope")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestRepositoryUnassignedPlacement(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	d := &Device{ID: "dev-float", Name: "Floater"}
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "dev-float")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Rack != nil || got.Slot != nil {
		t.Errorf("placement = (%v, %v), want (nil, nil)", got.Rack, got.Slot)
	}
}

func TestRepositorySlotUniqueIndex(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testDevice("dev-a", 7, 4)); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	err := repo.Create(ctx, testDevice("dev-b", 7, 4))
	if !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("second Create err = %v, want ErrSlotOccupied", err)
	}

	// Final state holds exactly one row at (7,4).
	taken, err := repo.SlotTaken(ctx, 7, 4, "dev-a")
	if err != nil {
		t.Fatalf("SlotTaken failed: %v", err)
	}
	if taken {
		t.Error("slot should only be held by dev-a")
	}
}

func TestRepositoryDuplicateIDIsNotSlotConflict(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testDevice("dev-a", 7, 4)); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same ID on a free slot trips the primary key, not the
	// (rack, slot) index.
	err := repo.Create(ctx, testDevice("dev-a", 7, 5))
	if err == nil {
		t.Fatal("duplicate ID Create should fail")
	}
	if errors.Is(err, ErrSlotOccupied) {
		t.Errorf("err = %v, a primary key violation must not map to ErrSlotOccupied", err)
	}
}

func TestRepositoryUpdateSlotConflict(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testDevice("dev-a", 1, 1)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, testDevice("dev-b", 1, 2)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	b := testDevice("dev-b", 1, 1)
	err := repo.Update(ctx, b)
	if !errors.Is(err, ErrSlotOccupied) {
		t.Errorf("Update err = %v, want ErrSlotOccupied", err)
	}
}

func TestRepositoryUpdate(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testDevice("dev-1", 2, 5)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated := testDevice("dev-1", 2, 6)
	updated.Name = "Renamed"
	updated.Description = "moved down a slot"
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Renamed" || *got.Slot != 6 || got.Description != "moved down a slot" {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestRepositoryUpdateMissing(t *testing.T) {
	repo := testRepo(t)

	err := repo.Update(context.Background(), testDevice("dev-ghost", 1, 1))
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testDevice("dev-1", 1, 1)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Delete(ctx, "dev-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, "dev-1"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("device still present after delete: %v", err)
	}

	if err := repo.Delete(ctx, "dev-1"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("second Delete err = %v, want ErrDeviceNotFound", err)
	}
}

func TestRepositoryCountByRack(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	fillRack(t, repo, 3, 4)

	count, err := repo.CountByRack(ctx, 3, "")
	if err != nil {
		t.Fatalf("CountByRack failed: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}

	// Excluding a rack member reduces the count.
	count, err = repo.CountByRack(ctx, 3, "dev-rack3-1")
	if err != nil {
		t.Fatalf("CountByRack failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count excluding member = %d, want 3", count)
	}

	count, err = repo.CountByRack(ctx, 99, "")
	if err != nil {
		t.Fatalf("CountByRack failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count for empty rack = %d, want 0", count)
	}
}

func TestRepositoryDistinctRacks(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for i, placement := range [][2]int{{5, 1}, {0, 1}, {5, 2}, {12, 1}} {
		d := testDevice(string(rune('a'+i)), placement[0], placement[1])
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	// Unassigned devices don't contribute a rack.
	if err := repo.Create(ctx, &Device{ID: "dev-float", Name: "Floater"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	racks, err := repo.DistinctRacks(ctx)
	if err != nil {
		t.Fatalf("DistinctRacks failed: %v", err)
	}
	want := []int{0, 5, 12}
	if len(racks) != len(want) {
		t.Fatalf("racks = %v, want %v", racks, want)
	}
	for i := range want {
		if racks[i] != want[i] {
			t.Errorf("racks = %v, want %v", racks, want)
			break
		}
	}
}

func TestRepositoryListByIDs(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	fillRack(t, repo, 1, 3)

	devices, err := repo.ListByIDs(ctx, []string{"dev-rack1-1", "dev-rack1-3", "dev-missing"})
	if err != nil {
		t.Fatalf("ListByIDs failed: %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("got %d devices, want 2", len(devices))
	}

	devices, err = repo.ListByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListByIDs(nil) failed: %v", err)
	}
	if devices != nil {
		t.Errorf("ListByIDs(nil) = %v, want nil", devices)
	}
}
