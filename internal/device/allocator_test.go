package device

import (
	"context"
	"errors"
	"testing"
)

func TestAllocatorInvalidValues(t *testing.T) {
	alloc := NewAllocator(testRepo(t))
	ctx := context.Background()

	if err := alloc.ValidateAssignment(ctx, "dev-x", -1, 5); !errors.Is(err, ErrInvalidRack) {
		t.Errorf("negative rack err = %v, want ErrInvalidRack", err)
	}
	if err := alloc.ValidateAssignment(ctx, "dev-x", 1, 0); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("slot 0 err = %v, want ErrInvalidSlot", err)
	}
	if err := alloc.ValidateAssignment(ctx, "dev-x", 1, 21); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("slot 21 err = %v, want ErrInvalidSlot", err)
	}
}

func TestAllocatorFreeSlot(t *testing.T) {
	repo := testRepo(t)
	alloc := NewAllocator(repo)
	ctx := context.Background()

	if err := alloc.ValidateAssignment(ctx, "dev-x", 0, 1); err != nil {
		t.Errorf("rack 0 should be valid: %v", err)
	}
	if err := alloc.ValidateAssignment(ctx, "dev-x", 3, 20); err != nil {
		t.Errorf("empty slot should validate: %v", err)
	}
}

func TestAllocatorSlotOccupied(t *testing.T) {
	repo := testRepo(t)
	alloc := NewAllocator(repo)
	ctx := context.Background()

	if err := repo.Create(ctx, testDevice("dev-a", 7, 4)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := alloc.ValidateAssignment(ctx, "dev-b", 7, 4); !errors.Is(err, ErrSlotOccupied) {
		t.Errorf("err = %v, want ErrSlotOccupied", err)
	}

	// The occupant itself may re-validate its own slot.
	if err := alloc.ValidateAssignment(ctx, "dev-a", 7, 4); err != nil {
		t.Errorf("own slot should validate: %v", err)
	}
}

func TestAllocatorRackFull(t *testing.T) {
	repo := testRepo(t)
	alloc := NewAllocator(repo)
	ctx := context.Background()

	fillRack(t, repo, 5, SlotMax)

	// A newcomer is rejected even targeting an occupied slot's number.
	if err := alloc.ValidateAssignment(ctx, "dev-new", 5, 2); !errors.Is(err, ErrRackFull) {
		t.Errorf("err = %v, want ErrRackFull", err)
	}

	// A rack member re-assigning within the rack is excluded from the count.
	if err := alloc.ValidateAssignment(ctx, "dev-rack5-1", 5, 1); err != nil {
		t.Errorf("rack member should validate: %v", err)
	}
}
