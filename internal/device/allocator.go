package device

import (
	"context"
	"fmt"
)

// Allocator validates rack and slot assignments against current
// occupancy.
//
// Its checks are advisory: they give friendly errors before any write,
// but concurrent requests may both pass them. The unique index on
// (rack, slot) is the authoritative guard; the repository maps its
// violation to ErrSlotOccupied.
type Allocator struct {
	repo Repository
}

// NewAllocator creates an allocator over the given repository.
func NewAllocator(repo Repository) *Allocator {
	return &Allocator{repo: repo}
}

// ValidateAssignment checks that deviceID may occupy (rack, slot).
//
// The device's own current placement is excluded, so re-saving a device
// in its existing slot is always legal. Returns ErrRackFull when the
// rack already holds 20 other devices, ErrSlotOccupied when another
// device holds the slot, or nil when the assignment is legal.
func (a *Allocator) ValidateAssignment(ctx context.Context, deviceID string, rack, slot int) error {
	if rack < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRack, rack)
	}
	if slot < SlotMin || slot > SlotMax {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	count, err := a.repo.CountByRack(ctx, rack, deviceID)
	if err != nil {
		return fmt.Errorf("validating assignment: %w", err)
	}
	if count >= SlotMax {
		return fmt.Errorf("rack %d: %w", rack, ErrRackFull)
	}

	taken, err := a.repo.SlotTaken(ctx, rack, slot, deviceID)
	if err != nil {
		return fmt.Errorf("validating assignment: %w", err)
	}
	if taken {
		return fmt.Errorf("rack %d slot %d: %w", rack, slot, ErrSlotOccupied)
	}
	return nil
}
