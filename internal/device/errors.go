package device

import "errors"

// Sentinel errors for device operations.
// Handlers map these to HTTP status codes with errors.Is.
var (
	// ErrDeviceNotFound indicates no device exists with the given ID.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrInvalidRack indicates the rack value is not a non-negative integer.
	ErrInvalidRack = errors.New("rack must be a non-negative integer")

	// ErrInvalidSlot indicates the slot value is outside [1, 20].
	ErrInvalidSlot = errors.New("slot must be an integer between 1 and 20")

	// ErrRackFull indicates the target rack already holds 20 devices.
	ErrRackFull = errors.New("rack is at capacity")

	// ErrSlotOccupied indicates another device already occupies the
	// target (rack, slot) pair.
	ErrSlotOccupied = errors.New("slot is already occupied")

	// ErrMissingFields indicates a required device field is empty.
	ErrMissingFields = errors.New("missing required fields")
)
