package device

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRack parses a rack value from form input.
//
// An empty string means unassigned and returns nil. The literal "0" is
// a valid rack, distinct from empty. Anything that does not parse as a
// non-negative integer returns ErrInvalidRack.
func ParseRack(raw string) (*int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRack, raw)
	}
	return &n, nil
}

// ParseSlot parses a slot value from form input.
//
// An empty string means unassigned and returns nil. Valid slots are
// integers in [1, 20].
func ParseSlot(raw string) (*int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < SlotMin || n > SlotMax {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}
	return &n, nil
}

// ValidateForSave checks the required fields for a create or update.
// Name, category, placement and model URL must all be present.
func ValidateForSave(d *Device) error {
	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(d.Category) == "" {
		missing = append(missing, "category")
	}
	if d.Rack == nil {
		missing = append(missing, "rack")
	}
	if d.Slot == nil {
		missing = append(missing, "slot")
	}
	if strings.TrimSpace(d.GLBURL) == "" {
		missing = append(missing, "glb_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	return nil
}
