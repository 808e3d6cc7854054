package device

import "fmt"

// RackLabel formats a rack number for display.
// Racks 1 through 9 are zero-padded to two digits; rack 0 is not.
//
//	RackLabel(0)  // "Rack 0"
//	RackLabel(5)  // "Rack 05"
//	RackLabel(12) // "Rack 12"
func RackLabel(rack int) string {
	if rack > 0 && rack < 10 {
		return fmt.Sprintf("Rack 0%d", rack)
	}
	return fmt.Sprintf("Rack %d", rack)
}
