package device

import "time"

// Rack capacity constants.
const (
	// SlotMin is the lowest valid slot number within a rack.
	SlotMin = 1

	// SlotMax is the highest valid slot number, and therefore the
	// rack capacity.
	SlotMax = 20
)

// Device is a managed device with optional rack placement and an
// optional 3D model asset.
//
// Rack and Slot are nil when the device is unassigned. Rack 0 is a
// valid rack, distinct from unassigned.
type Device struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Category    string    `json:"category,omitempty"`
	Rack        *int      `json:"rack"`
	Slot        *int      `json:"slot"`
	IP          string    `json:"ip,omitempty"`
	Application string    `json:"application,omitempty"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Serial      string    `json:"serial,omitempty"`
	GLBURL      string    `json:"glb_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RackInfo is one entry of the distinct rack listing. Value carries
// the rack number in string form, matching the select options the
// admin UI binds.
type RackInfo struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Placed reports whether the device has a rack assignment.
func (d *Device) Placed() bool {
	return d.Rack != nil && d.Slot != nil
}
