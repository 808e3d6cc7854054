package mqtt

import (
	"strings"
	"time"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/device"
)

// defaultTopicPrefix is used when the configuration leaves the prefix empty.
const defaultTopicPrefix = "rackdash"

// deviceEvent is the wire payload for device change notifications.
type deviceEvent struct {
	DeviceID  string    `json:"device_id"`
	Rack      *int      `json:"rack,omitempty"`
	Slot      *int      `json:"slot,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DeviceEvents adapts Client to the device service's publisher
// interface. Topics are <prefix>/events/device/{created,updated,deleted}.
type DeviceEvents struct {
	client *Client
	prefix string
}

// NewDeviceEvents creates a device event publisher over an active
// client.
func NewDeviceEvents(client *Client, topicPrefix string) *DeviceEvents {
	prefix := strings.Trim(topicPrefix, "/")
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return &DeviceEvents{client: client, prefix: prefix}
}

func (p *DeviceEvents) topic(event string) string {
	return p.prefix + "/events/device/" + event
}

func (p *DeviceEvents) DeviceCreated(d *device.Device) {
	p.client.Publish(p.topic("created"), deviceEvent{
		DeviceID:  d.ID,
		Rack:      d.Rack,
		Slot:      d.Slot,
		Timestamp: time.Now().UTC(),
	})
}

func (p *DeviceEvents) DeviceUpdated(d *device.Device) {
	p.client.Publish(p.topic("updated"), deviceEvent{
		DeviceID:  d.ID,
		Rack:      d.Rack,
		Slot:      d.Slot,
		Timestamp: time.Now().UTC(),
	})
}

func (p *DeviceEvents) DeviceDeleted(id string) {
	p.client.Publish(p.topic("deleted"), deviceEvent{
		DeviceID:  id,
		Timestamp: time.Now().UTC(),
	})
}

var _ device.EventPublisher = (*DeviceEvents)(nil)
