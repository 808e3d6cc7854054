package device

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/logging"
)

// ModelResolver turns a model selection into a device-owned blob.
// Implemented by the asset manager.
type ModelResolver interface {
	// Adopt resolves the selected model URL into a URL owned by the
	// device, copying preload library bytes when needed. It returns
	// the URL the device row should reference.
	Adopt(ctx context.Context, deviceName, deviceID, selectedURL string) (string, error)

	// RemoveOwned deletes the device-owned blob behind url, if any.
	// Preload library objects and foreign URLs are left untouched.
	RemoveOwned(ctx context.Context, url string) error
}

// EventPublisher broadcasts device change notifications.
// Implementations must not block the request path.
type EventPublisher interface {
	DeviceCreated(d *Device)
	DeviceUpdated(d *Device)
	DeviceDeleted(id string)
}

// Service orchestrates device mutations: field validation, slot
// allocation, asset adoption, persistence and blob cleanup, in that
// order. A storage failure before persistence aborts the save; a blob
// cleanup failure after persistence is logged and swallowed.
type Service struct {
	repo      Repository
	allocator *Allocator
	models    ModelResolver
	events    EventPublisher
	logger    *logging.Logger
}

// NewService creates a device service. events may be nil.
func NewService(repo Repository, models ModelResolver, events EventPublisher, logger *logging.Logger) *Service {
	return &Service{
		repo:      repo,
		allocator: NewAllocator(repo),
		models:    models,
		events:    events,
		logger:    logger.With("component", "device"),
	}
}

// Get returns a single device by ID.
func (s *Service) Get(ctx context.Context, id string) (*Device, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns devices matching the search query, ordered by name.
// An empty query returns everything.
func (s *Service) List(ctx context.Context, query string) ([]*Device, error) {
	devices, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	filter := ParseFilter(query)
	if filter.Empty() {
		return devices, nil
	}

	matched := make([]*Device, 0, len(devices))
	for _, d := range devices {
		if filter.Matches(d) {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

// Racks returns the sorted distinct racks in use, with display labels.
func (s *Service) Racks(ctx context.Context) ([]RackInfo, error) {
	racks, err := s.repo.DistinctRacks(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]RackInfo, len(racks))
	for i, r := range racks {
		infos[i] = RackInfo{Value: strconv.Itoa(r), Label: RackLabel(r)}
	}
	return infos, nil
}

// RackDeviceCount counts devices on a rack, excluding excludeID so a
// device re-assigning within its own rack does not count itself.
func (s *Service) RackDeviceCount(ctx context.Context, rack int, excludeID string) (int, error) {
	if rack < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRack, rack)
	}
	return s.repo.CountByRack(ctx, rack, excludeID)
}

// Create validates and persists a new device.
//
// An ID is generated when absent. If the model selection references the
// preload library, the bytes are copied into a device-owned blob before
// the row is written; an adoption failure aborts the save with no row
// written. A row write failure after adoption leaves the new blob as an
// orphan, which is logged for manual cleanup.
func (s *Service) Create(ctx context.Context, d *Device) error {
	if d.ID == "" {
		d.ID = newDeviceID()
	}
	if err := ValidateForSave(d); err != nil {
		return err
	}
	if err := s.allocator.ValidateAssignment(ctx, d.ID, *d.Rack, *d.Slot); err != nil {
		return err
	}

	ownedURL, err := s.models.Adopt(ctx, d.Name, d.ID, d.GLBURL)
	if err != nil {
		return fmt.Errorf("resolving model asset: %w", err)
	}
	d.GLBURL = ownedURL

	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Error("device insert failed after asset adoption, blob orphaned",
			"device_id", d.ID, "glb_url", ownedURL, "error", err)
		return err
	}

	s.logger.Info("device created", "device_id", d.ID, "rack", *d.Rack, "slot", *d.Slot)
	if s.events != nil {
		s.events.DeviceCreated(d)
	}
	return nil
}

// Update validates and persists changes to an existing device.
//
// The previous model URL is read fresh from the store rather than
// trusted from the request, so a stale client cannot cause the wrong
// blob to be deleted. The superseded blob is removed only after the row
// update commits; removal failure is logged, not fatal.
func (s *Service) Update(ctx context.Context, d *Device) error {
	if err := ValidateForSave(d); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	oldURL := current.GLBURL

	if err := s.allocator.ValidateAssignment(ctx, d.ID, *d.Rack, *d.Slot); err != nil {
		return err
	}

	ownedURL, err := s.models.Adopt(ctx, d.Name, d.ID, d.GLBURL)
	if err != nil {
		return fmt.Errorf("resolving model asset: %w", err)
	}
	d.GLBURL = ownedURL
	d.CreatedAt = current.CreatedAt

	if err := s.repo.Update(ctx, d); err != nil {
		if ownedURL != oldURL {
			s.logger.Error("device update failed after asset adoption, blob orphaned",
				"device_id", d.ID, "glb_url", ownedURL, "error", err)
		}
		return err
	}

	if oldURL != "" && oldURL != ownedURL {
		if err := s.models.RemoveOwned(ctx, oldURL); err != nil {
			s.logger.Warn("superseded model blob not removed",
				"device_id", d.ID, "glb_url", oldURL, "error", err)
		}
	}

	s.logger.Info("device updated", "device_id", d.ID, "rack", *d.Rack, "slot", *d.Slot)
	if s.events != nil {
		s.events.DeviceUpdated(d)
	}
	return nil
}

// Delete removes a device and its owned model blob.
//
// Blob removal is best-effort: an unreachable blob is logged and the
// row is still deleted, since an orphaned blob costs less than a ghost
// device record.
func (s *Service) Delete(ctx context.Context, id string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if d.GLBURL != "" {
		if err := s.models.RemoveOwned(ctx, d.GLBURL); err != nil {
			s.logger.Warn("model blob not removed during device delete",
				"device_id", id, "glb_url", d.GLBURL, "error", err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("device deleted", "device_id", id)
	if s.events != nil {
		s.events.DeviceDeleted(id)
	}
	return nil
}

// BulkDelete removes multiple devices sequentially.
//
// Each device's blob step resolves (success or logged failure) before
// its row is deleted. One device's failure does not stop the rest;
// the first row-deletion error is returned after all devices are
// attempted. Unknown IDs are skipped.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (int, error) {
	devices, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	deleted := 0
	var firstErr error
	for _, d := range devices {
		if err := s.Delete(ctx, d.ID); err != nil {
			s.logger.Error("bulk delete: device not removed", "device_id", d.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	return deleted, firstErr
}

// newDeviceID generates a device identifier.
func newDeviceID() string {
	return "dev-" + uuid.NewString()[:16]
}
