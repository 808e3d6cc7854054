package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/database"
)

// Repository defines data access operations for devices.
type Repository interface {
	Create(ctx context.Context, d *Device) error
	GetByID(ctx context.Context, id string) (*Device, error)
	List(ctx context.Context) ([]*Device, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Device, error)
	Update(ctx context.Context, d *Device) error
	Delete(ctx context.Context, id string) error

	// CountByRack counts devices on a rack, excluding excludeID.
	CountByRack(ctx context.Context, rack int, excludeID string) (int, error)

	// SlotTaken reports whether a device other than excludeID occupies
	// the (rack, slot) pair.
	SlotTaken(ctx context.Context, rack, slot int, excludeID string) (bool, error)

	// DistinctRacks returns the sorted set of racks in use.
	DistinctRacks(ctx context.Context) ([]int, error)
}

// SQLiteRepository implements Repository backed by SQLite.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a device repository.
func NewSQLiteRepository(db *database.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = `id, name, brand, category, rack, slot, ip, application, url, description, serial, glb_url, created_at, updated_at`

// Create inserts a new device row.
// A unique index violation on (rack, slot) maps to ErrSlotOccupied.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (`+deviceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, nullString(d.Brand), nullString(d.Category),
		d.Rack, d.Slot,
		nullString(d.IP), nullString(d.Application), nullString(d.URL),
		nullString(d.Description), nullString(d.Serial), nullString(d.GLBURL),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isSlotConflict(err) {
			return fmt.Errorf("creating device: %w", ErrSlotOccupied)
		}
		return fmt.Errorf("creating device: %w", err)
	}
	return nil
}

// GetByID retrieves a single device.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id)

	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("device %s: %w", id, ErrDeviceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting device: %w", err)
	}
	return d, nil
}

// List returns all devices ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]*Device, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM devices ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()
	return collectDevices(rows)
}

// ListByIDs returns the devices matching the given IDs.
// Missing IDs are silently skipped.
func (r *SQLiteRepository) ListByIDs(ctx context.Context, ids []string) ([]*Device, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, //nolint:gosec // Placeholder list only, no user input in SQL string
		`SELECT `+deviceColumns+` FROM devices WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing devices by id: %w", err)
	}
	defer rows.Close()
	return collectDevices(rows)
}

// Update overwrites all mutable fields of an existing device.
// A unique index violation on (rack, slot) maps to ErrSlotOccupied.
func (r *SQLiteRepository) Update(ctx context.Context, d *Device) error {
	d.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE devices SET
			name = ?, brand = ?, category = ?, rack = ?, slot = ?,
			ip = ?, application = ?, url = ?, description = ?, serial = ?,
			glb_url = ?, updated_at = ?
		WHERE id = ?`,
		d.Name, nullString(d.Brand), nullString(d.Category),
		d.Rack, d.Slot,
		nullString(d.IP), nullString(d.Application), nullString(d.URL),
		nullString(d.Description), nullString(d.Serial), nullString(d.GLBURL),
		d.UpdatedAt.Format(time.RFC3339),
		d.ID,
	)
	if err != nil {
		if isSlotConflict(err) {
			return fmt.Errorf("updating device: %w", ErrSlotOccupied)
		}
		return fmt.Errorf("updating device: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("device %s: %w", d.ID, ErrDeviceNotFound)
	}
	return nil
}

// Delete removes a device row.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("device %s: %w", id, ErrDeviceNotFound)
	}
	return nil
}

// CountByRack counts devices assigned to a rack, excluding excludeID.
func (r *SQLiteRepository) CountByRack(ctx context.Context, rack int, excludeID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM devices WHERE rack = ? AND id != ?`,
		rack, excludeID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting rack devices: %w", err)
	}
	return count, nil
}

// SlotTaken reports whether the (rack, slot) pair is occupied by a
// device other than excludeID.
func (r *SQLiteRepository) SlotTaken(ctx context.Context, rack, slot int, excludeID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM devices WHERE rack = ? AND slot = ? AND id != ?`,
		rack, slot, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking slot occupancy: %w", err)
	}
	return count > 0, nil
}

// DistinctRacks returns the sorted racks currently in use.
func (r *SQLiteRepository) DistinctRacks(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT rack FROM devices WHERE rack IS NOT NULL ORDER BY rack`)
	if err != nil {
		return nil, fmt.Errorf("listing racks: %w", err)
	}
	defer rows.Close()

	var racks []int
	for rows.Next() {
		var rack int
		if err := rows.Scan(&rack); err != nil {
			return nil, fmt.Errorf("scanning rack: %w", err)
		}
		racks = append(racks, rack)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating racks: %w", err)
	}
	return racks, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*Device, error) {
	var d Device
	var brand, category, ip, application, url, description, serial, glbURL sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(
		&d.ID, &d.Name, &brand, &category, &d.Rack, &d.Slot,
		&ip, &application, &url, &description, &serial, &glbURL,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Brand = brand.String
	d.Category = category.String
	d.IP = ip.String
	d.Application = application.String
	d.URL = url.String
	d.Description = description.String
	d.Serial = serial.String
	d.GLBURL = glbURL.String
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is ours
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is ours
	return &d, nil
}

func collectDevices(rows *sql.Rows) ([]*Device, error) {
	var devices []*Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// nullString converts an empty string to NULL for storage.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isSlotConflict reports whether err is a violation of the unique
// (rack, slot) index. Other constraint classes, including a duplicate
// primary key, must not masquerade as slot conflicts.
func isSlotConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return false
	}
	return strings.Contains(sqliteErr.Error(), "devices.rack")
}
