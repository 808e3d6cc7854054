package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/database"
)

// UserRepository defines data access operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)

	// ListByIDs returns the users matching ids. IDs with no matching
	// user are skipped, not errors.
	ListByIDs(ctx context.Context, ids []string) ([]*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error

	// DeleteMany removes users in a single transaction. If any target
	// has the admin role the whole batch is rejected with
	// ErrAdminProtected and nothing is deleted.
	DeleteMany(ctx context.Context, ids []string) (int, error)

	// TouchActivity stamps the user's last-activity time.
	TouchActivity(ctx context.Context, id string) error

	Count(ctx context.Context) (int, error)
}

// SQLiteUserRepository implements UserRepository backed by SQLite.
type SQLiteUserRepository struct {
	db *database.DB
}

// NewSQLiteUserRepository creates a user repository.
func NewSQLiteUserRepository(db *database.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

const userColumns = `id, username, name, password_hash, role, activity, created_at, updated_at`

// Create inserts a new user. Username, name, password hash and a valid
// role are required. A duplicate username maps to ErrUsernameTaken.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	if err := validateUser(user); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = "usr-" + uuid.NewString()[:16]
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Activity = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Name, user.PasswordHash, string(user.Role),
		now.Format(time.RFC3339), now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", user.Username, ErrUsernameTaken)
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername retrieves a user by username.
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *SQLiteUserRepository) getBy(ctx context.Context, column, value string) (*User, error) {
	row := r.db.QueryRowContext(ctx, //nolint:gosec // column is a fixed literal from callers
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", value, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// List returns all users ordered by username.
func (r *SQLiteUserRepository) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// ListByIDs returns the users matching ids, ordered by username.
// Unknown IDs are silently skipped.
func (r *SQLiteUserRepository) ListByIDs(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, //nolint:gosec // Placeholder list only, no user input in SQL string
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)
		 ORDER BY username COLLATE NOCASE`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users by id: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// Update overwrites username, name and role, stamping both updated_at
// and the last-activity time. The password hash is managed separately
// by UpdatePassword. A username collision with another user maps to
// ErrUsernameTaken.
func (r *SQLiteUserRepository) Update(ctx context.Context, user *User) error {
	var missing []string
	if strings.TrimSpace(user.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(user.Name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	if !user.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, user.Role)
	}

	user.UpdatedAt = time.Now().UTC()
	user.Activity = user.UpdatedAt
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET username = ?, name = ?, role = ?, activity = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.Name, string(user.Role),
		user.Activity.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339), user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", user.Username, ErrUsernameTaken)
		}
		return fmt.Errorf("updating user: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", user.ID, ErrUserNotFound)
	}
	return nil
}

// UpdatePassword replaces a user's password hash, stamping the
// last-activity time alongside updated_at.
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, activity = ?, updated_at = ? WHERE id = ?`,
		passwordHash, now, now, id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrUserNotFound)
	}
	return nil
}

// Delete removes a single user.
func (r *SQLiteUserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrUserNotFound)
	}
	return nil
}

// DeleteMany removes a batch of users, all or nothing.
//
// The batch runs in one transaction: if any targeted user holds the
// admin role, ErrAdminProtected is returned and no user is deleted,
// including the non-admins in the batch.
func (r *SQLiteUserRepository) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	var adminCount int
	err = tx.QueryRowContext(ctx, //nolint:gosec // Placeholder list only, no user input in SQL string
		`SELECT COUNT(*) FROM users WHERE id IN (`+placeholders+`) AND role = 'admin'`,
		args...,
	).Scan(&adminCount)
	if err != nil {
		return 0, fmt.Errorf("checking batch roles: %w", err)
	}
	if adminCount > 0 {
		return 0, ErrAdminProtected
	}

	result, err := tx.ExecContext(ctx, //nolint:gosec // Placeholder list only, no user input in SQL string
		`DELETE FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting users: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting users: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing batch delete: %w", err)
	}
	return int(n), nil
}

// TouchActivity stamps the user's last-activity time to now.
func (r *SQLiteUserRepository) TouchActivity(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET activity = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}
	return nil
}

// Count returns the total number of users.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

func validateUser(user *User) error {
	var missing []string
	if strings.TrimSpace(user.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(user.Name) == "" {
		missing = append(missing, "name")
	}
	if user.PasswordHash == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	if !user.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, user.Role)
	}
	return nil
}

func scanUser(s interface{ Scan(dest ...any) error }) (*User, error) {
	var user User
	var role, activity, createdAt, updatedAt string

	err := s.Scan(
		&user.ID, &user.Username, &user.Name, &user.PasswordHash,
		&role, &activity, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = Role(role)
	user.Activity, _ = time.Parse(time.RFC3339, activity)   //nolint:errcheck // Format is ours
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is ours
	user.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is ours
	return &user, nil
}

// isUniqueViolation reports whether err is a violation of the unique
// username constraint specifically, not just any constraint class.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return false
	}
	return strings.Contains(sqliteErr.Error(), "users.username")
}
