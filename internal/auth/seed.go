package auth

import (
	"context"
	"fmt"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/logging"
)

// EnsureDefaultAdmin creates an initial admin account when the users
// table is empty, so a fresh deployment can be logged into.
// Returns true when an account was created.
func EnsureDefaultAdmin(ctx context.Context, repo UserRepository, username, password string, logger *logging.Logger) (bool, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("checking user count: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashing seed password: %w", err)
	}

	admin := &User{
		Username:     username,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         RoleAdmin,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("creating seed admin: %w", err)
	}

	logger.Warn("seeded default admin account, change its password",
		"username", username, "user_id", admin.ID)
	return true, nil
}
