package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"opsdesk/entities/users"
	"opsdesk/identity"
	"opsdesk/schemas"
)

// SeedAdmin creates an approved admin account unless one with email already
// exists. It reports whether an account was created.
func SeedAdmin(ctx context.Context, store UserStore, email, password string, logger *slog.Logger) (bool, error) {
	if email == "" || password == "" {
		return false, errors.New("admin email and password are required")
	}

	_, err := store.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return false, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := identity.HashPassword(password)
	if err != nil {
		return false, err
	}

	admin := schemas.User{
		Username:   "admin",
		Email:      email,
		Password:   hash,
		Role:       schemas.USERS_ROLE_ADMIN,
		IsApproved: true,
		IsActive:   true,
	}
	err = store.Insert(ctx, &admin)
	if errors.Is(err, users.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert admin: %w", err)
	}

	logger.Info("admin account seeded", "email", admin.Email)
	return true, nil
}
