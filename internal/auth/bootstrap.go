package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/iacol-backend/internal/users"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type superuserStore interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Promote(ctx context.Context, id uuid.UUID, role enums.UserRole, passwordHash string) error
}

// EnsureSuperuser creates the bootstrap superuser, or promotes and resets the
// password of an existing account with the same email. It reports whether a
// new row was created.
func EnsureSuperuser(ctx context.Context, store superuserStore, cfg config.PasswordConfig, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, fmt.Errorf("email and password are required")
	}
	hash, err := security.HashPassword(password, cfg)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	existing, err := store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := store.Promote(ctx, existing.ID, enums.UserRoleSuperuser, hash); err != nil {
			return false, fmt.Errorf("promote %s: %w", email, err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if _, err := store.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: hash,
			FirstName:    "Admin",
			Role:         enums.UserRoleSuperuser,
		}); err != nil {
			return false, fmt.Errorf("create superuser: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("lookup %s: %w", email, err)
	}
}
