package users

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/iacol-backend/internal/testdb"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(testdb.Open(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "Ana@Example.com", PasswordHash: "h", FirstName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleUser, user.Role)
	assert.True(t, user.IsActive)

	found, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", byID.FirstName)
}

func TestRepositoryUpdateLastLoginAndPromote(t *testing.T) {
	repo := NewRepository(testdb.Open(t))
	ctx := context.Background()

	inactive := false
	user, err := repo.Create(ctx, CreateUserDTO{Email: "ops@example.com", PasswordHash: "old", IsActive: &inactive})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, now))
	require.NoError(t, repo.Promote(ctx, user.ID, enums.UserRoleSuperuser, "new"))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.Equal(t, enums.UserRoleSuperuser, reloaded.Role)
	assert.Equal(t, "new", reloaded.PasswordHash)
	assert.True(t, reloaded.IsActive)
	assert.True(t, FromModel(reloaded).IsStaff)
}
