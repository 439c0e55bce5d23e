package entitlements_test

import (
	"context"
	"testing"

	"github.com/angelmondragon/iacol-backend/internal/catalog"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/testdb"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGate(t *testing.T, conn *gorm.DB) *entitlements.Gate {
	t.Helper()
	gate, err := entitlements.NewGate(catalog.NewRepository(conn), entitlements.NewRepository(conn))
	require.NoError(t, err)
	return gate
}

func TestConfigureRequiresActiveSubscription(t *testing.T) {
	conn := testdb.Open(t)
	gate := newGate(t, conn)
	ctx := context.Background()

	agent := testdb.Agent(t, conn, "MechAI")
	active := testdb.User(t, conn, enums.UserRoleUser)
	testdb.Subscribe(t, conn, active.ID, agent.ID, enums.SubscriptionStatusActive)

	got, sub, err := gate.Configure(ctx, entitlements.Viewer{UserID: active.ID}, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, got.ID)
	require.NotNil(t, sub)

	for _, status := range []enums.SubscriptionStatus{
		enums.SubscriptionStatusInactive,
		enums.SubscriptionStatusExpired,
		enums.SubscriptionStatusCancelled,
	} {
		user := testdb.User(t, conn, enums.UserRoleUser)
		testdb.Subscribe(t, conn, user.ID, agent.ID, status)
		_, _, err := gate.Configure(ctx, entitlements.Viewer{UserID: user.ID}, agent.ID)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), status)
	}

	stranger := testdb.User(t, conn, enums.UserRoleUser)
	_, _, err = gate.Configure(ctx, entitlements.Viewer{UserID: stranger.ID}, agent.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestConfigureStaffBypassAndMissingAgent(t *testing.T) {
	conn := testdb.Open(t)
	gate := newGate(t, conn)
	ctx := context.Background()

	agent := testdb.Agent(t, conn, "Hidden", testdb.Hidden(), testdb.Inactive())
	staff := testdb.User(t, conn, enums.UserRoleSuperuser)

	_, sub, err := gate.Configure(ctx, entitlements.Viewer{UserID: staff.ID, Staff: true}, agent.ID)
	require.NoError(t, err)
	assert.Nil(t, sub)

	_, _, err = gate.Configure(ctx, entitlements.Viewer{UserID: staff.ID, Staff: true}, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, _, err = gate.Configure(ctx, entitlements.Viewer{UserID: staff.ID, Staff: true}, uuid.Nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeniedAndMissingShareOneError(t *testing.T) {
	conn := testdb.Open(t)
	gate := newGate(t, conn)
	ctx := context.Background()

	hidden := testdb.Agent(t, conn, "Hidden", testdb.Hidden())
	user := testdb.User(t, conn, enums.UserRoleUser)

	_, errHidden := gate.View(ctx, entitlements.Viewer{UserID: user.ID}, hidden.ID)
	_, errMissing := gate.View(ctx, entitlements.Viewer{UserID: user.ID}, uuid.New())
	require.Error(t, errHidden)
	require.Error(t, errMissing)
	assert.Equal(t, errMissing.Error(), errHidden.Error())
}

func TestRepositoryUpsertReplacesStatus(t *testing.T) {
	conn := testdb.Open(t)
	repo := entitlements.NewRepository(conn)
	ctx := context.Background()

	agent := testdb.Agent(t, conn, "Agent")
	user := testdb.User(t, conn, enums.UserRoleUser)
	existing := testdb.Subscribe(t, conn, user.ID, agent.ID, enums.SubscriptionStatusActive)

	require.NoError(t, repo.Upsert(ctx, &models.UserSubscription{
		UserID:    user.ID,
		AgentID:   agent.ID,
		Status:    enums.SubscriptionStatusCancelled,
		StartDate: existing.StartDate,
		EndDate:   existing.EndDate,
	}))

	got, err := repo.FindByUserAgent(ctx, user.ID, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, existing.ID, got.ID)
	assert.Equal(t, enums.SubscriptionStatusCancelled, got.Status)
	assert.False(t, got.AutoRenew)

	ids, err := repo.ActiveAgentIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	none, err := repo.FindByUserAgent(ctx, uuid.New(), agent.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}
