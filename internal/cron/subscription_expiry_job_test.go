package cron_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/iacol-backend/internal/cron"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/testdb"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
)

func TestSubscriptionExpiryJobExpiresLapsedNonRenewing(t *testing.T) {
	conn := testdb.Open(t)
	ctx := context.Background()
	agent := testdb.Agent(t, conn, "MechAI")
	past := time.Now().UTC().Add(-time.Hour)

	lapsed := testdb.Subscribe(t, conn, testdb.User(t, conn, enums.UserRoleUser).ID, agent.ID, enums.SubscriptionStatusActive)
	require.NoError(t, conn.Model(lapsed).Updates(map[string]any{"end_date": past, "auto_renew": false}).Error)

	renewing := testdb.Subscribe(t, conn, testdb.User(t, conn, enums.UserRoleUser).ID, agent.ID, enums.SubscriptionStatusActive)
	require.NoError(t, conn.Model(renewing).Update("end_date", past).Error)

	current := testdb.Subscribe(t, conn, testdb.User(t, conn, enums.UserRoleUser).ID, agent.ID, enums.SubscriptionStatusActive)
	require.NoError(t, conn.Model(current).Update("auto_renew", false).Error)

	job, err := cron.NewSubscriptionExpiryJob(entitlements.NewRepository(conn), logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "subscription_expiry", job.Name())
	require.NoError(t, job.Run(ctx))

	statusOf := func(sub *models.UserSubscription) enums.SubscriptionStatus {
		var got models.UserSubscription
		require.NoError(t, conn.First(&got, "id = ?", sub.ID).Error)
		return got.Status
	}
	assert.Equal(t, enums.SubscriptionStatusExpired, statusOf(lapsed))
	assert.Equal(t, enums.SubscriptionStatusActive, statusOf(renewing))
	assert.Equal(t, enums.SubscriptionStatusActive, statusOf(current))
}
