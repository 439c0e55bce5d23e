package dashboard_test

import (
	"context"
	"database/sql/driver"
	"fmt"
	"testing"

	"github.com/angelmondragon/iacol-backend/internal/catalog"
	"github.com/angelmondragon/iacol-backend/internal/configurations"
	"github.com/angelmondragon/iacol-backend/internal/dashboard"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/testdb"
	"github.com/angelmondragon/iacol-backend/internal/usage"
	"github.com/angelmondragon/iacol-backend/internal/users"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type deps struct {
	usage   usage.Service
	subs    *entitlements.Repository
	gate    *entitlements.Gate
	configs configurations.Service
}

func wire(t *testing.T, conn *gorm.DB) deps {
	t.Helper()
	agents := catalog.NewRepository(conn)
	subs := entitlements.NewRepository(conn)
	gate, err := entitlements.NewGate(agents, subs)
	require.NoError(t, err)
	usageSvc, err := usage.NewService(usage.ServiceParams{
		Repo:   usage.NewRepository(conn),
		Agents: agents,
		Users:  users.NewRepository(conn),
	})
	require.NoError(t, err)
	configs, err := configurations.NewService(configurations.NewRepository(conn), gate)
	require.NoError(t, err)
	return deps{usage: usageSvc, subs: subs, gate: gate, configs: configs}
}

func newService(t *testing.T, d deps) dashboard.Service {
	t.Helper()
	svc, err := dashboard.NewService(dashboard.ServiceParams{
		Subs:           d.subs,
		Gate:           d.gate,
		Usage:          d.usage,
		Configurations: d.configs,
		Mapper:         catalog.Mapper{MediaPrefix: "/api/media"},
	})
	require.NoError(t, err)
	return svc
}

func TestHomeAggregates(t *testing.T) {
	conn := testdb.Open(t)
	d := wire(t, conn)
	svc := newService(t, d)
	ctx := context.Background()

	user := testdb.User(t, conn, enums.UserRoleUser)
	active := testdb.Agent(t, conn, "MechAI")
	lapsed := testdb.Agent(t, conn, "FindPart")
	testdb.Subscribe(t, conn, user.ID, active.ID, enums.SubscriptionStatusActive)
	testdb.Subscribe(t, conn, user.ID, lapsed.ID, enums.SubscriptionStatusExpired)

	for i := 0; i < 7; i++ {
		_, err := d.usage.Log(ctx, usage.LogRequest{UserID: user.ID, AgentID: active.ID, ExecutionID: fmt.Sprint(i)})
		require.NoError(t, err)
	}

	home, err := svc.Home(ctx, entitlements.Viewer{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, home.ActiveSubscriptions, 1)
	assert.Equal(t, "MechAI", home.ActiveSubscriptions[0].Agent.Name)
	assert.Equal(t, int64(7), home.TotalExecutions)
	assert.Len(t, home.RecentLogs, 5)
}

func TestAgentDashboard(t *testing.T) {
	conn := testdb.Open(t)
	d := wire(t, conn)
	svc := newService(t, d)
	ctx := context.Background()

	user := testdb.User(t, conn, enums.UserRoleUser)
	agent := testdb.Agent(t, conn, "MechAI")
	testdb.Subscribe(t, conn, user.ID, agent.ID, enums.SubscriptionStatusActive)
	viewer := entitlements.Viewer{UserID: user.ID}

	for i := 0; i < 12; i++ {
		ok := i%4 != 0
		_, err := d.usage.Log(ctx, usage.LogRequest{UserID: user.ID, AgentID: agent.ID, Success: &ok})
		require.NoError(t, err)
	}

	dash, err := svc.Agent(ctx, viewer, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), dash.Stats.TotalExecutions)
	assert.Equal(t, int64(3), dash.Stats.FailedExecutions)
	assert.Len(t, dash.RecentLogs, 10)
	assert.Nil(t, dash.Configuration)
	require.NotNil(t, dash.Subscription)

	_, err = d.configs.Open(ctx, viewer, agent.ID)
	require.NoError(t, err)
	dash, err = svc.Agent(ctx, viewer, agent.ID)
	require.NoError(t, err)
	assert.NotNil(t, dash.Configuration)

	stranger := testdb.User(t, conn, enums.UserRoleUser)
	_, err = svc.Agent(ctx, entitlements.Viewer{UserID: stranger.ID}, agent.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

type brokenSubs struct{}

func (brokenSubs) ListActive(context.Context, uuid.UUID) ([]models.UserSubscription, error) {
	return nil, fmt.Errorf("list subscriptions: %w", driver.ErrBadConn)
}

func TestHomeOutageRedirectsHome(t *testing.T) {
	conn := testdb.Open(t)
	d := wire(t, conn)
	svc, err := dashboard.NewService(dashboard.ServiceParams{
		Subs:           brokenSubs{},
		Gate:           d.gate,
		Usage:          d.usage,
		Configurations: d.configs,
	})
	require.NoError(t, err)

	_, err = svc.Home(context.Background(), entitlements.Viewer{UserID: uuid.New()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
	assert.Equal(t, map[string]string{"redirect": "/"}, typed.Details())
}
