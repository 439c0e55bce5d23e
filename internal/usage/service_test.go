package usage_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/angelmondragon/iacol-backend/internal/catalog"
	"github.com/angelmondragon/iacol-backend/internal/testdb"
	"github.com/angelmondragon/iacol-backend/internal/usage"
	"github.com/angelmondragon/iacol-backend/internal/users"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type executionCounter struct{ ok, failed int }

func (c *executionCounter) ExecutionLogged(success bool) {
	if success {
		c.ok++
		return
	}
	c.failed++
}

func newService(t *testing.T) (usage.Service, *gorm.DB, *executionCounter) {
	t.Helper()
	conn := testdb.Open(t)
	counter := &executionCounter{}
	svc, err := usage.NewService(usage.ServiceParams{
		Repo:    usage.NewRepository(conn),
		Agents:  catalog.NewRepository(conn),
		Users:   users.NewRepository(conn),
		Metrics: counter,
	})
	require.NoError(t, err)
	return svc, conn, counter
}

func boolPtr(b bool) *bool { return &b }

func TestLogAppliesDefaults(t *testing.T) {
	svc, conn, counter := newService(t)
	user := testdb.User(t, conn, enums.UserRoleUser)
	agent := testdb.Agent(t, conn, "MechAI")

	row, err := svc.Log(context.Background(), usage.LogRequest{
		UserID:      user.ID,
		AgentID:     agent.ID,
		ExecutionID: "exec-1",
	})
	require.NoError(t, err)
	assert.True(t, row.Success)
	assert.Equal(t, 0.0, row.ExecutionTime)
	assert.JSONEq(t, `{}`, string(row.InputData))
	assert.JSONEq(t, `{}`, string(row.OutputData))
	assert.Nil(t, row.ErrorMessage)
	assert.Equal(t, 1, counter.ok)
}

func TestLogDoesNotDeduplicateExecutionIDs(t *testing.T) {
	svc, conn, _ := newService(t)
	user := testdb.User(t, conn, enums.UserRoleUser)
	agent := testdb.Agent(t, conn, "MechAI")
	req := usage.LogRequest{UserID: user.ID, AgentID: agent.ID, ExecutionID: "same"}

	for i := 0; i < 2; i++ {
		_, err := svc.Log(context.Background(), req)
		require.NoError(t, err)
	}
	var count int64
	require.NoError(t, conn.Model(&models.AgentUsageLog{}).Where("execution_id = ?", "same").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestLogRejectsUnknownReferences(t *testing.T) {
	svc, conn, counter := newService(t)
	user := testdb.User(t, conn, enums.UserRoleUser)

	_, err := svc.Log(context.Background(), usage.LogRequest{UserID: user.ID, AgentID: uuid.New()})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Log(context.Background(), usage.LogRequest{UserID: user.ID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Zero(t, counter.ok+counter.failed)
}

func TestLogRejectsMalformedJSON(t *testing.T) {
	svc, conn, _ := newService(t)
	user := testdb.User(t, conn, enums.UserRoleUser)
	agent := testdb.Agent(t, conn, "MechAI")

	_, err := svc.Log(context.Background(), usage.LogRequest{
		UserID:    user.ID,
		AgentID:   agent.ID,
		InputData: json.RawMessage(`{"broken"`),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestStats(t *testing.T) {
	svc, conn, counter := newService(t)
	ctx := context.Background()
	user := testdb.User(t, conn, enums.UserRoleUser)
	agent := testdb.Agent(t, conn, "MechAI")

	empty, err := svc.Stats(ctx, user.ID, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, usage.Stats{}, *empty)

	for _, ok := range []bool{true, true, true, false} {
		_, err := svc.Log(ctx, usage.LogRequest{UserID: user.ID, AgentID: agent.ID, Success: boolPtr(ok)})
		require.NoError(t, err)
	}
	stats, err := svc.Stats(ctx, user.ID, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalExecutions)
	assert.Equal(t, int64(3), stats.SuccessfulExecutions)
	assert.Equal(t, int64(1), stats.FailedExecutions)
	assert.InDelta(t, 75.0, stats.SuccessRate, 0.001)
	assert.Equal(t, 3, counter.ok)
	assert.Equal(t, 1, counter.failed)

	other := testdb.User(t, conn, enums.UserRoleUser)
	otherStats, err := svc.Stats(ctx, other.ID, agent.ID)
	require.NoError(t, err)
	assert.Zero(t, otherStats.TotalExecutions)

	_, err = svc.Stats(ctx, user.ID, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestFeedWalksAllLogs(t *testing.T) {
	svc, conn, _ := newService(t)
	ctx := context.Background()
	user := testdb.User(t, conn, enums.UserRoleUser)
	agent := testdb.Agent(t, conn, "MechAI")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		row := &models.AgentUsageLog{
			UserID:    user.ID,
			AgentID:   agent.ID,
			Success:   true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, conn.Create(row).Error)
	}

	seen := map[uuid.UUID]bool{}
	cursor := ""
	for pages := 0; pages < 5; pages++ {
		page, err := svc.Feed(ctx, user.ID, &agent.ID, pagination.Params{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, l := range page.Logs {
			assert.False(t, seen[l.ID])
			seen[l.ID] = true
			assert.Equal(t, "MechAI", l.AgentName)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Len(t, seen, 5)

	recent, err := svc.Recent(ctx, user.ID, nil, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, base.Add(4*time.Minute), recent[0].CreatedAt.UTC())

	_, err = svc.Feed(ctx, user.ID, nil, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
