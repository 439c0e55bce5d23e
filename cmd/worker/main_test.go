package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/iacol-backend/internal/tasks"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/metrics"
)

type idleQueue struct{}

func (idleQueue) Dequeue(ctx context.Context, _ string, _ time.Duration) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWorkerDeliversEmailWithoutSMTPAndExportsMetrics(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "worker", Output: &logs})
	reg := prometheus.NewRegistry()

	worker, err := tasks.NewWorker(tasks.WorkerParams{
		Store:   idleQueue{},
		Queue:   "tasks",
		Logger:  logg,
		Metrics: metrics.NewTaskMetrics(reg),
	})
	require.NoError(t, err)
	registerHandlers(context.Background(), worker, &config.Config{}, logg)

	payload, err := json.Marshal(tasks.EmailPayload{
		Subject:    "Bienvenido",
		Message:    "Hola",
		Recipients: []string{"ana@example.com"},
	})
	require.NoError(t, err)
	raw, err := json.Marshal(tasks.Task{ID: "t-1", Type: enums.TaskTypeSendEmail, Payload: payload})
	require.NoError(t, err)
	worker.Process(context.Background(), raw)

	assert.Contains(t, logs.String(), "smtp disabled, email logged only")
	assert.NotContains(t, logs.String(), "no handler registered")

	srv := metricsServer(":0", reg)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `task_success_total{task="send_email"} 1`), body)
	assert.Contains(t, body, `task_duration_seconds_count{task="send_email"} 1`)
}
