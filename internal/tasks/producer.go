package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/metrics"
	"github.com/google/uuid"
)

type queueWriter interface {
	Enqueue(ctx context.Context, queue string, payload []byte) error
}

// Producer pushes tasks onto the shared queue. Callers never wait for results.
type Producer struct {
	store   queueWriter
	queue   string
	metrics *metrics.TaskMetrics
	now     func() time.Time
}

func NewProducer(store queueWriter, queue string, m *metrics.TaskMetrics) (*Producer, error) {
	if store == nil {
		return nil, errors.New("queue store is required")
	}
	if queue == "" {
		return nil, errors.New("queue name is required")
	}
	return &Producer{store: store, queue: queue, metrics: m, now: time.Now}, nil
}

// Enqueue serializes payload into a task of the given type and returns its id.
func (p *Producer) Enqueue(ctx context.Context, taskType enums.TaskType, payload any) (string, error) {
	if !taskType.IsValid() {
		return "", fmt.Errorf("unknown task type %q", taskType)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", taskType, err)
	}
	task := Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		Payload:    body,
		EnqueuedAt: p.now().UTC(),
	}
	raw, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("encode task: %w", err)
	}
	if err := p.store.Enqueue(ctx, p.queue, raw); err != nil {
		return "", fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	p.metrics.IncEnqueued(taskType.String())
	return task.ID, nil
}

// SendEmail schedules a plain-text email.
func (p *Producer) SendEmail(ctx context.Context, subject, message string, recipients ...string) error {
	_, err := p.Enqueue(ctx, enums.TaskTypeSendEmail, EmailPayload{
		Subject:    subject,
		Message:    message,
		Recipients: recipients,
	})
	return err
}
