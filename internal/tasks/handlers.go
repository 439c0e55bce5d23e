package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/mailer"
)

type emailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// EmailHandler delivers send_email tasks.
func EmailHandler(sender emailSender) Handler {
	return func(ctx context.Context, task Task) error {
		var payload EmailPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("decode email payload: %w", err)
		}
		return sender.Send(ctx, mailer.Message{
			To:      payload.Recipients,
			Subject: payload.Subject,
			Body:    payload.Message,
		})
	}
}

// HeavyProcessingHandler counts the items in the payload and logs the summary.
func HeavyProcessingHandler(logg *logger.Logger) Handler {
	return func(ctx context.Context, task Task) error {
		var payload HeavyPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("decode heavy payload: %w", err)
		}
		result, err := ProcessHeavy(ctx, payload)
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"processed_items": result.ProcessedItems,
			"status":          result.Status,
		}), "heavy processing finished")
		return nil
	}
}

// ProcessHeavy reports one item for scalar data and the element count for arrays.
func ProcessHeavy(ctx context.Context, payload HeavyPayload) (HeavyResult, error) {
	if err := ctx.Err(); err != nil {
		return HeavyResult{}, err
	}
	data := bytes.TrimSpace(payload.Data)
	count := 1
	if len(data) > 0 && data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return HeavyResult{}, fmt.Errorf("decode heavy data: %w", err)
		}
		count = len(items)
	}
	return HeavyResult{ProcessedItems: count, Status: "completed"}, nil
}
