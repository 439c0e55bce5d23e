// Package tasks carries fire-and-forget background jobs from the API to the
// worker over a Redis list.
package tasks

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/enums"
)

// Task is the envelope stored on the queue.
type Task struct {
	ID         string          `json:"id"`
	Type       enums.TaskType  `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// EmailPayload is the body of a send_email task.
type EmailPayload struct {
	Subject    string   `json:"subject"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipient_list"`
}

// HeavyPayload is the body of a heavy_processing task. Data may be any JSON value.
type HeavyPayload struct {
	Data json.RawMessage `json:"data"`
}

// HeavyResult summarizes a heavy_processing run.
type HeavyResult struct {
	ProcessedItems int    `json:"processed_items"`
	Status         string `json:"status"`
}
