package usage

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/google/uuid"
)

// LogRequest is the body posted by the automation engine after each run.
type LogRequest struct {
	UserID        uuid.UUID       `json:"user_id"`
	AgentID       uuid.UUID       `json:"agent_id"`
	ExecutionID   string          `json:"execution_id"`
	InputData     json.RawMessage `json:"input_data"`
	OutputData    json.RawMessage `json:"output_data"`
	ExecutionTime *float64        `json:"execution_time"`
	Success       *bool           `json:"success"`
	ErrorMessage  string          `json:"error_message"`
}

// Stats summarizes the executions of one user on one agent.
type Stats struct {
	TotalExecutions      int64   `json:"total_executions"`
	SuccessfulExecutions int64   `json:"successful_executions"`
	FailedExecutions     int64   `json:"failed_executions"`
	SuccessRate          float64 `json:"success_rate"`
}

func newStats(total, successful int64) Stats {
	s := Stats{
		TotalExecutions:      total,
		SuccessfulExecutions: successful,
		FailedExecutions:     total - successful,
	}
	if total > 0 {
		s.SuccessRate = float64(successful) / float64(total) * 100
	}
	return s
}

type LogDTO struct {
	ID            uuid.UUID       `json:"id"`
	AgentID       uuid.UUID       `json:"agent_id"`
	AgentName     string          `json:"agent_name,omitempty"`
	ExecutionID   string          `json:"execution_id"`
	InputData     json.RawMessage `json:"input_data"`
	OutputData    json.RawMessage `json:"output_data"`
	ExecutionTime float64         `json:"execution_time"`
	Success       bool            `json:"success"`
	ErrorMessage  *string         `json:"error_message"`
	CreatedAt     time.Time       `json:"created_at"`
}

type FeedPage struct {
	Logs       []LogDTO `json:"logs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

func ToDTO(l *models.AgentUsageLog) LogDTO {
	dto := LogDTO{
		ID:            l.ID,
		AgentID:       l.AgentID,
		ExecutionID:   l.ExecutionID,
		InputData:     json.RawMessage(l.InputData),
		OutputData:    json.RawMessage(l.OutputData),
		ExecutionTime: l.ExecutionTime,
		Success:       l.Success,
		ErrorMessage:  l.ErrorMessage,
		CreatedAt:     l.CreatedAt,
	}
	if l.Agent != nil {
		dto.AgentName = l.Agent.Name
	}
	return dto
}

func ToDTOs(rows []models.AgentUsageLog) []LogDTO {
	out := make([]LogDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ToDTO(&rows[i]))
	}
	return out
}
