package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AgentUsageLog is one execution reported by the automation engine. Rows are
// never updated.
type AgentUsageLog struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index:idx_usage_logs_user_agent_created,priority:1"`
	AgentID       uuid.UUID      `gorm:"column:agent_id;type:uuid;not null;index:idx_usage_logs_user_agent_created,priority:2"`
	Agent         *Agent         `gorm:"foreignKey:AgentID;constraint:OnDelete:CASCADE"`
	ExecutionID   string         `gorm:"column:execution_id;not null;index"`
	InputData     datatypes.JSON `gorm:"column:input_data;not null"`
	OutputData    datatypes.JSON `gorm:"column:output_data;not null"`
	ExecutionTime float64        `gorm:"column:execution_time;not null"`
	Success       bool           `gorm:"column:success;not null"`
	ErrorMessage  *string        `gorm:"column:error_message"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime;index:idx_usage_logs_user_agent_created,priority:3"`
}

func (l *AgentUsageLog) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	if len(l.InputData) == 0 {
		l.InputData = datatypes.JSON("{}")
	}
	if len(l.OutputData) == 0 {
		l.OutputData = datatypes.JSON("{}")
	}
	return nil
}
