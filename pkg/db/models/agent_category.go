package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentCategory groups catalog entries.
type AgentCategory struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null"`
	Icon        string    `gorm:"column:icon;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *AgentCategory) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
