package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AutomotiveCenterInfo holds the address and opening hours of a workshop.
type AutomotiveCenterInfo struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	ConfigurationID uuid.UUID      `gorm:"column:configuration_id;type:uuid;not null;uniqueIndex"`
	Address         string         `gorm:"column:address;not null"`
	BusinessHours   datatypes.JSON `gorm:"column:business_hours;not null"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *AutomotiveCenterInfo) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	if len(a.BusinessHours) == 0 {
		a.BusinessHours = datatypes.JSON("{}")
	}
	return nil
}
