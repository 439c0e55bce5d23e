package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider is a supplier contact managed inside a configuration.
type Provider struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ConfigurationID uuid.UUID         `gorm:"column:configuration_id;type:uuid;not null;index"`
	Name            string            `gorm:"column:name;not null"`
	Phone           string            `gorm:"column:phone;not null"`
	City            string            `gorm:"column:city;not null"`
	ImagePath       *string           `gorm:"column:image_path"`
	CategoryID      *uuid.UUID        `gorm:"column:category_id;type:uuid"`
	Category        *ProviderCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Brands          []Brand           `gorm:"many2many:provider_brands;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Provider) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
