package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProviderCategory, Brand, ProductCategory and ProductBrand are name-only
// taxonomies scoped to one configuration.

type ProviderCategory struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ConfigurationID uuid.UUID `gorm:"column:configuration_id;type:uuid;not null;uniqueIndex:idx_provider_categories_config_name"`
	Name            string    `gorm:"column:name;not null;uniqueIndex:idx_provider_categories_config_name"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *ProviderCategory) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type Brand struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ConfigurationID uuid.UUID `gorm:"column:configuration_id;type:uuid;not null;uniqueIndex:idx_brands_config_name"`
	Name            string    `gorm:"column:name;not null;uniqueIndex:idx_brands_config_name"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (b *Brand) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}

type ProductCategory struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ConfigurationID uuid.UUID `gorm:"column:configuration_id;type:uuid;not null;uniqueIndex:idx_product_categories_config_name"`
	Name            string    `gorm:"column:name;not null;uniqueIndex:idx_product_categories_config_name"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *ProductCategory) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type ProductBrand struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ConfigurationID uuid.UUID `gorm:"column:configuration_id;type:uuid;not null;uniqueIndex:idx_product_brands_config_name"`
	Name            string    `gorm:"column:name;not null;uniqueIndex:idx_product_brands_config_name"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (b *ProductBrand) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}
