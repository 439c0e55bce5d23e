package models

import (
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog item managed inside a configuration.
type Product struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ConfigurationID   uuid.UUID               `gorm:"column:configuration_id;type:uuid;not null;index"`
	Title             string                  `gorm:"column:title;not null"`
	Description       string                  `gorm:"column:description;not null"`
	Price             decimal.Decimal         `gorm:"column:price;type:numeric(10,2);not null"`
	ImagePath         *string                 `gorm:"column:image_path"`
	ImageURL          *string                 `gorm:"column:image_url"`
	ImageUploadMethod enums.ImageUploadMethod `gorm:"column:image_upload_method;type:text;not null"`
	CategoryID        *uuid.UUID              `gorm:"column:category_id;type:uuid"`
	Category          *ProductCategory        `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	BrandID           *uuid.UUID              `gorm:"column:brand_id;type:uuid"`
	Brand             *ProductBrand           `gorm:"foreignKey:BrandID;constraint:OnDelete:SET NULL"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	if p.ImageUploadMethod == "" {
		p.ImageUploadMethod = enums.ImageUploadMethodUpload
	}
	return nil
}
