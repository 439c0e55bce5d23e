package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIKey authenticates machine clients such as the n8n blog publisher. Only
// the SHA-256 digest of the secret is stored.
type APIKey struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	KeyHash     string     `gorm:"column:key_hash;not null;uniqueIndex"`
	Prefix      string     `gorm:"column:prefix;not null"`
	IsActive    bool       `gorm:"column:is_active;not null"`
	CreatedByID uuid.UUID  `gorm:"column:created_by_id;type:uuid;not null;index"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`
	LastUsedAt  *time.Time `gorm:"column:last_used_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (k *APIKey) BeforeCreate(*gorm.DB) error {
	assignID(&k.ID)
	return nil
}
