package models

import (
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AgentConfiguration is the per-user settings record for one agent. It owns
// every provider, product, taxonomy and automotive row for that pair.
type AgentConfiguration struct {
	ID                    uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID                uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_agent_configurations_user_agent"`
	AgentID               uuid.UUID      `gorm:"column:agent_id;type:uuid;not null;uniqueIndex:idx_agent_configurations_user_agent"`
	Agent                 *Agent         `gorm:"foreignKey:AgentID;constraint:OnDelete:CASCADE"`
	Data                  datatypes.JSON `gorm:"column:configuration_data;not null"`
	EnableProviders       bool           `gorm:"column:enable_providers;not null"`
	EnableProducts        bool           `gorm:"column:enable_products;not null"`
	EnableAutomotiveInfo  bool           `gorm:"column:enable_automotive_info;not null"`
	EnableAdvancedCatalog bool           `gorm:"column:enable_advanced_catalog;not null"`
	CreatedAt             time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *AgentConfiguration) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	if len(c.Data) == 0 {
		c.Data = datatypes.JSON("{}")
	}
	return nil
}

// Enabled reports the flag value backing a capability.
func (c *AgentConfiguration) Enabled(capability enums.Capability) bool {
	if c == nil {
		return false
	}
	switch capability {
	case enums.CapabilityProviders:
		return c.EnableProviders
	case enums.CapabilityProducts:
		return c.EnableProducts
	case enums.CapabilityAutomotiveInfo:
		return c.EnableAutomotiveInfo
	case enums.CapabilityAdvancedCatalog:
		return c.EnableAdvancedCatalog
	default:
		return false
	}
}

// FlagColumn returns the column storing the capability flag.
func FlagColumn(capability enums.Capability) (string, bool) {
	switch capability {
	case enums.CapabilityProviders:
		return "enable_providers", true
	case enums.CapabilityProducts:
		return "enable_products", true
	case enums.CapabilityAutomotiveInfo:
		return "enable_automotive_info", true
	case enums.CapabilityAdvancedCatalog:
		return "enable_advanced_catalog", true
	default:
		return "", false
	}
}
