package models

import (
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Agent is a purchasable workflow-automation product backed by one n8n workflow.
type Agent struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name            string            `gorm:"column:name;not null"`
	Description     string            `gorm:"column:description;not null"`
	CategoryID      uuid.UUID         `gorm:"column:category_id;type:uuid;not null;index"`
	Category        *AgentCategory    `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Price           decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null"`
	PricingType     enums.PricingType `gorm:"column:pricing_type;type:text;not null"`
	N8NWorkflowID   string            `gorm:"column:n8n_workflow_id;not null;uniqueIndex"`
	IsActive        bool              `gorm:"column:is_active;not null"`
	ShowInAgents    bool              `gorm:"column:show_in_agents;not null"`
	ShowInSolutions bool              `gorm:"column:show_in_solutions;not null"`
	AllowedUsers    []User            `gorm:"many2many:agent_allowed_users;constraint:OnDelete:CASCADE"`
	Features        datatypes.JSON    `gorm:"column:features;not null"`
	ImagePath       *string           `gorm:"column:image_path"`

	SupportsProviders       bool `gorm:"column:supports_providers;not null"`
	SupportsProducts        bool `gorm:"column:supports_products;not null"`
	SupportsAutomotiveInfo  bool `gorm:"column:supports_automotive_info;not null"`
	SupportsAdvancedCatalog bool `gorm:"column:supports_advanced_catalog;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Agent) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	if len(a.Features) == 0 {
		a.Features = datatypes.JSON("[]")
	}
	return nil
}

// Supports reports whether the agent offers the capability module.
func (a *Agent) Supports(c enums.Capability) bool {
	if a == nil {
		return false
	}
	switch c {
	case enums.CapabilityProviders:
		return a.SupportsProviders
	case enums.CapabilityProducts:
		return a.SupportsProducts
	case enums.CapabilityAutomotiveInfo:
		return a.SupportsAutomotiveInfo
	case enums.CapabilityAdvancedCatalog:
		return a.SupportsAdvancedCatalog
	default:
		return false
	}
}

// IsPublic reports whether either listing surface shows the agent.
func (a *Agent) IsPublic() bool {
	return a != nil && (a.ShowInAgents || a.ShowInSolutions)
}
