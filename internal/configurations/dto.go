package configurations

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/google/uuid"
)

type ConfigurationDTO struct {
	ID                    uuid.UUID       `json:"id"`
	AgentID               uuid.UUID       `json:"agent_id"`
	Data                  json.RawMessage `json:"configuration_data"`
	EnableProviders       bool            `json:"enable_providers"`
	EnableProducts        bool            `json:"enable_products"`
	EnableAutomotiveInfo  bool            `json:"enable_automotive_info"`
	EnableAdvancedCatalog bool            `json:"enable_advanced_catalog"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// ModuleState describes one capability module on the configure screen.
type ModuleState struct {
	Name       enums.Capability `json:"name"`
	Eligible   bool             `json:"eligible"`
	Enabled    bool             `json:"enabled"`
	Toggleable bool             `json:"toggleable"`
}

// Overview is the configure screen minus the sub-resource pages.
type Overview struct {
	AgentID       uuid.UUID        `json:"agent_id"`
	AgentName     string           `json:"agent_name"`
	Configuration ConfigurationDTO `json:"configuration"`
	Modules       []ModuleState    `json:"modules"`
	Created       bool             `json:"created"`
}

// ToggleResult is the module toggle response body.
type ToggleResult struct {
	Status   string `json:"status"`
	Enabled  bool   `json:"enabled"`
	Redirect string `json:"redirect"`
}

func FromModel(c *models.AgentConfiguration) ConfigurationDTO {
	data := json.RawMessage(c.Data)
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	return ConfigurationDTO{
		ID:                    c.ID,
		AgentID:               c.AgentID,
		Data:                  data,
		EnableProviders:       c.EnableProviders,
		EnableProducts:        c.EnableProducts,
		EnableAutomotiveInfo:  c.EnableAutomotiveInfo,
		EnableAdvancedCatalog: c.EnableAdvancedCatalog,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

// FromModelPtr maps an optional configuration.
func FromModelPtr(c *models.AgentConfiguration) *ConfigurationDTO {
	if c == nil {
		return nil
	}
	dto := FromModel(c)
	return &dto
}

func modules(agent *models.Agent, cfg *models.AgentConfiguration) []ModuleState {
	out := make([]ModuleState, 0, len(enums.Capabilities()))
	for _, c := range enums.Capabilities() {
		out = append(out, ModuleState{
			Name:       c,
			Eligible:   agent.Supports(c),
			Enabled:    cfg.Enabled(c),
			Toggleable: c.Toggleable(),
		})
	}
	return out
}

// Active reports whether the module is both offered by the agent and switched on.
func (o *Overview) Active(c enums.Capability) bool {
	for _, m := range o.Modules {
		if m.Name == c {
			return m.Eligible && m.Enabled
		}
	}
	return false
}
