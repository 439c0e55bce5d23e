package catalog

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
)

type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// AgentDTO is the catalog card shape shared by every listing.
type AgentDTO struct {
	ID              uuid.UUID          `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Category        *CategoryDTO       `json:"category,omitempty"`
	Price           string             `json:"price"`
	PricingType     enums.PricingType  `json:"pricing_type"`
	Features        json.RawMessage    `json:"features"`
	ImageURL        *string            `json:"image_url"`
	Capabilities    []enums.Capability `json:"capabilities"`
	IsActive        bool               `json:"is_active"`
	ShowInAgents    bool               `json:"show_in_agents"`
	ShowInSolutions bool               `json:"show_in_solutions"`
}

// AdminAgentDTO adds the fields only staff tooling sees.
type AdminAgentDTO struct {
	AgentDTO
	N8NWorkflowID  string      `json:"n8n_workflow_id"`
	AllowedUserIDs []uuid.UUID `json:"allowed_user_ids,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// AgentPage is the cacheable part of a listing.
type AgentPage struct {
	Agents []AgentDTO      `json:"agents"`
	Meta   pagination.Meta `json:"pagination"`
	Search string          `json:"search"`
}

// AgentListResult is an agents page plus the caller's active subscriptions.
// Subscribed IDs are loaded per request and never cached.
type AgentListResult struct {
	AgentPage
	SubscribedAgentIDs []uuid.UUID `json:"subscribed_agent_ids"`
}

type SubscriptionDTO struct {
	ID        uuid.UUID                `json:"id"`
	AgentID   uuid.UUID                `json:"agent_id"`
	Status    enums.SubscriptionStatus `json:"status"`
	StartDate time.Time                `json:"start_date"`
	EndDate   time.Time                `json:"end_date"`
	AutoRenew bool                     `json:"auto_renew"`
}

type AgentDetailDTO struct {
	Agent           AgentDTO         `json:"agent"`
	HasSubscription bool             `json:"has_subscription"`
	Subscription    *SubscriptionDTO `json:"subscription,omitempty"`
}

// PlanGroup lists the active agents sold under one pricing type.
type PlanGroup struct {
	PricingType enums.PricingType `json:"pricing_type"`
	Agents      []AgentDTO        `json:"agents"`
}

// Mapper renders models with public media URLs.
type Mapper struct {
	MediaPrefix string
}

func (m Mapper) Agent(a *models.Agent) AgentDTO {
	features := json.RawMessage(a.Features)
	if len(features) == 0 {
		features = json.RawMessage("[]")
	}
	dto := AgentDTO{
		ID:              a.ID,
		Name:            a.Name,
		Description:     a.Description,
		Price:           a.Price.StringFixed(2),
		PricingType:     a.PricingType,
		Features:        features,
		ImageURL:        media.PublicURL(m.MediaPrefix, a.ImagePath),
		Capabilities:    Capabilities(a),
		IsActive:        a.IsActive,
		ShowInAgents:    a.ShowInAgents,
		ShowInSolutions: a.ShowInSolutions,
	}
	if a.Category != nil {
		c := CategoryFromModel(a.Category)
		dto.Category = &c
	}
	return dto
}

func (m Mapper) Agents(agents []models.Agent) []AgentDTO {
	out := make([]AgentDTO, 0, len(agents))
	for i := range agents {
		out = append(out, m.Agent(&agents[i]))
	}
	return out
}

func (m Mapper) Admin(a *models.Agent, allowed []uuid.UUID) AdminAgentDTO {
	return AdminAgentDTO{
		AgentDTO:       m.Agent(a),
		N8NWorkflowID:  a.N8NWorkflowID,
		AllowedUserIDs: allowed,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func CategoryFromModel(c *models.AgentCategory) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Description: c.Description, Icon: c.Icon}
}

func SubscriptionFromModel(s *models.UserSubscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:        s.ID,
		AgentID:   s.AgentID,
		Status:    s.Status,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		AutoRenew: s.AutoRenew,
	}
}

// Capabilities lists the modules the agent offers in display order.
func Capabilities(a *models.Agent) []enums.Capability {
	out := []enums.Capability{}
	for _, c := range enums.Capabilities() {
		if a.Supports(c) {
			out = append(out, c)
		}
	}
	return out
}
