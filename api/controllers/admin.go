package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/iacol-backend/api/responses"
	"github.com/angelmondragon/iacol-backend/api/validators"
	"github.com/angelmondragon/iacol-backend/internal/apikeys"
	"github.com/angelmondragon/iacol-backend/internal/catalog"
	"github.com/angelmondragon/iacol-backend/internal/configurations"
	"github.com/angelmondragon/iacol-backend/internal/subscriptions"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
)

type categoryPayload struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Icon        string `json:"icon" validate:"max=50"`
}

type agentPayload struct {
	Name            *string            `json:"name"`
	Description     *string            `json:"description"`
	CategoryID      *uuid.UUID         `json:"category_id"`
	Price           *decimal.Decimal   `json:"price"`
	PricingType     *enums.PricingType `json:"pricing_type"`
	N8NWorkflowID   *string            `json:"n8n_workflow_id"`
	IsActive        *bool              `json:"is_active"`
	ShowInAgents    *bool              `json:"show_in_agents"`
	ShowInSolutions *bool              `json:"show_in_solutions"`
	Features        *[]string          `json:"features"`
	Capabilities    *[]string          `json:"capabilities"`
	AllowedUserIDs  *[]uuid.UUID       `json:"allowed_user_ids"`
}

func (p agentPayload) capabilities() (*[]enums.Capability, error) {
	if p.Capabilities == nil {
		return nil, nil
	}
	out := make([]enums.Capability, 0, len(*p.Capabilities))
	for _, raw := range *p.Capabilities {
		c, err := enums.ParseCapability(strings.TrimSpace(raw))
		if err != nil {
			return nil, pkgerrors.NewField("capabilities", "Escoja una opción válida. "+raw+" no es una de las opciones disponibles.")
		}
		out = append(out, c)
	}
	return &out, nil
}

func (p agentPayload) toPatch() (catalog.AgentPatch, error) {
	caps, err := p.capabilities()
	if err != nil {
		return catalog.AgentPatch{}, err
	}
	return catalog.AgentPatch{
		Name:            p.Name,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
		Price:           p.Price,
		PricingType:     p.PricingType,
		N8NWorkflowID:   p.N8NWorkflowID,
		IsActive:        p.IsActive,
		ShowInAgents:    p.ShowInAgents,
		ShowInSolutions: p.ShowInSolutions,
		Features:        p.Features,
		Capabilities:    caps,
		AllowedUserIDs:  p.AllowedUserIDs,
	}, nil
}

// toInput applies the create defaults: active, listed for logged-in users,
// monthly pricing.
func (p agentPayload) toInput() (catalog.AgentInput, error) {
	caps, err := p.capabilities()
	if err != nil {
		return catalog.AgentInput{}, err
	}
	input := catalog.AgentInput{
		PricingType:  enums.PricingTypeMonthly,
		IsActive:     true,
		ShowInAgents: true,
	}
	if p.Name != nil {
		input.Name = *p.Name
	}
	if p.Description != nil {
		input.Description = *p.Description
	}
	if p.CategoryID != nil {
		input.CategoryID = *p.CategoryID
	}
	if p.Price != nil {
		input.Price = *p.Price
	}
	if p.PricingType != nil {
		input.PricingType = *p.PricingType
	}
	if p.N8NWorkflowID != nil {
		input.N8NWorkflowID = *p.N8NWorkflowID
	}
	if p.IsActive != nil {
		input.IsActive = *p.IsActive
	}
	if p.ShowInAgents != nil {
		input.ShowInAgents = *p.ShowInAgents
	}
	if p.ShowInSolutions != nil {
		input.ShowInSolutions = *p.ShowInSolutions
	}
	if p.Features != nil {
		input.Features = *p.Features
	}
	if caps != nil {
		input.Capabilities = *caps
	}
	if p.AllowedUserIDs != nil {
		input.AllowedUserIDs = *p.AllowedUserIDs
	}
	return input, nil
}

type flagPayload struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Enabled bool      `json:"enabled"`
}

type apiKeyPayload struct {
	Name string `json:"name"`
}

type adminAgentList struct {
	Agents []catalog.AdminAgentDTO `json:"agents"`
	Meta   pagination.Meta         `json:"pagination"`
}

func AdminListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func AdminCreateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body categoryPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.CreateCategory(r.Context(), catalog.CreateCategoryInput{
			Name:        body.Name,
			Description: body.Description,
			Icon:        body.Icon,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func AdminListAgents(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := pagination.NewPage(validators.ParsePage(r), pagination.DefaultLimit)
		agents, meta, err := svc.ListAllAgents(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, adminAgentList{Agents: agents, Meta: meta})
	}
}

func AdminCreateAgent(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body agentPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agent, err := svc.CreateAgent(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, agent)
	}
}

func AdminUpdateAgent(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := validators.URLUUID(r, "agentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body agentPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		patch, err := body.toPatch()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agent, err := svc.UpdateAgent(r.Context(), agentID, patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, agent)
	}
}

// AdminAgentImage replaces an agent's catalog image from a multipart upload.
func AdminAgentImage(svc catalog.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := validators.URLUUID(r, "agentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		file, err := multipartImage(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if file == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.NewField("image", noFileMessage))
			return
		}
		defer file.Close()

		agent, err := svc.SetAgentImage(r.Context(), agentID, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, agent)
	}
}

// AdminSetModuleFlag sets any module flag, including staff-only ones, on a
// user's configuration.
func AdminSetModuleFlag(svc configurations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := validators.URLUUID(r, "agentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body flagPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		capability, err := enums.ParseCapability(chi.URLParam(r, "module"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "module not found"))
			return
		}
		dto, err := svc.SetFlag(r.Context(), body.UserID, agentID, capability, body.Enabled)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminGrantSubscription(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body subscriptions.GrantInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sub, err := svc.Grant(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sub)
	}
}

func AdminCreateAPIKey(svc apikeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body apiKeyPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		issued, err := svc.Create(r.Context(), viewer.UserID, body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, issued)
	}
}

func AdminListAPIKeys(svc apikeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, keys)
	}
}

func AdminRevokeAPIKey(svc apikeys.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLUUID(r, "keyID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Revoke(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
