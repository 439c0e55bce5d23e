// Package catalog serves the agent marketplace: listings, detail pages, plans
// and the staff operations that maintain agents and categories.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/angelmondragon/iacol-backend/internal/cache"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/pkg/db"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/fields"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/angelmondragon/iacol-backend/pkg/visibility"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const agentImageDir = "agents"

// Service exposes catalog reads and staff maintenance.
type Service interface {
	ListAgents(ctx context.Context, viewer entitlements.Viewer, input ListInput) (*AgentListResult, error)
	ListSolutions(ctx context.Context, input ListInput) (*AgentPage, error)
	AgentDetail(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*AgentDetailDTO, error)
	Plans(ctx context.Context) ([]PlanGroup, error)

	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	ListAllAgents(ctx context.Context, page pagination.Page) ([]AdminAgentDTO, pagination.Meta, error)
	CreateAgent(ctx context.Context, input AgentInput) (*AdminAgentDTO, error)
	UpdateAgent(ctx context.Context, agentID uuid.UUID, input AgentPatch) (*AdminAgentDTO, error)
	SetAgentImage(ctx context.Context, agentID uuid.UUID, r io.Reader) (*AdminAgentDTO, error)
}

// ListInput is a page request with an optional search term.
type ListInput struct {
	Page   pagination.Page
	Search string
}

type CreateCategoryInput struct {
	Name        string
	Description string
	Icon        string
}

// AgentInput carries a validated staff create request.
type AgentInput struct {
	Name            string
	Description     string
	CategoryID      uuid.UUID
	Price           decimal.Decimal
	PricingType     enums.PricingType
	N8NWorkflowID   string
	IsActive        bool
	ShowInAgents    bool
	ShowInSolutions bool
	Features        []string
	Capabilities    []enums.Capability
	AllowedUserIDs  []uuid.UUID
}

// AgentPatch carries optional staff updates; nil fields are left unchanged.
type AgentPatch struct {
	Name            *string
	Description     *string
	CategoryID      *uuid.UUID
	Price           *decimal.Decimal
	PricingType     *enums.PricingType
	N8NWorkflowID   *string
	IsActive        *bool
	ShowInAgents    *bool
	ShowInSolutions *bool
	Features        *[]string
	Capabilities    *[]enums.Capability
	AllowedUserIDs  *[]uuid.UUID
}

type subscribedLister interface {
	ActiveAgentIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// ServiceParams wires a catalog service.
type ServiceParams struct {
	Repo   *Repository
	Gate   *entitlements.Gate
	Subs   subscribedLister
	Cache  *cache.Cache
	Store  *media.Store
	Mapper Mapper
}

type service struct {
	repo   *Repository
	gate   *entitlements.Gate
	subs   subscribedLister
	cache  *cache.Cache
	store  *media.Store
	mapper Mapper
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if p.Gate == nil {
		return nil, fmt.Errorf("entitlement gate required")
	}
	if p.Subs == nil {
		return nil, fmt.Errorf("subscription lister required")
	}
	return &service{
		repo:   p.Repo,
		gate:   p.Gate,
		subs:   p.Subs,
		cache:  p.Cache,
		store:  p.Store,
		mapper: p.Mapper,
	}, nil
}

// permissionClass partitions cached listing pages; staff and regular users see different rows.
func permissionClass(viewer entitlements.Viewer) string {
	if viewer.Staff {
		return "staff"
	}
	return "user"
}

func (s *service) ListAgents(ctx context.Context, viewer entitlements.Viewer, input ListInput) (*AgentListResult, error) {
	search := strings.TrimSpace(input.Search)
	key := s.cache.Key("catalog", string(visibility.SurfaceAgents), permissionClass(viewer), strconv.Itoa(input.Page.Number), search)
	page, err := cache.Load(ctx, s.cache, key, func(ctx context.Context) (AgentPage, error) {
		return s.listPage(ctx, ListFilter{
			Surface: visibility.SurfaceAgents,
			Staff:   viewer.Staff,
			Search:  search,
			Page:    input.Page,
		})
	})
	if err != nil {
		return nil, err
	}

	subscribed, err := s.subs.ActiveAgentIDs(ctx, viewer.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list subscriptions")
	}
	return &AgentListResult{AgentPage: page, SubscribedAgentIDs: subscribed}, nil
}

func (s *service) ListSolutions(ctx context.Context, input ListInput) (*AgentPage, error) {
	search := strings.TrimSpace(input.Search)
	key := s.cache.Key("catalog", string(visibility.SurfaceSolutions), "public", strconv.Itoa(input.Page.Number), search)
	page, err := cache.Load(ctx, s.cache, key, func(ctx context.Context) (AgentPage, error) {
		return s.listPage(ctx, ListFilter{
			Surface: visibility.SurfaceSolutions,
			Search:  search,
			Page:    input.Page,
		})
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) listPage(ctx context.Context, filter ListFilter) (AgentPage, error) {
	agents, total, err := s.repo.ListAgents(ctx, filter)
	if err != nil {
		return AgentPage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list agents")
	}
	return AgentPage{
		Agents: s.mapper.Agents(agents),
		Meta:   pagination.NewMeta(filter.Page, total),
		Search: filter.Search,
	}, nil
}

func (s *service) AgentDetail(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*AgentDetailDTO, error) {
	access, err := s.gate.View(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	return &AgentDetailDTO{
		Agent:           s.mapper.Agent(access.Agent),
		HasSubscription: access.HasSubscription,
		Subscription:    SubscriptionFromModel(access.Subscription),
	}, nil
}

func (s *service) Plans(ctx context.Context) ([]PlanGroup, error) {
	agents, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plans")
	}
	groups := []PlanGroup{}
	index := map[enums.PricingType]int{}
	for i := range agents {
		pt := agents[i].PricingType
		pos, ok := index[pt]
		if !ok {
			pos = len(groups)
			index[pt] = pos
			groups = append(groups, PlanGroup{PricingType: pt, Agents: []AgentDTO{}})
		}
		groups[pos].Agents = append(groups[pos].Agents, s.mapper.Agent(&agents[i]))
	}
	return groups, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		out = append(out, CategoryFromModel(&categories[i]))
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	category := &models.AgentCategory{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Icon:        strings.TrimSpace(input.Icon),
	}
	if category.Name == "" {
		return nil, pkgerrors.NewField("name", "is required")
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	dto := CategoryFromModel(category)
	return &dto, nil
}

func (s *service) ListAllAgents(ctx context.Context, page pagination.Page) ([]AdminAgentDTO, pagination.Meta, error) {
	agents, total, err := s.repo.ListAll(ctx, page)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list agents")
	}
	out := make([]AdminAgentDTO, 0, len(agents))
	for i := range agents {
		out = append(out, s.mapper.Admin(&agents[i], nil))
	}
	return out, pagination.NewMeta(page, total), nil
}

func (s *service) CreateAgent(ctx context.Context, input AgentInput) (*AdminAgentDTO, error) {
	agent := &models.Agent{
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		CategoryID:      input.CategoryID,
		Price:           input.Price,
		PricingType:     input.PricingType,
		N8NWorkflowID:   strings.TrimSpace(input.N8NWorkflowID),
		IsActive:        input.IsActive,
		ShowInAgents:    input.ShowInAgents,
		ShowInSolutions: input.ShowInSolutions,
	}
	features, err := encodeFeatures(input.Features)
	if err != nil {
		return nil, err
	}
	agent.Features = features
	applyCapabilities(agent, input.Capabilities)

	if err := s.validateAgent(ctx, agent, input.AllowedUserIDs); err != nil {
		return nil, err
	}
	if err := s.repo.CreateAgent(ctx, agent); err != nil {
		return nil, mapAgentWriteError(err)
	}
	if len(input.AllowedUserIDs) > 0 {
		if err := s.repo.SetAllowedUsers(ctx, agent, input.AllowedUserIDs); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set allowed users")
		}
	}
	return s.reload(ctx, agent.ID)
}

func (s *service) UpdateAgent(ctx context.Context, agentID uuid.UUID, input AgentPatch) (*AdminAgentDTO, error) {
	agent, err := s.findAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		agent.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		agent.Description = strings.TrimSpace(*input.Description)
	}
	if input.CategoryID != nil {
		agent.CategoryID = *input.CategoryID
		agent.Category = nil
	}
	if input.Price != nil {
		agent.Price = *input.Price
	}
	if input.PricingType != nil {
		agent.PricingType = *input.PricingType
	}
	if input.N8NWorkflowID != nil {
		agent.N8NWorkflowID = strings.TrimSpace(*input.N8NWorkflowID)
	}
	if input.IsActive != nil {
		agent.IsActive = *input.IsActive
	}
	if input.ShowInAgents != nil {
		agent.ShowInAgents = *input.ShowInAgents
	}
	if input.ShowInSolutions != nil {
		agent.ShowInSolutions = *input.ShowInSolutions
	}
	if input.Features != nil {
		features, err := encodeFeatures(*input.Features)
		if err != nil {
			return nil, err
		}
		agent.Features = features
	}
	if input.Capabilities != nil {
		applyCapabilities(agent, *input.Capabilities)
	}

	var allowed []uuid.UUID
	if input.AllowedUserIDs != nil {
		allowed = *input.AllowedUserIDs
	}
	if err := s.validateAgent(ctx, agent, allowed); err != nil {
		return nil, err
	}
	if err := s.repo.SaveAgent(ctx, agent); err != nil {
		return nil, mapAgentWriteError(err)
	}
	if input.AllowedUserIDs != nil {
		if err := s.repo.SetAllowedUsers(ctx, agent, allowed); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set allowed users")
		}
	}
	return s.reload(ctx, agent.ID)
}

func (s *service) SetAgentImage(ctx context.Context, agentID uuid.UUID, r io.Reader) (*AdminAgentDTO, error) {
	if s.store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "media store not configured")
	}
	agent, err := s.findAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	rel, err := s.store.Save(agentImageDir, r)
	if err != nil {
		return nil, media.FieldError("image", err)
	}
	previous := agent.ImagePath
	agent.ImagePath = &rel
	if err := s.repo.SaveAgent(ctx, agent); err != nil {
		_ = s.store.Delete(rel)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save agent image")
	}
	if previous != nil && *previous != rel {
		_ = s.store.Delete(*previous)
	}
	return s.reload(ctx, agent.ID)
}

func (s *service) validateAgent(ctx context.Context, agent *models.Agent, allowed []uuid.UUID) error {
	errs := pkgerrors.FieldErrors{}
	if agent.Name == "" {
		errs.Add("name", "is required")
	}
	if agent.N8NWorkflowID == "" {
		errs.Add("n8n_workflow_id", "is required")
	}
	switch {
	case !fields.PriceFits(agent.Price):
		errs.Add("price", "must have at most 8 integer digits and 2 decimal places")
	case !agent.Price.IsPositive():
		errs.Add("price", "must be greater than 0")
	}
	if !agent.PricingType.IsValid() {
		errs.Add("pricing_type", "is invalid")
	}
	if _, err := s.repo.FindCategory(ctx, agent.CategoryID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
		errs.Add("category_id", "does not exist")
	}
	if len(allowed) > 0 {
		count, err := s.repo.CountUsers(ctx, allowed)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check allowed users")
		}
		if count != int64(len(uniqueIDs(allowed))) {
			errs.Add("allowed_user_ids", "contains unknown users")
		}
	}
	return errs.Err()
}

func (s *service) findAgent(ctx context.Context, agentID uuid.UUID) (*models.Agent, error) {
	agent, err := s.repo.FindAgent(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visibility.NotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load agent")
	}
	return agent, nil
}

func (s *service) reload(ctx context.Context, agentID uuid.UUID) (*AdminAgentDTO, error) {
	agent, err := s.findAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.repo.AllowedUserIDs(ctx, agentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load allowed users")
	}
	dto := s.mapper.Admin(agent, allowed)
	return &dto, nil
}

func encodeFeatures(features []string) (datatypes.JSON, error) {
	clean := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			clean = append(clean, f)
		}
	}
	raw, err := datatypesJSON(clean)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid features")
	}
	return raw, nil
}

func datatypesJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func applyCapabilities(agent *models.Agent, caps []enums.Capability) {
	agent.SupportsProviders = false
	agent.SupportsProducts = false
	agent.SupportsAutomotiveInfo = false
	agent.SupportsAdvancedCatalog = false
	for _, c := range caps {
		switch c {
		case enums.CapabilityProviders:
			agent.SupportsProviders = true
		case enums.CapabilityProducts:
			agent.SupportsProducts = true
		case enums.CapabilityAutomotiveInfo:
			agent.SupportsAutomotiveInfo = true
		case enums.CapabilityAdvancedCatalog:
			agent.SupportsAdvancedCatalog = true
		}
	}
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func mapAgentWriteError(err error) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "n8n workflow already linked to another agent").
			WithDetails(pkgerrors.FieldErrors{"n8n_workflow_id": {"already in use"}})
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save agent")
}
