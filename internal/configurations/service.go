// Package configurations owns the per-user agent configuration: the JSON
// blob, the capability flags, and the scope check every sub-resource
// operation passes through.
package configurations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/visibility"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Service exposes configuration lifecycle operations.
type Service interface {
	Open(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*Overview, error)
	ReplaceData(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, data json.RawMessage) (*ConfigurationDTO, error)
	Toggle(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, module string) (*ToggleResult, error)
	SetFlag(ctx context.Context, userID, agentID uuid.UUID, capability enums.Capability, enabled bool) (*ConfigurationDTO, error)
	Scope(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, capability enums.Capability) (*Scope, error)
	Find(ctx context.Context, userID, agentID uuid.UUID) (*models.AgentConfiguration, error)
}

type gate interface {
	Configure(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*models.Agent, *models.UserSubscription, error)
}

// Scope is a configuration the viewer may use for one enabled capability.
type Scope struct {
	Agent         *models.Agent
	Configuration *models.AgentConfiguration
	Capability    enums.Capability
}

// ConfigurationID returns the owning configuration; every sub-resource query filters on it.
func (s *Scope) ConfigurationID() uuid.UUID {
	return s.Configuration.ID
}

type service struct {
	repo *Repository
	gate gate
}

func NewService(repo *Repository, gate gate) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("configuration repository required")
	}
	if gate == nil {
		return nil, fmt.Errorf("entitlement gate required")
	}
	return &service{repo: repo, gate: gate}, nil
}

func (s *service) Open(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*Overview, error) {
	agent, _, err := s.gate.Configure(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	cfg, created, err := s.repo.GetOrCreate(ctx, viewer.UserID, agent.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load configuration")
	}
	return &Overview{
		AgentID:       agent.ID,
		AgentName:     agent.Name,
		Configuration: FromModel(cfg),
		Modules:       modules(agent, cfg),
		Created:       created,
	}, nil
}

func (s *service) ReplaceData(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, data json.RawMessage) (*ConfigurationDTO, error) {
	if len(data) == 0 || !json.Valid(data) {
		return nil, pkgerrors.NewField("configuration_data", "must be valid JSON")
	}
	agent, _, err := s.gate.Configure(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	cfg, _, err := s.repo.GetOrCreate(ctx, viewer.UserID, agent.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load configuration")
	}
	if err := s.repo.ReplaceData(ctx, cfg.ID, datatypes.JSON(data)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save configuration")
	}
	updated, err := s.repo.FindByUserAgent(ctx, viewer.UserID, agent.ID)
	if err != nil || updated == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload configuration")
	}
	return FromModelPtr(updated), nil
}

// Toggle flips one user-toggleable module. Unknown and staff-only modules are
// not found; an agent that does not offer the module is forbidden.
func (s *service) Toggle(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, module string) (*ToggleResult, error) {
	capability, err := enums.ParseCapability(module)
	if err != nil || !capability.Toggleable() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "module not found")
	}
	agent, _, err := s.gate.Configure(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.Supports(capability) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "agent does not offer this module")
	}
	cfg, _, err := s.repo.GetOrCreate(ctx, viewer.UserID, agent.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load configuration")
	}
	column, _ := models.FlagColumn(capability)
	updated, err := s.repo.Flip(ctx, cfg.ID, column)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggle module")
	}
	return &ToggleResult{
		Status:   "success",
		Enabled:  updated.Enabled(capability),
		Redirect: ConfigurePath(agent.ID),
	}, nil
}

// SetFlag is the staff path for any flag, including advanced_catalog.
func (s *service) SetFlag(ctx context.Context, userID, agentID uuid.UUID, capability enums.Capability, enabled bool) (*ConfigurationDTO, error) {
	column, ok := models.FlagColumn(capability)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "module not found")
	}
	agent, _, err := s.gate.Configure(ctx, entitlements.Viewer{UserID: userID, Staff: true}, agentID)
	if err != nil {
		return nil, err
	}
	cfg, _, err := s.repo.GetOrCreate(ctx, userID, agent.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load configuration")
	}
	if err := s.repo.SetFlag(ctx, cfg.ID, column, enabled); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set module flag")
	}
	updated, err := s.repo.FindByUserAgent(ctx, userID, agent.ID)
	if err != nil || updated == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload configuration")
	}
	return FromModelPtr(updated), nil
}

// Scope resolves the configuration behind a sub-resource request. The viewer
// must pass the configuration gate, the agent must offer the capability, and
// the flag must be on; every failure is the uniform not-found. Disabled
// modules keep their rows.
func (s *service) Scope(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, capability enums.Capability) (*Scope, error) {
	agent, _, err := s.gate.Configure(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.Supports(capability) {
		return nil, visibility.NotFound()
	}
	cfg, _, err := s.repo.GetOrCreate(ctx, viewer.UserID, agent.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load configuration")
	}
	if !cfg.Enabled(capability) {
		return nil, visibility.NotFound()
	}
	return &Scope{Agent: agent, Configuration: cfg, Capability: capability}, nil
}

func (s *service) Find(ctx context.Context, userID, agentID uuid.UUID) (*models.AgentConfiguration, error) {
	return s.repo.FindByUserAgent(ctx, userID, agentID)
}

// ConfigurePath is where clients land after toggling a module.
func ConfigurePath(agentID uuid.UUID) string {
	return "/agents/" + agentID.String() + "/configure/"
}
