// Package entitlements decides which agents a viewer may see and configure.
// Every denial is the same not-found error so hidden agents are
// indistinguishable from missing ones.
package entitlements

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/visibility"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Viewer identifies the caller of a gated operation.
type Viewer struct {
	UserID uuid.UUID
	Staff  bool
}

type agentLoader interface {
	FindAgent(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	IsAllowListed(ctx context.Context, agentID, userID uuid.UUID) (bool, error)
}

type subscriptionFinder interface {
	FindByUserAgent(ctx context.Context, userID, agentID uuid.UUID) (*models.UserSubscription, error)
}

// Gate resolves agents for a viewer.
type Gate struct {
	agents agentLoader
	subs   subscriptionFinder
}

func NewGate(agents agentLoader, subs subscriptionFinder) (*Gate, error) {
	if agents == nil {
		return nil, fmt.Errorf("agent loader is required")
	}
	if subs == nil {
		return nil, fmt.Errorf("subscription finder is required")
	}
	return &Gate{agents: agents, subs: subs}, nil
}

// ViewAccess is the result of a detail-page check.
type ViewAccess struct {
	Agent           *models.Agent
	Subscription    *models.UserSubscription
	HasSubscription bool
}

// View applies the detail-page rule: staff see everything, other viewers need
// a public listing flag or an allow-list entry.
func (g *Gate) View(ctx context.Context, viewer Viewer, agentID uuid.UUID) (*ViewAccess, error) {
	agent, err := g.load(ctx, agentID)
	if err != nil {
		return nil, err
	}

	allowListed := false
	if !viewer.Staff && !agent.IsPublic() {
		allowListed, err = g.agents.IsAllowListed(ctx, agent.ID, viewer.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check allow list")
		}
	}
	if err := visibility.EnsureAgentVisible(visibility.AgentViewInput{
		Agent:       agent,
		ViewerStaff: viewer.Staff,
		AllowListed: allowListed,
	}); err != nil {
		return nil, err
	}

	sub, err := g.subs.FindByUserAgent(ctx, viewer.UserID, agent.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	return &ViewAccess{
		Agent:           agent,
		Subscription:    sub,
		HasSubscription: sub != nil && sub.Status.Entitles(),
	}, nil
}

// Configure applies the configuration-screen rule: staff pass, other viewers
// need an active subscription.
func (g *Gate) Configure(ctx context.Context, viewer Viewer, agentID uuid.UUID) (*models.Agent, *models.UserSubscription, error) {
	agent, err := g.load(ctx, agentID)
	if err != nil {
		return nil, nil, err
	}
	sub, err := g.subs.FindByUserAgent(ctx, viewer.UserID, agent.ID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	if err := visibility.EnsureEntitled(visibility.EntitlementInput{
		Agent:        agent,
		ViewerStaff:  viewer.Staff,
		Subscription: sub,
	}); err != nil {
		return nil, nil, err
	}
	return agent, sub, nil
}

func (g *Gate) load(ctx context.Context, agentID uuid.UUID) (*models.Agent, error) {
	if agentID == uuid.Nil {
		return nil, visibility.NotFound()
	}
	agent, err := g.agents.FindAgent(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visibility.NotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load agent")
	}
	return agent, nil
}
