package visibility

import (
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
)

// agentNotFound is shared by every gate so callers cannot tell a hidden agent
// from a missing one.
const agentNotFound = "agent not found"

// NotFound returns the canonical gate failure.
func NotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, agentNotFound)
}

// AgentViewInput drives the detail-page visibility check.
type AgentViewInput struct {
	Agent       *models.Agent
	ViewerStaff bool
	AllowListed bool
}

// EnsureAgentVisible lets staff see everything; other viewers need a public
// listing flag or an allow-list entry.
func EnsureAgentVisible(input AgentViewInput) error {
	if input.Agent == nil {
		return NotFound()
	}
	if input.ViewerStaff {
		return nil
	}
	if input.Agent.IsPublic() || input.AllowListed {
		return nil
	}
	return NotFound()
}

// EntitlementInput drives the configuration-screen gate.
type EntitlementInput struct {
	Agent        *models.Agent
	ViewerStaff  bool
	Subscription *models.UserSubscription
}

// EnsureEntitled requires an active subscription for the agent unless the viewer is staff.
func EnsureEntitled(input EntitlementInput) error {
	if input.Agent == nil {
		return NotFound()
	}
	if input.ViewerStaff {
		return nil
	}
	sub := input.Subscription
	if sub == nil || sub.AgentID != input.Agent.ID || !sub.Status.Entitles() {
		return NotFound()
	}
	return nil
}

// IsListed reports whether a listing surface should include the agent.
// Staff see every active agent on the agents surface.
func IsListed(agent *models.Agent, surface Surface, viewerStaff bool) bool {
	if agent == nil || !agent.IsActive {
		return false
	}
	switch surface {
	case SurfaceAgents:
		return viewerStaff || agent.ShowInAgents
	case SurfaceSolutions:
		return agent.ShowInSolutions
	default:
		return false
	}
}

// Surface names a catalog listing.
type Surface string

const (
	SurfaceAgents    Surface = "agents"
	SurfaceSolutions Surface = "solutions"
)
