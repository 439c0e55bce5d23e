package visibility

import (
	"testing"

	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/google/uuid"
)

func hiddenAgent() *models.Agent {
	return &models.Agent{ID: uuid.New(), IsActive: true}
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if typed.Message() != agentNotFound {
		t.Fatalf("expected uniform message, got %q", typed.Message())
	}
}

func TestEnsureAgentVisible_HiddenAgentIsNotFound(t *testing.T) {
	assertNotFound(t, EnsureAgentVisible(AgentViewInput{Agent: hiddenAgent()}))
	assertNotFound(t, EnsureAgentVisible(AgentViewInput{}))
}

func TestEnsureAgentVisible_Allowed(t *testing.T) {
	cases := map[string]AgentViewInput{
		"staff":        {Agent: hiddenAgent(), ViewerStaff: true},
		"allow-listed": {Agent: hiddenAgent(), AllowListed: true},
		"agents flag":  {Agent: &models.Agent{ShowInAgents: true}},
		"solutions":    {Agent: &models.Agent{ShowInSolutions: true}},
	}
	for name, input := range cases {
		if err := EnsureAgentVisible(input); err != nil {
			t.Fatalf("%s: expected visible, got %v", name, err)
		}
	}
}

func TestEnsureEntitled(t *testing.T) {
	agent := hiddenAgent()

	assertNotFound(t, EnsureEntitled(EntitlementInput{Agent: agent}))

	for _, status := range []enums.SubscriptionStatus{
		enums.SubscriptionStatusInactive,
		enums.SubscriptionStatusExpired,
		enums.SubscriptionStatusCancelled,
	} {
		sub := &models.UserSubscription{AgentID: agent.ID, Status: status}
		assertNotFound(t, EnsureEntitled(EntitlementInput{Agent: agent, Subscription: sub}))
	}

	other := &models.UserSubscription{AgentID: uuid.New(), Status: enums.SubscriptionStatusActive}
	assertNotFound(t, EnsureEntitled(EntitlementInput{Agent: agent, Subscription: other}))

	active := &models.UserSubscription{AgentID: agent.ID, Status: enums.SubscriptionStatusActive}
	if err := EnsureEntitled(EntitlementInput{Agent: agent, Subscription: active}); err != nil {
		t.Fatalf("expected active subscription to entitle, got %v", err)
	}
	if err := EnsureEntitled(EntitlementInput{Agent: agent, ViewerStaff: true}); err != nil {
		t.Fatalf("expected staff bypass, got %v", err)
	}
}

func TestIsListed(t *testing.T) {
	agent := &models.Agent{IsActive: true, ShowInAgents: false, ShowInSolutions: true}
	if IsListed(agent, SurfaceAgents, false) {
		t.Fatal("hidden from agents surface for regular users")
	}
	if !IsListed(agent, SurfaceAgents, true) {
		t.Fatal("staff see all active agents")
	}
	if !IsListed(agent, SurfaceSolutions, false) {
		t.Fatal("solutions flag should list")
	}
	agent.IsActive = false
	if IsListed(agent, SurfaceAgents, true) || IsListed(agent, SurfaceSolutions, false) {
		t.Fatal("inactive agents are never listed")
	}
}
