// Package dashboard assembles the per-user home screen and the per-agent
// usage screen. Database outages surface as dependency errors that send the
// client back to the home page.
package dashboard

import (
	"context"
	"fmt"

	"github.com/angelmondragon/iacol-backend/internal/cache"
	"github.com/angelmondragon/iacol-backend/internal/catalog"
	"github.com/angelmondragon/iacol-backend/internal/configurations"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/usage"
	"github.com/angelmondragon/iacol-backend/pkg/db"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	homeRecentLogs  = 5
	agentRecentLogs = 10
)

// HomeRedirect is returned with dependency failures.
const HomeRedirect = "/"

type SubscribedAgent struct {
	Subscription catalog.SubscriptionDTO `json:"subscription"`
	Agent        catalog.AgentDTO        `json:"agent"`
}

type Home struct {
	ActiveSubscriptions []SubscribedAgent `json:"active_subscriptions"`
	TotalExecutions     int64             `json:"total_executions"`
	RecentLogs          []usage.LogDTO    `json:"recent_logs"`
}

type AgentDashboard struct {
	Agent         catalog.AgentDTO                 `json:"agent"`
	Subscription  *catalog.SubscriptionDTO         `json:"subscription"`
	Stats         usage.Stats                      `json:"stats"`
	RecentLogs    []usage.LogDTO                   `json:"recent_logs"`
	Configuration *configurations.ConfigurationDTO `json:"configuration"`
}

type Service interface {
	Home(ctx context.Context, viewer entitlements.Viewer) (*Home, error)
	Agent(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*AgentDashboard, error)
}

type subscriptionLister interface {
	ListActive(ctx context.Context, userID uuid.UUID) ([]models.UserSubscription, error)
}

type configureGate interface {
	Configure(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*models.Agent, *models.UserSubscription, error)
}

type configurationFinder interface {
	Find(ctx context.Context, userID, agentID uuid.UUID) (*models.AgentConfiguration, error)
}

type ServiceParams struct {
	Subs           subscriptionLister
	Gate           configureGate
	Usage          usage.Service
	Configurations configurationFinder
	Cache          *cache.Cache
	Mapper         catalog.Mapper
	Logger         *logger.Logger
}

type service struct {
	subs    subscriptionLister
	gate    configureGate
	usage   usage.Service
	configs configurationFinder
	cache   *cache.Cache
	mapper  catalog.Mapper
	logg    *logger.Logger
}

func NewService(p ServiceParams) (Service, error) {
	if p.Subs == nil || p.Gate == nil {
		return nil, fmt.Errorf("subscription lookups required")
	}
	if p.Usage == nil {
		return nil, fmt.Errorf("usage service required")
	}
	if p.Configurations == nil {
		return nil, fmt.Errorf("configuration finder required")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		subs:    p.Subs,
		gate:    p.Gate,
		usage:   p.Usage,
		configs: p.Configurations,
		cache:   p.Cache,
		mapper:  p.Mapper,
		logg:    logg,
	}, nil
}

// Home is cached per user for the cache TTL.
func (s *service) Home(ctx context.Context, viewer entitlements.Viewer) (*Home, error) {
	key := s.cache.Key("dashboard", viewer.UserID.String())
	home, err := cache.Load(ctx, s.cache, key, func(ctx context.Context) (*Home, error) {
		return s.loadHome(ctx, viewer.UserID)
	})
	if err != nil {
		return nil, s.fail(ctx, err, "load dashboard")
	}
	return home, nil
}

func (s *service) loadHome(ctx context.Context, userID uuid.UUID) (*Home, error) {
	subs, err := s.subs.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.usage.Totals(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	recent, err := s.usage.Recent(ctx, userID, nil, homeRecentLogs)
	if err != nil {
		return nil, err
	}

	home := &Home{
		ActiveSubscriptions: make([]SubscribedAgent, 0, len(subs)),
		TotalExecutions:     totals.TotalExecutions,
		RecentLogs:          recent,
	}
	for i := range subs {
		sub := &subs[i]
		if sub.Agent == nil {
			continue
		}
		home.ActiveSubscriptions = append(home.ActiveSubscriptions, SubscribedAgent{
			Subscription: *catalog.SubscriptionFromModel(sub),
			Agent:        s.mapper.Agent(sub.Agent),
		})
	}
	return home, nil
}

// Agent requires a configure-level entitlement. The configuration is nil
// until the user first opens the configure screen.
func (s *service) Agent(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*AgentDashboard, error) {
	ctx = s.logg.WithAgentID(ctx, agentID.String())
	agent, sub, err := s.gate.Configure(ctx, viewer, agentID)
	if err != nil {
		return nil, s.fail(ctx, err, "load agent dashboard")
	}
	stats, err := s.usage.Totals(ctx, viewer.UserID, &agentID)
	if err != nil {
		return nil, s.fail(ctx, err, "load agent dashboard")
	}
	recent, err := s.usage.Recent(ctx, viewer.UserID, &agentID, agentRecentLogs)
	if err != nil {
		return nil, s.fail(ctx, err, "load agent dashboard")
	}
	cfg, err := s.configs.Find(ctx, viewer.UserID, agentID)
	if err != nil {
		return nil, s.fail(ctx, err, "load agent dashboard")
	}
	return &AgentDashboard{
		Agent:         s.mapper.Agent(agent),
		Subscription:  catalog.SubscriptionFromModel(sub),
		Stats:         stats,
		RecentLogs:    recent,
		Configuration: configurations.FromModelPtr(cfg),
	}, nil
}

// fail passes typed errors through and turns database outages into a
// dependency error carrying the home redirect. Driver diagnostics are logged.
func (s *service) fail(ctx context.Context, err error, op string) error {
	if db.IsUnavailable(err) {
		dump := pkgerrors.Dump(err)
		s.logg.Error(s.logg.WithFields(ctx, dump.Fields()), op+": database unavailable", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "No se pudo cargar el panel. Intente de nuevo más tarde.").
			WithDetails(map[string]string{"redirect": HomeRedirect})
	}
	if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeInternal {
		return err
	}
	s.logg.Error(ctx, op, err)
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
