// Package testdb opens migrated in-memory SQLite databases and seeds fixtures
// for repository and service tests.
package testdb

import (
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an isolated in-memory database with every model migrated.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// User inserts an active user with the given role.
func User(t testing.TB, db *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("user_%s@example.com", uuid.NewString()[:8]),
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// Category inserts an agent category.
func Category(t testing.TB, db *gorm.DB, name string) *models.AgentCategory {
	t.Helper()
	category := &models.AgentCategory{Name: name, Description: name, Icon: "bolt"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

// AgentOption mutates an agent fixture before insert.
type AgentOption func(*models.Agent)

// Hidden removes the agent from both listing surfaces.
func Hidden() AgentOption {
	return func(a *models.Agent) {
		a.ShowInAgents = false
		a.ShowInSolutions = false
	}
}

// InSolutions publishes the agent on the public solutions page.
func InSolutions() AgentOption {
	return func(a *models.Agent) { a.ShowInSolutions = true }
}

// Inactive marks the agent inactive.
func Inactive() AgentOption {
	return func(a *models.Agent) { a.IsActive = false }
}

// WithCapabilities turns on the listed capabilities.
func WithCapabilities(caps ...enums.Capability) AgentOption {
	return func(a *models.Agent) {
		for _, c := range caps {
			switch c {
			case enums.CapabilityProviders:
				a.SupportsProviders = true
			case enums.CapabilityProducts:
				a.SupportsProducts = true
			case enums.CapabilityAutomotiveInfo:
				a.SupportsAutomotiveInfo = true
			case enums.CapabilityAdvancedCatalog:
				a.SupportsAdvancedCatalog = true
			}
		}
	}
}

// Agent inserts an active agent listed on the agents surface.
func Agent(t testing.TB, db *gorm.DB, name string, opts ...AgentOption) *models.Agent {
	t.Helper()
	category := Category(t, db, name+" category")
	agent := &models.Agent{
		Name:          name,
		Description:   name + " description",
		CategoryID:    category.ID,
		Price:         decimal.RequireFromString("49.90"),
		PricingType:   enums.PricingTypeMonthly,
		N8NWorkflowID: "wf-" + uuid.NewString(),
		IsActive:      true,
		ShowInAgents:  true,
		Features:      datatypes.JSON(`["24/7"]`),
	}
	for _, opt := range opts {
		opt(agent)
	}
	if err := db.Create(agent).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return agent
}

// Subscribe inserts a subscription with the given status valid for thirty days.
func Subscribe(t testing.TB, db *gorm.DB, userID, agentID uuid.UUID, status enums.SubscriptionStatus) *models.UserSubscription {
	t.Helper()
	now := time.Now().UTC()
	sub := &models.UserSubscription{
		UserID:    userID,
		AgentID:   agentID,
		Status:    status,
		StartDate: now,
		EndDate:   now.Add(30 * 24 * time.Hour),
		AutoRenew: true,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	return sub
}

// Configuration inserts a configuration with the listed flags enabled.
func Configuration(t testing.TB, db *gorm.DB, userID, agentID uuid.UUID, enabled ...enums.Capability) *models.AgentConfiguration {
	t.Helper()
	cfg := &models.AgentConfiguration{UserID: userID, AgentID: agentID}
	for _, c := range enabled {
		switch c {
		case enums.CapabilityProviders:
			cfg.EnableProviders = true
		case enums.CapabilityProducts:
			cfg.EnableProducts = true
		case enums.CapabilityAutomotiveInfo:
			cfg.EnableAutomotiveInfo = true
		case enums.CapabilityAdvancedCatalog:
			cfg.EnableAdvancedCatalog = true
		}
	}
	if err := db.Create(cfg).Error; err != nil {
		t.Fatalf("create configuration: %v", err)
	}
	return cfg
}
