package configurations

import (
	"context"
	"errors"

	"github.com/angelmondragon/iacol-backend/internal/repo"
	"github.com/angelmondragon/iacol-backend/pkg/db"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Repository persists agent configurations.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// FindByUserAgent returns the configuration for the pair, or nil when none exists.
func (r *Repository) FindByUserAgent(ctx context.Context, userID, agentID uuid.UUID) (*models.AgentConfiguration, error) {
	var cfg models.AgentConfiguration
	err := r.DB(ctx).Where("user_id = ? AND agent_id = ?", userID, agentID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetOrCreate returns the pair's configuration, creating it with an empty
// blob and every flag off. A concurrent insert of the same pair is resolved by
// re-reading the winner.
func (r *Repository) GetOrCreate(ctx context.Context, userID, agentID uuid.UUID) (*models.AgentConfiguration, bool, error) {
	existing, err := r.FindByUserAgent(ctx, userID, agentID)
	if err != nil || existing != nil {
		return existing, false, err
	}

	cfg := &models.AgentConfiguration{UserID: userID, AgentID: agentID, Data: datatypes.JSON("{}")}
	if err := r.DB(ctx).Omit("Agent").Create(cfg).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			winner, findErr := r.FindByUserAgent(ctx, userID, agentID)
			if findErr != nil {
				return nil, false, findErr
			}
			if winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, err
	}
	return cfg, true, nil
}

// ReplaceData overwrites the JSON blob.
func (r *Repository) ReplaceData(ctx context.Context, id uuid.UUID, data datatypes.JSON) error {
	return r.DB(ctx).
		Model(&models.AgentConfiguration{}).
		Where("id = ?", id).
		Update("configuration_data", data).Error
}

// Flip negates one flag column in a single statement and returns the updated row.
func (r *Repository) Flip(ctx context.Context, id uuid.UUID, column string) (*models.AgentConfiguration, error) {
	err := r.DB(ctx).
		Model(&models.AgentConfiguration{}).
		Where("id = ?", id).
		Update(column, gorm.Expr("NOT "+column)).Error
	if err != nil {
		return nil, err
	}
	var cfg models.AgentConfiguration
	if err := r.DB(ctx).First(&cfg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetFlag writes one flag column; used by staff tooling for flags users cannot toggle.
func (r *Repository) SetFlag(ctx context.Context, id uuid.UUID, column string, enabled bool) error {
	return r.DB(ctx).
		Model(&models.AgentConfiguration{}).
		Where("id = ?", id).
		Update(column, enabled).Error
}
