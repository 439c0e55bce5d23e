package automotive

import (
	"context"
	"errors"

	"github.com/angelmondragon/iacol-backend/internal/repo"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Find returns nil when the configuration has no center info yet.
func (r *Repository) Find(ctx context.Context, configurationID uuid.UUID) (*models.AutomotiveCenterInfo, error) {
	var info models.AutomotiveCenterInfo
	err := r.Scoped(ctx, configurationID).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Upsert writes the one row of a configuration.
func (r *Repository) Upsert(ctx context.Context, info *models.AutomotiveCenterInfo) error {
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "configuration_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "business_hours", "updated_at"}),
	}).Create(info).Error
}
