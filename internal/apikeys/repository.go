package apikeys

import (
	"context"
	"time"

	"github.com/angelmondragon/iacol-backend/internal/repo"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, key *models.APIKey) error {
	return r.DB(ctx).Omit("CreatedBy").Create(key).Error
}

// FindActiveByHash loads an active key with its creator.
func (r *Repository) FindActiveByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	var key models.APIKey
	err := r.DB(ctx).
		Preload("CreatedBy").
		Where("key_hash = ? AND is_active = ?", hash, true).
		First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *Repository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

func (r *Repository) List(ctx context.Context) ([]models.APIKey, error) {
	keys := []models.APIKey{}
	err := r.DB(ctx).Preload("CreatedBy").Order("created_at DESC").Find(&keys).Error
	return keys, err
}

func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
