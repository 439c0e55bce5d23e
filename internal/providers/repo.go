package providers

import (
	"context"

	"github.com/angelmondragon/iacol-backend/internal/repo"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists providers. Every query is filtered by configuration.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) List(ctx context.Context, configurationID uuid.UUID, page pagination.Page) ([]models.Provider, int64, error) {
	var total int64
	if err := r.Scoped(ctx, configurationID).
		Model(&models.Provider{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []models.Provider{}
	err := r.Scoped(ctx, configurationID).
		Preload("Category").
		Preload("Brands", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("name ASC").
		Scopes(page.Scope).
		Find(&rows).Error
	return rows, total, err
}

func (r *Repository) Find(ctx context.Context, configurationID, id uuid.UUID) (*models.Provider, error) {
	var p models.Provider
	err := r.Scoped(ctx, configurationID).
		Preload("Category").
		Preload("Brands", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save inserts or updates the provider and replaces its brand links in one transaction.
func (r *Repository) Save(ctx context.Context, p *models.Provider, brandIDs []uuid.UUID) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category", "Brands").Save(p).Error; err != nil {
			return err
		}
		brands := make([]models.Brand, 0, len(brandIDs))
		for _, id := range brandIDs {
			brands = append(brands, models.Brand{ID: id})
		}
		return tx.Model(p).Omit("Brands.*").Association("Brands").Replace(brands)
	})
}

// SetImage updates only the image path.
func (r *Repository) SetImage(ctx context.Context, configurationID, id uuid.UUID, path string) error {
	return r.Scoped(ctx, configurationID).
		Model(&models.Provider{}).
		Where("id = ?", id).
		Update("image_path", path).Error
}

func (r *Repository) Delete(ctx context.Context, configurationID, id uuid.UUID) (int64, error) {
	res := r.Scoped(ctx, configurationID).
		Where("id = ?", id).
		Delete(&models.Provider{})
	return res.RowsAffected, res.Error
}
