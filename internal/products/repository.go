package products

import (
	"context"

	"github.com/angelmondragon/iacol-backend/internal/repo"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists products. Every query is filtered by configuration.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// ListFilter narrows a product page.
type ListFilter struct {
	Search     string
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
}

func (r *Repository) List(ctx context.Context, configurationID uuid.UUID, filter ListFilter, page pagination.Page) ([]models.Product, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("configuration_id = ?", configurationID)
		if filter.Search != "" {
			db = db.Where("lower(title) LIKE ?"+repo.LikeEscape, repo.ContainsPattern(filter.Search))
		}
		if filter.CategoryID != nil {
			db = db.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.BrandID != nil {
			db = db.Where("brand_id = ?", *filter.BrandID)
		}
		return db
	}

	var total int64
	if err := r.DB(ctx).Model(&models.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []models.Product{}
	err := r.DB(ctx).
		Scopes(scope, page.Scope).
		Preload("Category").
		Preload("Brand").
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, total, err
}

func (r *Repository) Find(ctx context.Context, configurationID, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.Scoped(ctx, configurationID).
		Preload("Category").
		Preload("Brand").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Save(ctx context.Context, p *models.Product) error {
	return r.DB(ctx).Omit("Category", "Brand").Save(p).Error
}

func (r *Repository) Delete(ctx context.Context, configurationID, id uuid.UUID) (int64, error) {
	res := r.Scoped(ctx, configurationID).
		Where("id = ?", id).
		Delete(&models.Product{})
	return res.RowsAffected, res.Error
}
