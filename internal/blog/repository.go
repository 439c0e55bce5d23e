package blog

import (
	"context"
	"time"

	"github.com/angelmondragon/iacol-backend/internal/repo"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"gorm.io/gorm"
)

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// SlugsLike returns existing slugs equal to base or starting with "base-".
func (r *Repository) SlugsLike(ctx context.Context, base string) ([]string, error) {
	var slugs []string
	err := r.DB(ctx).
		Model(&models.BlogPost{}).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &slugs).Error
	return slugs, err
}

func (r *Repository) Create(ctx context.Context, post *models.BlogPost) error {
	return r.DB(ctx).Create(post).Error
}

func (r *Repository) ListPublished(ctx context.Context, page pagination.Page) ([]models.BlogPost, int64, error) {
	published := func(db *gorm.DB) *gorm.DB {
		return db.Where("is_published = ?", true)
	}
	var total int64
	if err := r.DB(ctx).Model(&models.BlogPost{}).Scopes(published).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	posts := []models.BlogPost{}
	err := r.DB(ctx).
		Scopes(published, page.Scope).
		Order("published_date DESC, id DESC").
		Find(&posts).Error
	return posts, total, err
}

func (r *Repository) FindPublished(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.DB(ctx).Where("slug = ? AND is_published = ?", slug, true).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// SitemapEntry is the slice of a post the sitemap needs.
type SitemapEntry struct {
	Slug        string
	UpdatedDate time.Time
}

func (r *Repository) PublishedForSitemap(ctx context.Context) ([]SitemapEntry, error) {
	var entries []SitemapEntry
	err := r.DB(ctx).
		Model(&models.BlogPost{}).
		Select("slug, updated_date").
		Where("is_published = ?", true).
		Order("published_date DESC").
		Scan(&entries).Error
	return entries, err
}
