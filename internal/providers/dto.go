package providers

import (
	"time"

	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/internal/taxonomy"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
)

type ProviderDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	City      string          `json:"city"`
	ImageURL  *string         `json:"image_url"`
	Category  *taxonomy.Item  `json:"category"`
	Brands    []taxonomy.Item `json:"brands"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProviderPage struct {
	Providers []ProviderDTO   `json:"providers"`
	Meta      pagination.Meta `json:"pagination"`
}

// Options are the category and brand choices of the caller's configuration.
type Options struct {
	Categories []taxonomy.Item `json:"categories"`
	Brands     []taxonomy.Item `json:"brands"`
}

func toDTO(p *models.Provider, mediaPrefix string) ProviderDTO {
	brands := make([]taxonomy.Item, 0, len(p.Brands))
	for i := range p.Brands {
		brands = append(brands, taxonomy.ToItem(&p.Brands[i]))
	}
	return ProviderDTO{
		ID:        p.ID,
		Name:      p.Name,
		Phone:     p.Phone,
		City:      p.City,
		ImageURL:  media.PublicURL(mediaPrefix, p.ImagePath),
		Category:  taxonomy.ItemPtr(p.Category),
		Brands:    brands,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
