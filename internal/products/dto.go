package products

import (
	"time"

	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/internal/taxonomy"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
)

type ProductDTO struct {
	ID                uuid.UUID               `json:"id"`
	Title             string                  `json:"title"`
	Description       string                  `json:"description"`
	Price             string                  `json:"price"`
	ImageURL          *string                 `json:"image_url"`
	SourceImageURL    *string                 `json:"source_image_url,omitempty"`
	ImageUploadMethod enums.ImageUploadMethod `json:"image_upload_method"`
	Category          *taxonomy.Item          `json:"category"`
	Brand             *taxonomy.Item          `json:"brand"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

type ProductPage struct {
	Products []ProductDTO    `json:"products"`
	Meta     pagination.Meta `json:"pagination"`
}

// Options are the category and brand choices of the caller's configuration.
type Options struct {
	Categories []taxonomy.Item `json:"categories"`
	Brands     []taxonomy.Item `json:"brands"`
}

func toDTO(p *models.Product, mediaPrefix string) ProductDTO {
	return ProductDTO{
		ID:                p.ID,
		Title:             p.Title,
		Description:       p.Description,
		Price:             p.Price.StringFixed(2),
		ImageURL:          media.PublicURL(mediaPrefix, p.ImagePath),
		SourceImageURL:    p.ImageURL,
		ImageUploadMethod: p.ImageUploadMethod,
		Category:          taxonomy.ItemPtr(p.Category),
		Brand:             taxonomy.ItemPtr(p.Brand),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
