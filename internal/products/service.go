// Package products manages the product catalog, its categories and brands
// inside one agent configuration. Product images come from a direct upload
// or from a remote URL fetched with a streaming size cap.
package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/iacol-backend/internal/configurations"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/internal/taxonomy"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/fields"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const imageDir = "products"

const invalidChoice = "Seleccione una opción válida."

// Service exposes product CRUD behind the products capability.
type Service interface {
	List(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, filter ListFilter, page pagination.Page) (*ProductPage, error)
	Get(ctx context.Context, viewer entitlements.Viewer, agentID, productID uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, input Input) (*ProductDTO, error)
	Update(ctx context.Context, viewer entitlements.Viewer, agentID, productID uuid.UUID, input Input) (*ProductDTO, error)
	Delete(ctx context.Context, viewer entitlements.Viewer, agentID, productID uuid.UUID) error
	Options(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*Options, error)

	ListCategories(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) ([]taxonomy.Item, error)
	CreateCategory(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, name string) (*taxonomy.Item, error)
	DeleteCategory(ctx context.Context, viewer entitlements.Viewer, agentID, id uuid.UUID) error
	ListBrands(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) ([]taxonomy.Item, error)
	CreateBrand(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, name string) (*taxonomy.Item, error)
	DeleteBrand(ctx context.Context, viewer entitlements.Viewer, agentID, id uuid.UUID) error
}

// Input is a full product write. At most one of Image and ImageURL is used;
// an upload wins. When both are empty on update the current image is kept.
type Input struct {
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  *uuid.UUID
	BrandID     *uuid.UUID
	Image       io.Reader
	ImageURL    string
}

type scoper interface {
	Scope(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, capability enums.Capability) (*configurations.Scope, error)
}

type imageFetcher interface {
	Fetch(ctx context.Context, rawURL, dir string) (string, error)
}

type ServiceParams struct {
	Repo        *Repository
	Categories  *taxonomy.Table[models.ProductCategory]
	Brands      *taxonomy.Table[models.ProductBrand]
	Scoper      scoper
	Store       *media.Store
	Fetcher     imageFetcher
	MediaPrefix string
}

type service struct {
	repo        *Repository
	categories  *taxonomy.Table[models.ProductCategory]
	brands      *taxonomy.Table[models.ProductBrand]
	scoper      scoper
	store       *media.Store
	fetcher     imageFetcher
	mediaPrefix string
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil || p.Categories == nil || p.Brands == nil {
		return nil, fmt.Errorf("product repositories required")
	}
	if p.Scoper == nil {
		return nil, fmt.Errorf("configuration scoper required")
	}
	if p.Store == nil {
		return nil, fmt.Errorf("media store required")
	}
	if p.Fetcher == nil {
		return nil, fmt.Errorf("image fetcher required")
	}
	return &service{
		repo:        p.Repo,
		categories:  p.Categories,
		brands:      p.Brands,
		scoper:      p.Scoper,
		store:       p.Store,
		fetcher:     p.Fetcher,
		mediaPrefix: p.MediaPrefix,
	}, nil
}

func (s *service) scope(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (uuid.UUID, error) {
	sc, err := s.scoper.Scope(ctx, viewer, agentID, enums.CapabilityProducts)
	if err != nil {
		return uuid.Nil, err
	}
	return sc.ConfigurationID(), nil
}

func (s *service) List(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, filter ListFilter, page pagination.Page) (*ProductPage, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	filter.Search = strings.ToLower(strings.TrimSpace(filter.Search))
	rows, total, err := s.repo.List(ctx, cfgID, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i], s.mediaPrefix))
	}
	return &ProductPage{Products: out, Meta: pagination.NewMeta(page, total)}, nil
}

func (s *service) Get(ctx context.Context, viewer entitlements.Viewer, agentID, productID uuid.UUID) (*ProductDTO, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, cfgID, productID)
}

func (s *service) Create(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, input Input) (*ProductDTO, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	p := &models.Product{ConfigurationID: cfgID, ImageUploadMethod: enums.ImageUploadMethodUpload}
	return s.write(ctx, cfgID, p, input)
}

func (s *service) Update(ctx context.Context, viewer entitlements.Viewer, agentID, productID uuid.UUID, input Input) (*ProductDTO, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, cfgID, productID)
	if err != nil {
		return nil, err
	}
	p.Category, p.Brand = nil, nil
	return s.write(ctx, cfgID, p, input)
}

// write validates, acquires the image, then persists. The image is acquired
// last so a validation failure never leaves a stored file behind; a failed
// acquisition aborts the save.
func (s *service) write(ctx context.Context, cfgID uuid.UUID, p *models.Product, input Input) (*ProductDTO, error) {
	if err := s.apply(ctx, cfgID, p, input); err != nil {
		return nil, err
	}

	previous := p.ImagePath
	stored, err := s.acquireImage(ctx, p, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		if stored != "" {
			_ = s.store.Delete(stored)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
	}
	if stored != "" && previous != nil && *previous != stored {
		_ = s.store.Delete(*previous)
	}
	return s.load(ctx, cfgID, p.ID)
}

func (s *service) acquireImage(ctx context.Context, p *models.Product, input Input) (string, error) {
	switch {
	case input.Image != nil:
		rel, err := s.store.Save(imageDir, input.Image)
		if err != nil {
			return "", media.FieldError("image", err)
		}
		p.ImagePath = &rel
		p.ImageURL = nil
		p.ImageUploadMethod = enums.ImageUploadMethodUpload
		return rel, nil
	case strings.TrimSpace(input.ImageURL) != "":
		source := strings.TrimSpace(input.ImageURL)
		rel, err := s.fetcher.Fetch(ctx, source, imageDir)
		if err != nil {
			return "", media.FieldError("image_url", err)
		}
		p.ImagePath = &rel
		p.ImageURL = &source
		p.ImageUploadMethod = enums.ImageUploadMethodURL
		return rel, nil
	default:
		return "", nil
	}
}

func (s *service) Delete(ctx context.Context, viewer entitlements.Viewer, agentID, productID uuid.UUID) error {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return err
	}
	p, err := s.find(ctx, cfgID, productID)
	if err != nil {
		return err
	}
	if _, err := s.repo.Delete(ctx, cfgID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if p.ImagePath != nil {
		_ = s.store.Delete(*p.ImagePath)
	}
	return nil
}

func (s *service) Options(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*Options, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx, cfgID)
	if err != nil {
		return nil, err
	}
	brands, err := s.brands.List(ctx, cfgID)
	if err != nil {
		return nil, err
	}
	return &Options{Categories: categories, Brands: brands}, nil
}

func (s *service) ListCategories(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) ([]taxonomy.Item, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	return s.categories.List(ctx, cfgID)
}

func (s *service) CreateCategory(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, name string) (*taxonomy.Item, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	return s.categories.Create(ctx, cfgID, name)
}

func (s *service) DeleteCategory(ctx context.Context, viewer entitlements.Viewer, agentID, id uuid.UUID) error {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return err
	}
	return s.categories.Delete(ctx, cfgID, id)
}

func (s *service) ListBrands(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) ([]taxonomy.Item, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	return s.brands.List(ctx, cfgID)
}

func (s *service) CreateBrand(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, name string) (*taxonomy.Item, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	return s.brands.Create(ctx, cfgID, name)
}

func (s *service) DeleteBrand(ctx context.Context, viewer entitlements.Viewer, agentID, id uuid.UUID) error {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return err
	}
	return s.brands.Delete(ctx, cfgID, id)
}

func (s *service) apply(ctx context.Context, cfgID uuid.UUID, p *models.Product, input Input) error {
	errs := pkgerrors.FieldErrors{}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)

	if title == "" {
		errs.Add("title", "Este campo es obligatorio.")
	} else if utf8.RuneCountInString(title) > 200 {
		errs.Add("title", "Máximo 200 caracteres.")
	}
	switch {
	case !fields.PriceFits(input.Price):
		errs.Add("price", "Máximo 8 dígitos enteros y 2 decimales.")
	case !input.Price.IsPositive():
		errs.Add("price", "El precio debe ser mayor que 0.")
	}
	if input.CategoryID != nil {
		ok, err := s.categories.Owns(ctx, cfgID, *input.CategoryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category")
		}
		if !ok {
			errs.Add("category_id", invalidChoice)
		}
	}
	if input.BrandID != nil {
		ok, err := s.brands.Owns(ctx, cfgID, *input.BrandID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check brand")
		}
		if !ok {
			errs.Add("brand_id", invalidChoice)
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	p.Title = title
	p.Description = description
	p.Price = input.Price
	p.CategoryID = input.CategoryID
	p.BrandID = input.BrandID
	return nil
}

func (s *service) find(ctx context.Context, cfgID, productID uuid.UUID) (*models.Product, error) {
	p, err := s.repo.Find(ctx, cfgID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return p, nil
}

func (s *service) load(ctx context.Context, cfgID, productID uuid.UUID) (*ProductDTO, error) {
	p, err := s.find(ctx, cfgID, productID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(p, s.mediaPrefix)
	return &dto, nil
}
