// Package providers manages supplier contacts, their categories and brands
// inside one agent configuration.
package providers

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
	"gorm.io/gorm"
)

const imageDir = "providers"

const invalidChoice = "Seleccione una opción válida."

// Service exposes provider CRUD behind the providers capability.
type Service interface {
	List(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, page pagination.Page) (*ProviderPage, error)
	Get(ctx context.Context, viewer entitlements.Viewer, agentID, providerID uuid.UUID) (*ProviderDTO, error)
	Create(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, input Input) (*ProviderDTO, error)
	Update(ctx context.Context, viewer entitlements.Viewer, agentID, providerID uuid.UUID, input Input) (*ProviderDTO, error)
	Delete(ctx context.Context, viewer entitlements.Viewer, agentID, providerID uuid.UUID) error
	SetImage(ctx context.Context, viewer entitlements.Viewer, agentID, providerID uuid.UUID, r io.Reader) (*ProviderDTO, error)
	Options(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*Options, error)

	ListCategories(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) ([]taxonomy.Item, error)
	CreateCategory(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, name string) (*taxonomy.Item, error)
	DeleteCategory(ctx context.Context, viewer entitlements.Viewer, agentID, id uuid.UUID) error
	ListBrands(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) ([]taxonomy.Item, error)
	CreateBrand(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, name string) (*taxonomy.Item, error)
	DeleteBrand(ctx context.Context, viewer entitlements.Viewer, agentID, id uuid.UUID) error
}

// Input is a full provider write.
type Input struct {
	Name       string
	Phone      string
	City       string
	CategoryID *uuid.UUID
	BrandIDs   []uuid.UUID
}

type scoper interface {
	Scope(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, capability enums.Capability) (*configurations.Scope, error)
}

type ServiceParams struct {
	Repo        *Repository
	Categories  *taxonomy.Table[models.ProviderCategory]
	Brands      *taxonomy.Table[models.Brand]
	Scoper      scoper
	Store       *media.Store
	MediaPrefix string
}

type service struct {
	repo        *Repository
	categories  *taxonomy.Table[models.ProviderCategory]
	brands      *taxonomy.Table[models.Brand]
	scoper      scoper
	store       *media.Store
	mediaPrefix string
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil || p.Categories == nil || p.Brands == nil {
		return nil, fmt.Errorf("provider repositories required")
	}
	if p.Scoper == nil {
		return nil, fmt.Errorf("configuration scoper required")
	}
	return &service{
		repo:        p.Repo,
		categories:  p.Categories,
		brands:      p.Brands,
		scoper:      p.Scoper,
		store:       p.Store,
		mediaPrefix: p.MediaPrefix,
	}, nil
}

func (s *service) scope(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (uuid.UUID, error) {
	sc, err := s.scoper.Scope(ctx, viewer, agentID, enums.CapabilityProviders)
	if err != nil {
		return uuid.Nil, err
	}
	return sc.ConfigurationID(), nil
}

func (s *service) List(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, page pagination.Page) (*ProviderPage, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.repo.List(ctx, cfgID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list providers")
	}
	out := make([]ProviderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i], s.mediaPrefix))
	}
	return &ProviderPage{Providers: out, Meta: pagination.NewMeta(page, total)}, nil
}

func (s *service) Get(ctx context.Context, viewer entitlements.Viewer, agentID, providerID uuid.UUID) (*ProviderDTO, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, cfgID, providerID)
}

func (s *service) Create(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, input Input) (*ProviderDTO, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	p := &models.Provider{ConfigurationID: cfgID}
	if err := s.apply(ctx, cfgID, p, input); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p, input.BrandIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create provider")
	}
	return s.load(ctx, cfgID, p.ID)
}

func (s *service) Update(ctx context.Context, viewer entitlements.Viewer, agentID, providerID uuid.UUID, input Input) (*ProviderDTO, error) {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, cfgID, providerID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, cfgID, p, input); err != nil {
		return nil, err
	}
	p.Category = nil
	if err := s.repo.Save(ctx, p, input.BrandIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update provider")
	}
	return s.load(ctx, cfgID, p.ID)
}

func (s *service) Delete(ctx context.Context, viewer entitlements.Viewer, agentID, providerID uuid.UUID) error {
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return err
	}
	p, err := s.find(ctx, cfgID, providerID)
	if err != nil {
		return err
	}
	if _, err := s.repo.Delete(ctx, cfgID, providerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete provider")
	}
	if p.ImagePath != nil && s.store != nil {
		_ = s.store.Delete(*p.ImagePath)
	}
	return nil
}

func (s *service) SetImage(ctx context.Context, viewer entitlements.Viewer, agentID, providerID uuid.UUID, r io.Reader) (*ProviderDTO, error) {
	if s.store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "media store not configured")
	}
	cfgID, err := s.scope(ctx, viewer, agentID)
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, cfgID, providerID)
	if err != nil {
		return nil, err
	}
	rel, err := s.store.Save(imageDir, r)
	if err != nil {
		return nil, media.FieldError("image", err)
	}
	if err := s.repo.SetImage(ctx, cfgID, providerID, rel); err != nil {
		_ = s.store.Delete(rel)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save provider image")
	}
	if p.ImagePath != nil {
		_ = s.store.Delete(*p.ImagePath)
	}
	return s.load(ctx, cfgID, providerID)
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

// apply validates input against the configuration and copies it onto p.
func (s *service) apply(ctx context.Context, cfgID uuid.UUID, p *models.Provider, input Input) error {
	errs := pkgerrors.FieldErrors{}
	name := strings.TrimSpace(input.Name)
	city := strings.TrimSpace(input.City)
	phone := strings.TrimSpace(input.Phone)

	if name == "" {
		errs.Add("name", "Este campo es obligatorio.")
	} else if utf8.RuneCountInString(name) > 200 {
		errs.Add("name", "Máximo 200 caracteres.")
	}
	if city == "" {
		errs.Add("city", "Este campo es obligatorio.")
	} else if utf8.RuneCountInString(city) > 100 {
		errs.Add("city", "Máximo 100 caracteres.")
	}
	if !fields.Phone(phone) {
		errs.Add("phone", fields.PhoneMessage)
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
	if len(input.BrandIDs) > 0 {
		ok, err := s.brands.Owns(ctx, cfgID, input.BrandIDs...)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check brands")
		}
		if !ok {
			errs.Add("brand_ids", invalidChoice)
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	p.Name = name
	p.City = city
	p.Phone = phone
	p.CategoryID = input.CategoryID
	return nil
}

func (s *service) find(ctx context.Context, cfgID, providerID uuid.UUID) (*models.Provider, error) {
	p, err := s.repo.Find(ctx, cfgID, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "provider not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load provider")
	}
	return p, nil
}

func (s *service) load(ctx context.Context, cfgID, providerID uuid.UUID) (*ProviderDTO, error) {
	p, err := s.find(ctx, cfgID, providerID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(p, s.mediaPrefix)
	return &dto, nil
}
