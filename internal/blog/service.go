// Package blog stores marketing posts ingested by the automation engine
// through API keys and serves the published ones.
package blog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/pkg/db"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minTitleLen       = 5
	maxTitleLen       = 200
	maxExcerptLen     = 300
	maxMetaLen        = 160
	slugInsertRetries = 3
	requiredMessage   = "Este campo es requerido."
)

type Service interface {
	Create(ctx context.Context, key *models.APIKey, input CreateInput) (*Created, error)
	List(ctx context.Context, page pagination.Page) (*PostPage, error)
	Detail(ctx context.Context, slug string) (*PostDetail, error)
	Sitemap(ctx context.Context) ([]SitemapEntry, error)
}

type ServiceParams struct {
	Repo           *Repository
	Store          *media.Store
	Fetcher        imageFetcher
	Base64MaxBytes int64
	MediaPrefix    string
	Logger         *logger.Logger
}

type service struct {
	repo        *Repository
	store       *media.Store
	fetcher     imageFetcher
	base64Max   int64
	mediaPrefix string
	logg        *logger.Logger
	now         func() time.Time
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("blog repository required")
	}
	if p.Store == nil || p.Fetcher == nil {
		return nil, fmt.Errorf("media store and fetcher required")
	}
	if p.Base64MaxBytes <= 0 {
		return nil, fmt.Errorf("base64 image limit must be positive")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:        p.Repo,
		store:       p.Store,
		fetcher:     p.Fetcher,
		base64Max:   p.Base64MaxBytes,
		mediaPrefix: p.MediaPrefix,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Create validates the payload, stores every provided image and inserts the
// post. Stored images are removed again when the insert fails.
func (s *service) Create(ctx context.Context, key *models.APIKey, input CreateInput) (*Created, error) {
	if key != nil {
		ctx = s.logg.WithField(ctx, "key_prefix", key.Prefix)
	}

	post, err := validate(input)
	if err != nil {
		s.logg.Warn(ctx, "blog post validation failed")
		return nil, err
	}
	post.ID = uuid.New()
	if key != nil {
		post.CreatedByKeyID = &key.ID
	}
	s.logg.Info(s.logg.WithField(ctx, "title", post.Title), "blog post creation attempt")

	stored, err := s.storeImages(ctx, post, input)
	if err != nil {
		s.cleanup(stored)
		return nil, err
	}

	if err := s.insert(ctx, post); err != nil {
		s.cleanup(stored)
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "post_id", post.ID.String()), "blog post created")
	return &Created{
		ID:          post.ID,
		Title:       post.Title,
		Slug:        post.Slug,
		URL:         PostPath(post.Slug),
		IsPublished: post.IsPublished,
		Category:    post.Category,
		CreatedAt:   post.PublishedDate,
	}, nil
}

func validate(input CreateInput) (*models.BlogPost, error) {
	errs := pkgerrors.FieldErrors{}

	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		errs.Add("title", "El título no puede estar vacío")
	case utf8.RuneCountInString(title) < minTitleLen:
		errs.Add("title", "El título debe tener al menos 5 caracteres")
	case utf8.RuneCountInString(title) > maxTitleLen:
		errs.Add("title", fmt.Sprintf("Asegúrese de que este campo no tenga más de %d caracteres.", maxTitleLen))
	}

	category := input.Category
	if category == "" {
		category = enums.BlogCategoryGuides
	}
	if !category.IsValid() {
		names := make([]string, 0, 3)
		for _, c := range enums.BlogCategories() {
			names = append(names, c.String())
		}
		errs.Add("category", "Categoría debe ser una de: "+strings.Join(names, ", "))
	}

	text := func(field string, value *string, max int) string {
		if value == nil || strings.TrimSpace(*value) == "" {
			errs.Add(field, requiredMessage)
			return ""
		}
		if max > 0 && utf8.RuneCountInString(*value) > max {
			errs.Add(field, fmt.Sprintf("Asegúrese de que este campo no tenga más de %d caracteres.", max))
		}
		return *value
	}
	post := &models.BlogPost{
		Title:                   title,
		Category:                category,
		IsPublished:             input.IsPublished,
		Excerpt:                 text("excerpt", input.Excerpt, maxExcerptLen),
		ProblemSection:          text("problem_section", input.ProblemSection, 0),
		WhyAutomateSection:      text("why_automate_section", input.WhyAutomateSection, 0),
		SalesAngleSection:       text("sales_angle_section", input.SalesAngleSection, 0),
		HowItWorksSection:       text("how_it_works_section", input.HowItWorksSection, 0),
		BenefitsSection:         text("benefits_section", input.BenefitsSection, 0),
		HypotheticalCaseSection: text("hypothetical_case_section", input.HypotheticalCaseSection, 0),
		FinalCTASection:         text("final_cta_section", input.FinalCTASection, 0),
		MetaDescription:         strings.TrimSpace(input.MetaDescription),
	}
	if utf8.RuneCountInString(post.MetaDescription) > maxMetaLen {
		errs.Add("meta_description", fmt.Sprintf("Asegúrese de que este campo no tenga más de %d caracteres.", maxMetaLen))
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return post, nil
}

// storeImages returns the relative paths written so far, also on error.
func (s *service) storeImages(ctx context.Context, post *models.BlogPost, input CreateInput) ([]string, error) {
	var stored []string
	errs := pkgerrors.FieldErrors{}
	at := s.now()

	for _, slot := range Slots {
		in := input.image(slot)
		if in.empty() {
			continue
		}
		pathField, sourceField := slotFields(post, slot)

		if raw := strings.TrimSpace(in.Base64); raw != "" {
			img, err := decodeDataURI(raw, s.base64Max)
			if err != nil {
				errs.Add(string(slot)+"_base64", err.Error())
				continue
			}
			rel, err := s.store.SaveNamed(slot.dir(), imageName(slot, post.ID, at, img.ext), img.data)
			if err != nil {
				if typed := pkgerrors.As(media.FieldError(string(slot)+"_base64", err)); typed != nil && typed.Code() == pkgerrors.CodeValidation {
					errs.Add(string(slot)+"_base64", typed.Message())
					continue
				}
				return stored, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store blog image")
			}
			stored = append(stored, rel)
			*pathField = &rel
			continue
		}

		source := strings.TrimSpace(in.URL)
		rel, err := s.fetcher.Fetch(ctx, source, slot.dir())
		if err != nil {
			mapped := pkgerrors.As(media.FieldError(string(slot)+"_url", err))
			if mapped != nil && mapped.Code() == pkgerrors.CodeValidation {
				errs.Add(string(slot)+"_url", mapped.Message())
				continue
			}
			return stored, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetch blog image")
		}
		stored = append(stored, rel)
		*pathField = &rel
		*sourceField = &source
	}

	return stored, errs.Err()
}

// insert picks a free slug and retries when a concurrent insert takes it first.
func (s *service) insert(ctx context.Context, post *models.BlogPost) error {
	base := Slugify(post.Title)
	for attempt := 0; attempt < slugInsertRetries; attempt++ {
		taken, err := s.repo.SlugsLike(ctx, base)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check slug")
		}
		post.Slug = nextSlug(base, taken)

		err = s.repo.Create(ctx, post)
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create blog post")
		}
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "slug already taken")
}

// nextSlug returns base when free, else the first base-N (N >= 2) not taken.
func nextSlug(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		used[t] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}

func (s *service) cleanup(paths []string) {
	for _, p := range paths {
		_ = s.store.Delete(p)
	}
}

func (s *service) List(ctx context.Context, page pagination.Page) (*PostPage, error) {
	posts, total, err := s.repo.ListPublished(ctx, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list blog posts")
	}
	out := make([]PostSummary, 0, len(posts))
	for i := range posts {
		out = append(out, summary(&posts[i], s.mediaPrefix))
	}
	return &PostPage{Posts: out, Meta: pagination.NewMeta(page, total)}, nil
}

// Detail treats drafts as missing.
func (s *service) Detail(ctx context.Context, slug string) (*PostDetail, error) {
	post, err := s.repo.FindPublished(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Post no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load blog post")
	}
	d := detail(post, s.mediaPrefix)
	return &d, nil
}

func (s *service) Sitemap(ctx context.Context) ([]SitemapEntry, error) {
	entries, err := s.repo.PublishedForSitemap(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list blog sitemap")
	}
	return entries, nil
}
