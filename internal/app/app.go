// Package app builds the service graph shared by the API server and the ops CLI.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/angelmondragon/iacol-backend/internal/apikeys"
	"github.com/angelmondragon/iacol-backend/internal/automotive"
	"github.com/angelmondragon/iacol-backend/internal/blog"
	"github.com/angelmondragon/iacol-backend/internal/cache"
	"github.com/angelmondragon/iacol-backend/internal/catalog"
	"github.com/angelmondragon/iacol-backend/internal/configurations"
	"github.com/angelmondragon/iacol-backend/internal/dashboard"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/internal/products"
	"github.com/angelmondragon/iacol-backend/internal/providers"
	"github.com/angelmondragon/iacol-backend/internal/sitemap"
	"github.com/angelmondragon/iacol-backend/internal/subscriptions"
	"github.com/angelmondragon/iacol-backend/internal/taxonomy"
	"github.com/angelmondragon/iacol-backend/internal/usage"
	"github.com/angelmondragon/iacol-backend/internal/users"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/metrics"
	"github.com/angelmondragon/iacol-backend/pkg/redis"
)

// Params are the infrastructure handles the services are built on.
// Redis and Registerer are optional; without Redis caching is disabled.
type Params struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *gorm.DB
	Redis      *redis.Client
	Registerer prometheus.Registerer
}

// Services is the wired domain layer.
type Services struct {
	Users          *users.Repository
	Subscriptions  *entitlements.Repository
	Gate           *entitlements.Gate
	Catalog        catalog.Service
	Configurations configurations.Service
	Dashboard      dashboard.Service
	Providers      providers.Service
	Products       products.Service
	Automotive     automotive.Service
	Usage          usage.Service
	Blog           blog.Service
	APIKeys        apikeys.Service
	Grants         subscriptions.Service
	Media          *media.Store
	MediaResolver  *media.Resolver
	Sitemap        *sitemap.Builder
	Domain         *metrics.DomainMetrics
	HTTP           *metrics.HTTPMetrics
}

// Build wires every repository and service.
func Build(p Params) (*Services, error) {
	if p.Config == nil || p.DB == nil {
		return nil, fmt.Errorf("config and database are required")
	}
	cfg, conn, logg := p.Config, p.DB, p.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	domain := metrics.NewDomainMetrics(p.Registerer)
	var store cache.Store
	if p.Redis != nil {
		store = p.Redis
	}
	cached := cache.New(store, cfg.Cache.TTL, logg, domain)
	mapper := catalog.Mapper{MediaPrefix: cfg.Media.PublicURLPath}

	mediaStore, err := media.NewStore(cfg.Media.Root, cfg.Media.MaxUploadBytes())
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}
	resolver, err := media.NewResolver(mediaStore.Root())
	if err != nil {
		return nil, fmt.Errorf("media resolver: %w", err)
	}
	fetcher, err := media.NewFetcher(media.FetcherParams{
		Store:    mediaStore,
		Timeout:  cfg.Media.RemoteTimeout,
		MaxBytes: cfg.Media.RemoteMaxBytes(),
		TempDir:  cfg.Media.TempDir,
		Logger:   logg.Zerolog(),
		Metrics:  domain,
	})
	if err != nil {
		return nil, fmt.Errorf("media fetcher: %w", err)
	}

	userRepo := users.NewRepository(conn)
	subRepo := entitlements.NewRepository(conn)
	catalogRepo := catalog.NewRepository(conn)

	gate, err := entitlements.NewGate(catalogRepo, subRepo)
	if err != nil {
		return nil, err
	}

	s := &Services{
		Users:         userRepo,
		Subscriptions: subRepo,
		Gate:          gate,
		Media:         mediaStore,
		MediaResolver: resolver,
		Domain:        domain,
		HTTP:          metrics.NewHTTPMetrics(p.Registerer),
	}

	if s.Catalog, err = catalog.NewService(catalog.ServiceParams{
		Repo:   catalogRepo,
		Gate:   gate,
		Subs:   subRepo,
		Cache:  cached,
		Store:  mediaStore,
		Mapper: mapper,
	}); err != nil {
		return nil, err
	}
	if s.Configurations, err = configurations.NewService(configurations.NewRepository(conn), gate); err != nil {
		return nil, err
	}
	if s.Usage, err = usage.NewService(usage.ServiceParams{
		Repo:    usage.NewRepository(conn),
		Agents:  catalogRepo,
		Users:   userRepo,
		Metrics: domain,
	}); err != nil {
		return nil, err
	}
	if s.Dashboard, err = dashboard.NewService(dashboard.ServiceParams{
		Subs:           subRepo,
		Gate:           gate,
		Usage:          s.Usage,
		Configurations: s.Configurations,
		Cache:          cached,
		Mapper:         mapper,
		Logger:         logg,
	}); err != nil {
		return nil, err
	}
	if s.Providers, err = providers.NewService(providers.ServiceParams{
		Repo:        providers.NewRepository(conn),
		Categories:  taxonomy.NewTable[models.ProviderCategory](conn, "provider category"),
		Brands:      taxonomy.NewTable[models.Brand](conn, "brand"),
		Scoper:      s.Configurations,
		Store:       mediaStore,
		MediaPrefix: cfg.Media.PublicURLPath,
	}); err != nil {
		return nil, err
	}
	if s.Products, err = products.NewService(products.ServiceParams{
		Repo:        products.NewRepository(conn),
		Categories:  taxonomy.NewTable[models.ProductCategory](conn, "product category"),
		Brands:      taxonomy.NewTable[models.ProductBrand](conn, "product brand"),
		Scoper:      s.Configurations,
		Store:       mediaStore,
		Fetcher:     fetcher,
		MediaPrefix: cfg.Media.PublicURLPath,
	}); err != nil {
		return nil, err
	}
	if s.Automotive, err = automotive.NewService(automotive.NewRepository(conn), s.Configurations); err != nil {
		return nil, err
	}
	if s.Blog, err = blog.NewService(blog.ServiceParams{
		Repo:           blog.NewRepository(conn),
		Store:          mediaStore,
		Fetcher:        fetcher,
		Base64MaxBytes: int64(cfg.Blog.Base64MaxMB) << 20,
		MediaPrefix:    cfg.Media.PublicURLPath,
		Logger:         logg,
	}); err != nil {
		return nil, err
	}
	if s.APIKeys, err = apikeys.NewService(apikeys.NewRepository(conn)); err != nil {
		return nil, err
	}
	if s.Grants, err = subscriptions.NewService(subscriptions.ServiceParams{
		Store:  subRepo,
		Users:  userRepo,
		Agents: catalogRepo,
	}); err != nil {
		return nil, err
	}
	if s.Sitemap, err = sitemap.NewBuilder(cfg.App.BaseURL, catalogRepo, s.Blog); err != nil {
		return nil, err
	}
	return s, nil
}
