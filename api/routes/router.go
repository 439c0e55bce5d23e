package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/iacol-backend/api/controllers"
	"github.com/angelmondragon/iacol-backend/api/middleware"
	"github.com/angelmondragon/iacol-backend/internal/apikeys"
	"github.com/angelmondragon/iacol-backend/internal/auth"
	"github.com/angelmondragon/iacol-backend/internal/automotive"
	"github.com/angelmondragon/iacol-backend/internal/blog"
	"github.com/angelmondragon/iacol-backend/internal/catalog"
	"github.com/angelmondragon/iacol-backend/internal/configurations"
	"github.com/angelmondragon/iacol-backend/internal/dashboard"
	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/internal/products"
	"github.com/angelmondragon/iacol-backend/internal/providers"
	"github.com/angelmondragon/iacol-backend/internal/sitemap"
	"github.com/angelmondragon/iacol-backend/internal/subscriptions"
	"github.com/angelmondragon/iacol-backend/internal/usage"
	"github.com/angelmondragon/iacol-backend/internal/users"
	"github.com/angelmondragon/iacol-backend/pkg/auth/session"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/db"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/metrics"
	"github.com/angelmondragon/iacol-backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	Auth           auth.Service
	Register       auth.RegisterService
	Users          *users.Repository
	Catalog        catalog.Service
	Dashboard      dashboard.Service
	Configurations configurations.Service
	Providers      providers.Service
	Products       products.Service
	Automotive     automotive.Service
	Usage          usage.Service
	Blog           blog.Service
	APIKeys        apikeys.Service
	Subscriptions  subscriptions.Service
	Media          *media.Resolver
	Sitemap        *sitemap.Builder
}

func NewRouter(d Dependencies) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTP),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		0,
	)
	var limiter rateStore
	if d.Redis != nil {
		limiter = d.Redis
	}

	authenticated := middleware.Auth(cfg.JWT, d.Sessions, logg)
	machine := middleware.AuthOrAPIKey(cfg.JWT, d.Sessions, d.APIKeys, logg)
	maxUpload := cfg.Media.MaxUploadBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, pingerOrNil(d.Redis)))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(d.Register, d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
		r.With(authenticated).Get("/me", controllers.Me(d.Users, logg))
	})

	r.Get("/solutions/", controllers.Solutions(d.Catalog, logg))
	r.Get("/plans/", controllers.Plans(d.Catalog, logg))
	r.Get("/sitemap.xml", controllers.Sitemap(d.Sitemap, logg))
	r.Get(cfg.Media.PublicURLPath+"/*", controllers.ServeMedia(d.Media, cfg.Media.CacheMaxAgeSec, logg))

	r.Route("/blog", func(r chi.Router) {
		r.Get("/", controllers.BlogList(d.Blog, cfg.Blog.DefaultPageSize, logg))
		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.APIKey(d.APIKeys, logg))
			r.Get("/status/", controllers.BlogAPIStatus())
			r.With(middleware.ClientRateLimit("blog", cfg.Blog.APIRateLimit, cfg.Blog.APIRateWindow, limiter, logg)).
				Post("/create-post/", controllers.BlogCreatePost(d.Blog, logg))
		})
		r.Get("/{slug}/", controllers.BlogDetail(d.Blog, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(machine)
		r.Post("/api/log-execution/", controllers.LogExecution(d.Usage, logg))
		r.Get("/api/agent-stats/{agentID}/", controllers.AgentStats(d.Usage, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/dashboard/", controllers.DashboardHome(d.Dashboard, logg))
		r.Get("/api/executions/", controllers.ExecutionFeed(d.Usage, logg))

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", controllers.AgentsList(d.Catalog, logg))
			r.Route("/{agentID}", func(r chi.Router) {
				r.Get("/", controllers.AgentDetail(d.Catalog, logg))
				r.Get("/dashboard/", controllers.AgentDashboard(d.Dashboard, logg))
				r.Get("/configure/", controllers.ConfigureGet(d.Configurations, d.Providers, d.Products, logg))
				r.Put("/configure/", controllers.ConfigurePut(d.Configurations, logg))
				r.Post("/modules/{module}/toggle/", controllers.ModuleToggle(d.Configurations, logg))

				r.Route("/providers", func(r chi.Router) {
					r.Get("/", controllers.ProvidersList(d.Providers, logg))
					r.Post("/", controllers.ProviderCreate(d.Providers, logg))
					r.Get("/options/", controllers.ProvidersOptions(d.Providers, logg))
					r.Get("/{providerID}/", controllers.ProviderGet(d.Providers, logg))
					r.Put("/{providerID}/", controllers.ProviderUpdate(d.Providers, logg))
					r.Delete("/{providerID}/", controllers.ProviderDelete(d.Providers, logg))
					r.Post("/{providerID}/image/", controllers.ProviderImage(d.Providers, maxUpload, logg))
				})
				mountTaxonomy(r, "/provider-categories", controllers.Taxonomy{
					List:   d.Providers.ListCategories,
					Create: d.Providers.CreateCategory,
					Delete: d.Providers.DeleteCategory,
				}, logg)
				mountTaxonomy(r, "/brands", controllers.Taxonomy{
					List:   d.Providers.ListBrands,
					Create: d.Providers.CreateBrand,
					Delete: d.Providers.DeleteBrand,
				}, logg)

				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.ProductsList(d.Products, logg))
					r.Post("/", controllers.ProductCreate(d.Products, maxUpload, logg))
					r.Get("/options/", controllers.ProductsOptions(d.Products, logg))
					r.Get("/{productID}/", controllers.ProductGet(d.Products, logg))
					r.Put("/{productID}/", controllers.ProductUpdate(d.Products, maxUpload, logg))
					r.Delete("/{productID}/", controllers.ProductDelete(d.Products, logg))
				})
				mountTaxonomy(r, "/product-categories", controllers.Taxonomy{
					List:   d.Products.ListCategories,
					Create: d.Products.CreateCategory,
					Delete: d.Products.DeleteCategory,
				}, logg)
				mountTaxonomy(r, "/product-brands", controllers.Taxonomy{
					List:   d.Products.ListBrands,
					Create: d.Products.CreateBrand,
					Delete: d.Products.DeleteBrand,
				}, logg)

				r.Get("/automotive-info/", controllers.AutomotiveGet(d.Automotive, logg))
				r.Put("/automotive-info/", controllers.AutomotivePut(d.Automotive, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authenticated)
		r.Use(middleware.RequireStaff(logg))
		r.Get("/categories", controllers.AdminListCategories(d.Catalog, logg))
		r.Post("/categories", controllers.AdminCreateCategory(d.Catalog, logg))
		r.Get("/agents", controllers.AdminListAgents(d.Catalog, logg))
		r.Post("/agents", controllers.AdminCreateAgent(d.Catalog, logg))
		r.Patch("/agents/{agentID}", controllers.AdminUpdateAgent(d.Catalog, logg))
		r.Post("/agents/{agentID}/image", controllers.AdminAgentImage(d.Catalog, maxUpload, logg))
		r.Put("/agents/{agentID}/modules/{module}", controllers.AdminSetModuleFlag(d.Configurations, logg))
		r.Put("/subscriptions", controllers.AdminGrantSubscription(d.Subscriptions, logg))
		r.Get("/api-keys", controllers.AdminListAPIKeys(d.APIKeys, logg))
		r.Post("/api-keys", controllers.AdminCreateAPIKey(d.APIKeys, logg))
		r.Delete("/api-keys/{keyID}", controllers.AdminRevokeAPIKey(d.APIKeys, logg))
	})

	return r
}

func mountTaxonomy(r chi.Router, prefix string, t controllers.Taxonomy, logg *logger.Logger) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", t.ListHandler(logg))
		r.Post("/", t.CreateHandler(logg))
		r.Delete("/{itemID}/", t.DeleteHandler(logg))
	})
}
