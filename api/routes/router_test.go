package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/iacol-backend/internal/apikeys"
	"github.com/angelmondragon/iacol-backend/internal/catalog"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/products"
	"github.com/angelmondragon/iacol-backend/internal/providers"
	"github.com/angelmondragon/iacol-backend/internal/taxonomy"
	pkgAuth "github.com/angelmondragon/iacol-backend/pkg/auth"
	"github.com/angelmondragon/iacol-backend/pkg/auth/session"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/metrics"
)

const testAPIKey = "iak_test_secret"

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubCatalog struct{ catalog.Service }

func (stubCatalog) ListSolutions(context.Context, catalog.ListInput) (*catalog.AgentPage, error) {
	return &catalog.AgentPage{Agents: []catalog.AgentDTO{}}, nil
}

func (stubCatalog) ListCategories(context.Context) ([]catalog.CategoryDTO, error) {
	return []catalog.CategoryDTO{}, nil
}

type stubKeys struct {
	apikeys.Service
	creator *models.User
}

func (s stubKeys) Authenticate(_ context.Context, presented string) (*models.APIKey, error) {
	if presented != testAPIKey {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid api key")
	}
	return &models.APIKey{ID: uuid.New(), IsActive: true, CreatedByID: s.creator.ID, CreatedBy: s.creator}, nil
}

// The taxonomy routes bind method values at construction, so these stubs
// implement them even though the tests never call them.
type stubProviders struct{ providers.Service }

func (stubProviders) ListCategories(context.Context, entitlements.Viewer, uuid.UUID) ([]taxonomy.Item, error) {
	return nil, nil
}
func (stubProviders) CreateCategory(context.Context, entitlements.Viewer, uuid.UUID, string) (*taxonomy.Item, error) {
	return nil, nil
}
func (stubProviders) DeleteCategory(context.Context, entitlements.Viewer, uuid.UUID, uuid.UUID) error {
	return nil
}
func (stubProviders) ListBrands(context.Context, entitlements.Viewer, uuid.UUID) ([]taxonomy.Item, error) {
	return nil, nil
}
func (stubProviders) CreateBrand(context.Context, entitlements.Viewer, uuid.UUID, string) (*taxonomy.Item, error) {
	return nil, nil
}
func (stubProviders) DeleteBrand(context.Context, entitlements.Viewer, uuid.UUID, uuid.UUID) error {
	return nil
}

type stubProducts struct{ products.Service }

func (stubProducts) ListCategories(context.Context, entitlements.Viewer, uuid.UUID) ([]taxonomy.Item, error) {
	return nil, nil
}
func (stubProducts) CreateCategory(context.Context, entitlements.Viewer, uuid.UUID, string) (*taxonomy.Item, error) {
	return nil, nil
}
func (stubProducts) DeleteCategory(context.Context, entitlements.Viewer, uuid.UUID, uuid.UUID) error {
	return nil
}
func (stubProducts) ListBrands(context.Context, entitlements.Viewer, uuid.UUID) ([]taxonomy.Item, error) {
	return nil, nil
}
func (stubProducts) CreateBrand(context.Context, entitlements.Viewer, uuid.UUID, string) (*taxonomy.Item, error) {
	return nil, nil
}
func (stubProducts) DeleteBrand(context.Context, entitlements.Viewer, uuid.UUID, uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.CORSOrigins = []string{"https://iacol.co/", "*"}
	cfg.JWT = config.JWTConfig{Secret: "router-secret", Issuer: "iacol-test", ExpirationMinutes: 5}
	cfg.Media.PublicURLPath = "/api/media"
	cfg.Media.MaxUploadMB = 1
	cfg.Blog.DefaultPageSize = 9
	return cfg
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config, *prometheus.Registry) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	creator := &models.User{ID: uuid.New(), Email: "bot@iacol.co", Role: enums.UserRoleUser, IsActive: true}
	h := NewRouter(Dependencies{
		Config:    cfg,
		Logger:    logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard}),
		DB:        stubPinger{},
		Sessions:  stubSessions{},
		Gatherer:  reg,
		HTTP:      metrics.NewHTTPMetrics(reg),
		Catalog:   stubCatalog{},
		Providers: stubProviders{},
		Products:  stubProducts{},
		APIKeys:   stubKeys{creator: creator},
	})
	return h, cfg, reg
}

func bearerFor(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	h, _, _ := newTestRouter(t)

	live := serve(h, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, live.Code)
	assert.Equal(t, "test", live.Header().Get("X-Iacol-Env"))

	ready := serve(h, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, ready.Code)
}

func TestPublicSolutionsNeedsNoAuth(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/solutions/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardRequiresToken(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireStaff(t *testing.T) {
	h, cfg, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/categories", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.UserRoleUser))
	assert.Equal(t, http.StatusForbidden, serve(h, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/categories", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.UserRoleStaff))
	assert.Equal(t, http.StatusOK, serve(h, req).Code)
}

func TestBlogAPIStatusUsesAPIKey(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/blog/api/status/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/blog/api/status/", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	rec = serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "API is working", body["status"])
	assert.Equal(t, "bot@iacol.co", body["user"])
}

func TestMetricsEndpointExposesRouteCounters(t *testing.T) {
	h, _, _ := newTestRouter(t)
	serve(h, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/health/live"`)
}

func TestCORSPreflightAllowsConfiguredOrigin(t *testing.T) {
	h, _, _ := newTestRouter(t)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/dashboard/", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		return serve(h, req)
	}

	assert.Equal(t, "https://iacol.co", preflight("https://iacol.co").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, preflight("https://evil.example").Header().Get("Access-Control-Allow-Origin"))
}
