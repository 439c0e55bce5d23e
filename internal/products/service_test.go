package products_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/iacol-backend/internal/catalog"
	"github.com/angelmondragon/iacol-backend/internal/configurations"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/internal/products"
	"github.com/angelmondragon/iacol-backend/internal/taxonomy"
	"github.com/angelmondragon/iacol-backend/internal/testdb"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type fixture struct {
	conn   *gorm.DB
	svc    products.Service
	root   string
	agent  *models.Agent
	owner  entitlements.Viewer
	config *models.AgentConfiguration
}

func setup(t *testing.T) fixture {
	t.Helper()
	conn := testdb.Open(t)
	gate, err := entitlements.NewGate(catalog.NewRepository(conn), entitlements.NewRepository(conn))
	require.NoError(t, err)
	cfgSvc, err := configurations.NewService(configurations.NewRepository(conn), gate)
	require.NoError(t, err)
	root := t.TempDir()
	store, err := media.NewStore(root, 1<<20)
	require.NoError(t, err)
	fetcher, err := media.NewFetcher(media.FetcherParams{
		Store:    store,
		MaxBytes: 1 << 10,
		TempDir:  t.TempDir(),
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	svc, err := products.NewService(products.ServiceParams{
		Repo:        products.NewRepository(conn),
		Categories:  taxonomy.NewTable[models.ProductCategory](conn, "product category"),
		Brands:      taxonomy.NewTable[models.ProductBrand](conn, "product brand"),
		Scoper:      cfgSvc,
		Store:       store,
		Fetcher:     fetcher,
		MediaPrefix: "/api/media",
	})
	require.NoError(t, err)

	agent := testdb.Agent(t, conn, "ShopAI", testdb.WithCapabilities(enums.CapabilityProducts))
	user := testdb.User(t, conn, enums.UserRoleUser)
	testdb.Subscribe(t, conn, user.ID, agent.ID, enums.SubscriptionStatusActive)
	cfg := testdb.Configuration(t, conn, user.ID, agent.ID, enums.CapabilityProducts)
	return fixture{conn: conn, svc: svc, root: root, agent: agent, owner: entitlements.Viewer{UserID: user.ID}, config: cfg}
}

func imageServer(t *testing.T, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func countProducts(t *testing.T, conn *gorm.DB, cfgID any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&models.Product{}).Where("configuration_id = ?", cfgID).Count(&n).Error)
	return n
}

func TestCreateProductWithUpload(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	category, err := f.svc.CreateCategory(ctx, f.owner, f.agent.ID, "Llantas")
	require.NoError(t, err)
	brand, err := f.svc.CreateBrand(ctx, f.owner, f.agent.ID, "Michelin")
	require.NoError(t, err)

	created, err := f.svc.Create(ctx, f.owner, f.agent.ID, products.Input{
		Title:      " Llanta 205/55 ",
		Price:      decimal.RequireFromString("320000.45"),
		CategoryID: &category.ID,
		BrandID:    &brand.ID,
		Image:      bytes.NewReader(pngBytes),
	})
	require.NoError(t, err)
	assert.Equal(t, "Llanta 205/55", created.Title)
	assert.Equal(t, "320000.45", created.Price)
	assert.Equal(t, enums.ImageUploadMethodUpload, created.ImageUploadMethod)
	require.NotNil(t, created.ImageURL)
	assert.Contains(t, *created.ImageURL, "/api/media/products/")
	assert.Nil(t, created.SourceImageURL)
	require.NotNil(t, created.Category)
	require.NotNil(t, created.Brand)
	assert.Equal(t, "Michelin", created.Brand.Name)

	page, err := f.svc.List(ctx, f.owner, f.agent.ID, products.ListFilter{Search: "LLANTA"}, pagination.NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Products, 1)

	page, err = f.svc.List(ctx, f.owner, f.agent.ID, products.ListFilter{Search: "aceite"}, pagination.NewPage(1, 10))
	require.NoError(t, err)
	assert.Empty(t, page.Products)
}

func TestCreateProductFromRemoteURL(t *testing.T) {
	f := setup(t)
	srv := imageServer(t, "image/png", pngBytes)

	created, err := f.svc.Create(context.Background(), f.owner, f.agent.ID, products.Input{
		Title:    "Filtro",
		Price:    decimal.NewFromInt(15000),
		ImageURL: srv.URL + "/filtro.png",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ImageUploadMethodURL, created.ImageUploadMethod)
	require.NotNil(t, created.SourceImageURL)
	assert.Equal(t, srv.URL+"/filtro.png", *created.SourceImageURL)
	require.NotNil(t, created.ImageURL)
}

func TestRemoteImageFailureAbortsSave(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cases := map[string]*httptest.Server{
		"html":      imageServer(t, "text/html", []byte("<html></html>")),
		"too large": imageServer(t, "image/png", append(pngBytes, bytes.Repeat([]byte{0}, 2048)...)),
	}
	for name, srv := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.owner, f.agent.ID, products.Input{
				Title:    "Aceite",
				Price:    decimal.NewFromInt(1),
				ImageURL: srv.URL,
			})
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Contains(t, typed.Details().(pkgerrors.FieldErrors), "image_url")
		})
	}
	assert.Equal(t, int64(0), countProducts(t, f.conn, f.config.ID))

	entries, err := os.ReadDir(filepath.Join(f.root, "products"))
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestProductValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other := testdb.User(t, f.conn, enums.UserRoleUser)
	otherCfg := testdb.Configuration(t, f.conn, other.ID, f.agent.ID, enums.CapabilityProducts)
	foreign, err := taxonomy.NewTable[models.ProductBrand](f.conn, "product brand").Create(ctx, otherCfg.ID, "Ajena")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.owner, f.agent.ID, products.Input{
		Price:   decimal.Zero,
		BrandID: &foreign.ID,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details := typed.Details().(pkgerrors.FieldErrors)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "price")
	assert.Contains(t, details, "brand_id")
}

func TestProductPriceMustFitColumn(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, price := range []string{"0.004", "1e9", "12.345"} {
		t.Run(price, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.owner, f.agent.ID, products.Input{
				Title: "Filtro",
				Price: decimal.RequireFromString(price),
			})
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Contains(t, typed.Details().(pkgerrors.FieldErrors), "price")
		})
	}
	assert.Equal(t, int64(0), countProducts(t, f.conn, f.config.ID))
}

func TestUpdateKeepsImageWhenNoneGiven(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.owner, f.agent.ID, products.Input{
		Title: "Batería",
		Price: decimal.NewFromInt(400000),
		Image: bytes.NewReader(pngBytes),
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.owner, f.agent.ID, created.ID, products.Input{
		Title: "Batería 12V",
		Price: decimal.NewFromInt(410000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Batería 12V", updated.Title)
	assert.Equal(t, created.ImageURL, updated.ImageURL)

	require.NoError(t, f.svc.Delete(ctx, f.owner, f.agent.ID, created.ID))
	assert.Equal(t, int64(0), countProducts(t, f.conn, f.config.ID))
}

func TestProductsHiddenWhenModuleDisabled(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.owner, f.agent.ID, products.Input{Title: "X", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(f.config).Update("enable_products", false).Error)
	_, err = f.svc.List(ctx, f.owner, f.agent.ID, products.ListFilter{}, pagination.NewPage(1, 10))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, int64(1), countProducts(t, f.conn, f.config.ID))
}
