package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/iacol-backend/internal/apikeys"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubKeys struct {
	valid string
	key   *models.APIKey
	seen  []string
}

func (s *stubKeys) Authenticate(ctx context.Context, presented string) (*models.APIKey, error) {
	s.seen = append(s.seen, presented)
	if presented != s.valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, apikeys.InvalidKeyMessage)
	}
	return s.key, nil
}

func newStubKeys() *stubKeys {
	creator := &models.User{ID: uuid.New(), Role: enums.UserRoleUser, IsActive: true}
	return &stubKeys{
		valid: "k3y",
		key:   &models.APIKey{ID: uuid.New(), Prefix: "k3y", CreatedByID: creator.ID, CreatedBy: creator, IsActive: true},
	}
}

func TestAPIKeyAcceptsHeaderAndBearer(t *testing.T) {
	keys := newStubKeys()
	var user string
	handler := APIKey(keys, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotNil(t, APIKeyFromContext(r.Context()))
		user = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "k3y")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, keys.key.CreatedByID.String(), user)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer k3y")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAPIKeyRejectsUnknownKey(t *testing.T) {
	handler := APIKey(newStubKeys(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "nope")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), apikeys.InvalidKeyMessage)
}

func TestAuthOrAPIKeyPrefersAccessToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	token, userID := mintTestToken(t, cfg, enums.UserRoleUser)
	keys := newStubKeys()

	var user string
	handler := AuthOrAPIKey(cfg, stubSessionVerifier{ok: true}, keys, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, userID.String(), user)
	assert.Empty(t, keys.seen)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer k3y")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, keys.key.CreatedByID.String(), user)
}

type fakeWindow struct {
	counts map[string]int64
}

func (f *fakeWindow) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func TestClientRateLimitPerKey(t *testing.T) {
	keys := newStubKeys()
	limiter := &fakeWindow{counts: map[string]int64{}}
	handler := APIKey(keys, nil)(ClientRateLimit("blog", 2, time.Minute, limiter, nil)(okHandler()))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-API-Key", "k3y")
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Contains(t, limiter.counts, "blog:key:"+keys.key.ID.String())
}
