package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/iacol-backend/internal/testdb"
	"github.com/angelmondragon/iacol-backend/internal/users"
	pkgAuth "github.com/angelmondragon/iacol-backend/pkg/auth"
	"github.com/angelmondragon/iacol-backend/pkg/auth/session"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

type fakeSessions struct {
	sessions map[string]struct {
		user  uuid.UUID
		token string
	}
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]struct {
		user  uuid.UUID
		token string
	}{}}
}

func (f *fakeSessions) Generate(_ context.Context, userID uuid.UUID, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.sessions[accessID] = struct {
		user  uuid.UUID
		token string
	}{userID, token}
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (uuid.UUID, string, string, error) {
	s, ok := f.sessions[oldAccessID]
	if !ok || s.token != provided {
		return uuid.Nil, "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newID := session.NewAccessID()
	token, _ := f.Generate(ctx, s.user, newID)
	return s.user, newID, token, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.sessions, accessID)
	return nil
}

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "iacol", ExpirationMinutes: 30}

func fastPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
}

func seedUser(t *testing.T, repo *users.Repository, email, password string, role enums.UserRole) uuid.UUID {
	t.Helper()
	hash, err := security.HashPassword(password, fastPasswordConfig())
	require.NoError(t, err)
	user, err := repo.Create(context.Background(), users.CreateUserDTO{Email: email, PasswordHash: hash, Role: role})
	require.NoError(t, err)
	return user.ID
}

func TestServiceLoginMintsRoleClaim(t *testing.T) {
	repo := users.NewRepository(testdb.Open(t))
	id := seedUser(t, repo, "staff@example.com", "s3cret-pass", enums.UserRoleStaff)
	sessions := newFakeSessions()

	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: sessions, JWTConfig: testJWT})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " STAFF@example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, enums.UserRoleStaff, claims.Role)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.True(t, resp.User.IsStaff)
	assert.NotNil(t, resp.User.LastLoginAt)
	assert.Contains(t, sessions.sessions, claims.ID)
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	repo := users.NewRepository(testdb.Open(t))
	seedUser(t, repo, "ana@example.com", "correct-pass", enums.UserRoleUser)
	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: newFakeSessions(), JWTConfig: testJWT})
	require.NoError(t, err)

	for _, req := range []LoginRequest{
		{Email: "ana@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "correct-pass"},
		{Email: "  ", Password: "correct-pass"},
	} {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "email %q", req.Email)
	}
}

func TestServiceRefreshRotatesAndLogoutRevokes(t *testing.T) {
	repo := users.NewRepository(testdb.Open(t))
	seedUser(t, repo, "ana@example.com", "correct-pass", enums.UserRoleUser)
	sessions := newFakeSessions()
	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: sessions, JWTConfig: testJWT})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "correct-pass"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), login.AccessToken, "bogus")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	refreshed, err := svc.Refresh(context.Background(), login.AccessToken, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// the old pair is single-use
	_, err = svc.Refresh(context.Background(), login.AccessToken, login.RefreshToken)
	assert.Error(t, err)

	require.NoError(t, svc.Logout(context.Background(), refreshed.AccessToken))
	assert.Empty(t, sessions.sessions)
}

func TestServiceRefreshAcceptsExpiredAccessToken(t *testing.T) {
	repo := users.NewRepository(testdb.Open(t))
	seedUser(t, repo, "ana@example.com", "correct-pass", enums.UserRoleUser)
	sessions := newFakeSessions()
	svcIface, err := NewService(ServiceParams{UserRepo: repo, SessionManager: sessions, JWTConfig: testJWT})
	require.NoError(t, err)
	svc := svcIface.(*service)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	login, err := svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "correct-pass"})
	require.NoError(t, err)
	_, err = pkgAuth.ParseAccessToken(testJWT, login.AccessToken)
	require.Error(t, err)

	svc.now = time.Now
	refreshed, err := svc.Refresh(context.Background(), login.AccessToken, login.RefreshToken)
	require.NoError(t, err)
	_, err = pkgAuth.ParseAccessToken(testJWT, refreshed.AccessToken)
	require.NoError(t, err)
}

func TestServiceLoginUpgradesLegacyHash(t *testing.T) {
	repo := users.NewRepository(testdb.Open(t))
	key := pbkdf2.Key([]byte("clave-antigua"), []byte("legacysalt"), 1000, sha256.Size, sha256.New)
	legacy := fmt.Sprintf("pbkdf2_sha256$1000$legacysalt$%s", base64.StdEncoding.EncodeToString(key))
	user, err := repo.Create(context.Background(), users.CreateUserDTO{Email: "legacy@example.com", PasswordHash: legacy, Role: enums.UserRoleUser})
	require.NoError(t, err)

	cfg := fastPasswordConfig()
	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: newFakeSessions(), JWTConfig: testJWT, PasswordConfig: &cfg})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "legacy@example.com", Password: "clave-antigua"})
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
	assert.False(t, security.NeedsRehash(stored.PasswordHash, cfg))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "legacy@example.com", Password: "clave-antigua"})
	require.NoError(t, err)
}
