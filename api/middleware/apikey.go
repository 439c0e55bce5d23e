package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/iacol-backend/api/responses"
	"github.com/angelmondragon/iacol-backend/internal/apikeys"
	"github.com/angelmondragon/iacol-backend/pkg/auth/session"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
)

type keyAuthenticator interface {
	Authenticate(ctx context.Context, presented string) (*models.APIKey, error)
}

// APIKey authenticates machine clients through X-API-Key or a bearer key.
func APIKey(keys keyAuthenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticateKey(r, keys, logg)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthOrAPIKey accepts a user access token first and falls back to an API key.
func AuthOrAPIKey(cfg config.JWTConfig, verifier session.AccessSessionChecker, keys keyAuthenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-API-Key") == "" {
				if ctx, err := authenticateBearer(r, cfg, verifier, logg); err == nil {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			ctx, err := authenticateKey(r, keys, logg)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticateKey(r *http.Request, keys keyAuthenticator, logg *logger.Logger) (context.Context, error) {
	presented := apikeys.FromRequest(r.Header.Get("X-API-Key"), r.Header.Get("Authorization"))
	key, err := keys.Authenticate(r.Context(), presented)
	if err != nil {
		return nil, err
	}
	ctx := WithAPIKey(r.Context(), key)
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"key_prefix": key.Prefix,
			"user_id":    key.CreatedByID.String(),
		})
	}
	return ctx, nil
}
