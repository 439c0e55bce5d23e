package middleware

import (
	"context"

	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxAPIKey contextKey = "api_key"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// APIKeyFromContext returns the key that authenticated the request, if any.
func APIKeyFromContext(ctx context.Context) *models.APIKey {
	if ctx == nil {
		return nil
	}
	key, _ := ctx.Value(ctxAPIKey).(*models.APIKey)
	return key
}

// Viewer builds the entitlement viewer for the authenticated caller. ok is false
// when the context carries no parseable user id.
func Viewer(ctx context.Context) (entitlements.Viewer, bool) {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return entitlements.Viewer{}, false
	}
	return entitlements.Viewer{
		UserID: id,
		Staff:  enums.UserRole(RoleFromContext(ctx)).IsStaff(),
	}, true
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role enums.UserRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, string(role))
}

// WithAPIKey stores the authenticated key and acts as its creator.
func WithAPIKey(ctx context.Context, key *models.APIKey) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAPIKey, key)
	if key != nil && key.CreatedBy != nil {
		ctx = WithUserID(ctx, key.CreatedBy.ID.String())
		ctx = WithRole(ctx, key.CreatedBy.Role)
	}
	return ctx
}
