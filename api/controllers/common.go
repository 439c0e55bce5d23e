package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/iacol-backend/api/middleware"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/google/uuid"
)

const searchMaxLen = 100

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func viewerFrom(r *http.Request) (entitlements.Viewer, error) {
	viewer, ok := middleware.Viewer(r.Context())
	if !ok {
		return entitlements.Viewer{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return viewer, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable")
}

// parseOptionalUUID reads an optional id field; blank means unset.
func parseOptionalUUID(field, raw string, fields pkgerrors.FieldErrors) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		fields.Add(field, "“"+raw+"” no es un UUID válido.")
		return nil
	}
	return &id
}
