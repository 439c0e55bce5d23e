package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/iacol-backend/api/responses"
	"github.com/angelmondragon/iacol-backend/api/validators"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/taxonomy"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/google/uuid"
)

// Taxonomy binds the list/create/delete operations of one scoped taxonomy
// (provider categories, brands, product categories or product brands).
type Taxonomy struct {
	List   func(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) ([]taxonomy.Item, error)
	Create func(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, name string) (*taxonomy.Item, error)
	Delete func(ctx context.Context, viewer entitlements.Viewer, agentID, id uuid.UUID) error
}

type taxonomyPayload struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (t Taxonomy) ListHandler(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, err := scopedRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := t.List(r.Context(), viewer, agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func (t Taxonomy) CreateHandler(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, err := scopedRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body taxonomyPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := t.Create(r.Context(), viewer, agentID, body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func (t Taxonomy) DeleteHandler(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, err := scopedRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := t.Delete(r.Context(), viewer, agentID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// scopedRequest resolves the caller and the {agentID} path parameter.
func scopedRequest(r *http.Request) (entitlements.Viewer, uuid.UUID, error) {
	viewer, err := viewerFrom(r)
	if err != nil {
		return entitlements.Viewer{}, uuid.Nil, err
	}
	agentID, err := validators.URLUUID(r, "agentID")
	if err != nil {
		return entitlements.Viewer{}, uuid.Nil, err
	}
	return viewer, agentID, nil
}
