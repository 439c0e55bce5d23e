package controllers

import (
	"net/http"

	"github.com/angelmondragon/iacol-backend/api/responses"
	"github.com/angelmondragon/iacol-backend/api/validators"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/providers"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/google/uuid"
)

type providerPayload struct {
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	City       string   `json:"city"`
	CategoryID string   `json:"category_id"`
	BrandIDs   []string `json:"brand_ids"`
}

func (p providerPayload) toInput() (providers.Input, error) {
	fields := pkgerrors.FieldErrors{}
	input := providers.Input{
		Name:       p.Name,
		Phone:      p.Phone,
		City:       p.City,
		CategoryID: parseOptionalUUID("category_id", p.CategoryID, fields),
	}
	for _, raw := range p.BrandIDs {
		if id := parseOptionalUUID("brand_ids", raw, fields); id != nil {
			input.BrandIDs = append(input.BrandIDs, *id)
		}
	}
	return input, fields.Err()
}

func ProvidersList(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, err := scopedRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), viewer, agentID, pageParam(r, "page"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ProvidersOptions(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, err := scopedRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		opts, err := svc.Options(r.Context(), viewer, agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, opts)
	}
}

func ProviderGet(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, id, err := providerRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), viewer, agentID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProviderCreate(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, err := scopedRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := decodeProvider(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), viewer, agentID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ProviderUpdate(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, id, err := providerRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := decodeProvider(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Update(r.Context(), viewer, agentID, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProviderDelete(svc providers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, id, err := providerRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), viewer, agentID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ProviderImage replaces the provider photo from a multipart "image" file.
func ProviderImage(svc providers.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, id, err := providerRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		file, err := multipartImage(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if file == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.NewField("image", noFileMessage))
			return
		}
		defer file.Close()

		dto, err := svc.SetImage(r.Context(), viewer, agentID, id, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func decodeProvider(r *http.Request) (providers.Input, error) {
	var body providerPayload
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		return providers.Input{}, err
	}
	return body.toInput()
}

func providerRequest(r *http.Request) (viewer entitlements.Viewer, agentID, id uuid.UUID, err error) {
	viewer, agentID, err = scopedRequest(r)
	if err != nil {
		return viewer, agentID, uuid.Nil, err
	}
	id, err = validators.URLUUID(r, "providerID")
	return viewer, agentID, id, err
}
