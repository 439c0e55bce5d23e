package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/iacol-backend/api/responses"
	"github.com/angelmondragon/iacol-backend/api/validators"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/internal/products"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/google/uuid"
)

type productPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	CategoryID  string `json:"category_id"`
	BrandID     string `json:"brand_id"`
	ImageURL    string `json:"image_url"`
}

func (p productPayload) toInput(image io.Reader) (products.Input, error) {
	fields := pkgerrors.FieldErrors{}
	input := products.Input{
		Title:       p.Title,
		Description: p.Description,
		CategoryID:  parseOptionalUUID("category_id", strings.TrimSpace(p.CategoryID), fields),
		BrandID:     parseOptionalUUID("brand_id", strings.TrimSpace(p.BrandID), fields),
		Image:       image,
		ImageURL:    p.ImageURL,
	}
	if raw := strings.TrimSpace(p.Price); raw == "" {
		fields.Add("price", "Este campo es requerido.")
	} else if price, err := decimal.NewFromString(raw); err != nil {
		fields.Add("price", "Se requiere un número válido.")
	} else {
		input.Price = price
	}
	return input, fields.Err()
}

// productForm reads a product write from JSON or from a multipart form with an
// optional "image" file. The returned closer releases the uploaded file.
func productForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (products.Input, func(), error) {
	noop := func() {}
	if !isMultipart(r) {
		var body productPayload
		if err := validators.DecodeJSONBodyLenient(r, &body); err != nil {
			return products.Input{}, noop, err
		}
		input, err := body.toInput(nil)
		return input, noop, err
	}

	file, err := multipartImage(w, r, maxBytes)
	if err != nil {
		return products.Input{}, noop, err
	}
	body := productPayload{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		CategoryID:  r.FormValue("category_id"),
		BrandID:     r.FormValue("brand_id"),
		ImageURL:    r.FormValue("image_url"),
	}
	closer := noop
	var image io.Reader
	if file != nil {
		image = file
		closer = func() { _ = file.Close() }
	}
	input, err := body.toInput(image)
	if err != nil {
		closer()
		return products.Input{}, noop, err
	}
	return input, closer, nil
}

func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, err := scopedRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fields := pkgerrors.FieldErrors{}
		filter := products.ListFilter{
			Search:     validators.SearchTerm(r, searchMaxLen),
			CategoryID: parseOptionalUUID("category", strings.TrimSpace(r.URL.Query().Get("category")), fields),
			BrandID:    parseOptionalUUID("brand", strings.TrimSpace(r.URL.Query().Get("brand")), fields),
		}
		if err := fields.Err(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), viewer, agentID, filter, pageParam(r, "page"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ProductsOptions(svc products.Service, logg *logger.Logger) http.HandlerFunc {
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

func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, id, err := productRequest(r)
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

func ProductCreate(svc products.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, err := scopedRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, done, err := productForm(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer done()

		dto, err := svc.Create(r.Context(), viewer, agentID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ProductUpdate(svc products.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, id, err := productRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, done, err := productForm(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer done()

		dto, err := svc.Update(r.Context(), viewer, agentID, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, id, err := productRequest(r)
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

func productRequest(r *http.Request) (viewer entitlements.Viewer, agentID, id uuid.UUID, err error) {
	viewer, agentID, err = scopedRequest(r)
	if err != nil {
		return viewer, agentID, uuid.Nil, err
	}
	id, err = validators.URLUUID(r, "productID")
	return viewer, agentID, id, err
}
