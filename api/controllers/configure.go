package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/iacol-backend/api/responses"
	"github.com/angelmondragon/iacol-backend/api/validators"
	"github.com/angelmondragon/iacol-backend/internal/configurations"
	"github.com/angelmondragon/iacol-backend/internal/products"
	"github.com/angelmondragon/iacol-backend/internal/providers"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
)

type configureView struct {
	*configurations.Overview
	ProvidersPage *providers.ProviderPage `json:"providers_page,omitempty"`
	ProductsPage  *products.ProductPage   `json:"products_page,omitempty"`
}

type configurePayload struct {
	Data json.RawMessage `json:"configuration_data"`
}

func pageParam(r *http.Request, key string) pagination.Page {
	n, _ := validators.ParseQueryInt(r, key, 1, 1, 1<<20)
	if n < 1 {
		n = 1
	}
	return pagination.NewPage(n, pagination.DefaultLimit)
}

// ConfigureGet opens (or creates) the caller's configuration. Sub-resource
// pages are materialized only for modules that are switched on.
func ConfigureGet(cfgs configurations.Service, prov providers.Service, prods products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agentID, err := validators.URLUUID(r, "agentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		overview, err := cfgs.Open(r.Context(), viewer, agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view := configureView{Overview: overview}

		if overview.Active(enums.CapabilityProviders) {
			view.ProvidersPage, err = prov.List(r.Context(), viewer, agentID, pageParam(r, "providers_page"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if overview.Active(enums.CapabilityProducts) {
			filter := products.ListFilter{Search: validators.SearchTerm(r, searchMaxLen)}
			view.ProductsPage, err = prods.List(r.Context(), viewer, agentID, filter, pageParam(r, "products_page"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, view)
	}
}

// ConfigurePut replaces the configuration JSON blob.
func ConfigurePut(cfgs configurations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agentID, err := validators.URLUUID(r, "agentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body configurePayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := cfgs.ReplaceData(r.Context(), viewer, agentID, body.Data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ModuleToggle flips one module flag and answers {status, enabled, redirect}.
func ModuleToggle(cfgs configurations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agentID, err := validators.URLUUID(r, "agentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := cfgs.Toggle(r.Context(), viewer, agentID, chi.URLParam(r, "module"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}
