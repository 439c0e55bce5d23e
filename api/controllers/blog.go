package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/iacol-backend/api/middleware"
	"github.com/angelmondragon/iacol-backend/api/responses"
	"github.com/angelmondragon/iacol-backend/api/validators"
	"github.com/angelmondragon/iacol-backend/internal/blog"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
)

type blogCreated struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    *blog.Created `json:"data"`
}

type blogInvalid struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors"`
}

type blogFailed struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type apiStatus struct {
	Status        string `json:"status"`
	User          string `json:"user"`
	Authenticated bool   `json:"authenticated"`
	Timestamp     string `json:"timestamp"`
}

func BlogList(svc blog.Service, pageSize int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.List(r.Context(), pagination.NewPage(validators.ParsePage(r), pageSize))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func BlogDetail(svc blog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := svc.Detail(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

// BlogAPIStatus lets ingestion clients check their key.
func BlogAPIStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := apiStatus{Status: "API is working", Authenticated: true, Timestamp: "Unknown"}
		if key := middleware.APIKeyFromContext(r.Context()); key != nil && key.CreatedBy != nil {
			status.User = key.CreatedBy.Email
		}
		if date := strings.TrimSpace(r.Header.Get("Date")); date != "" {
			status.Timestamp = date
		}
		responses.WriteJSON(w, http.StatusOK, status)
	}
}

// BlogCreatePost ingests a post from an API-key client.
func BlogCreatePost(svc blog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body blog.CreateInput
		err := validators.DecodeJSONBodyLenient(r, &body)
		var created *blog.Created
		if err == nil {
			created, err = svc.Create(r.Context(), middleware.APIKeyFromContext(r.Context()), body)
		}
		if err != nil {
			typed, status, public := responses.Resolve(err)
			responses.LogError(r.Context(), logg, typed, status, err)
			if typed.Code() == pkgerrors.CodeValidation {
				responses.WriteJSON(w, http.StatusBadRequest, blogInvalid{Message: "Validation failed", Errors: typed.Details()})
				return
			}
			responses.WriteJSON(w, status, blogFailed{Message: "Internal server error", Error: public.Message})
			return
		}
		responses.WriteJSON(w, http.StatusCreated, blogCreated{
			Success: true,
			Message: "Blog post created successfully",
			Data:    created,
		})
	}
}
