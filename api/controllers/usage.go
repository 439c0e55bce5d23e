package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/iacol-backend/api/responses"
	"github.com/angelmondragon/iacol-backend/api/validators"
	"github.com/angelmondragon/iacol-backend/internal/usage"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
)

type logExecutionResponse struct {
	Status string    `json:"status"`
	LogID  uuid.UUID `json:"log_id"`
}

type executionError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type statsError struct {
	Error string `json:"error"`
}

// LogExecution records one automation run. Every failure, including storage
// errors, answers 400 {status:"error", message}.
func LogExecution(svc usage.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fail := func(err error) {
			typed, status, public := responses.Resolve(err)
			responses.LogError(r.Context(), logg, typed, status, err)
			responses.WriteJSON(w, http.StatusBadRequest, executionError{Status: "error", Message: public.Message})
		}

		var body usage.LogRequest
		if err := validators.DecodeJSONBodyLenient(r, &body); err != nil {
			fail(err)
			return
		}
		row, err := svc.Log(r.Context(), body)
		if err != nil {
			fail(err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, logExecutionResponse{Status: "success", LogID: row.ID})
	}
}

// AgentStats reports the caller's execution totals on one agent.
func AgentStats(svc usage.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agentID, err := uuid.Parse(chi.URLParam(r, "agentID"))
		if err != nil {
			responses.WriteJSON(w, http.StatusNotFound, statsError{Error: "Agent not found"})
			return
		}
		stats, err := svc.Stats(r.Context(), viewer.UserID, agentID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				responses.WriteJSON(w, http.StatusNotFound, statsError{Error: "Agent not found"})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, stats)
	}
}

// ExecutionFeed pages through the caller's execution history with a cursor.
func ExecutionFeed(svc usage.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fields := pkgerrors.FieldErrors{}
		agentID := parseOptionalUUID("agent_id", strings.TrimSpace(r.URL.Query().Get("agent_id")), fields)
		if err := fields.Err(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Feed(r.Context(), viewer.UserID, agentID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
