package controllers

import (
	"net/http"

	"github.com/angelmondragon/iacol-backend/api/responses"
	"github.com/angelmondragon/iacol-backend/api/validators"
	"github.com/angelmondragon/iacol-backend/internal/catalog"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
)

func listInput(r *http.Request) catalog.ListInput {
	return catalog.ListInput{
		Page:   pagination.NewPage(validators.ParsePage(r), pagination.DefaultLimit),
		Search: validators.SearchTerm(r, searchMaxLen),
	}
}

// Solutions is the public listing of agents flagged for the solutions page.
func Solutions(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.ListSolutions(r.Context(), listInput(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Plans groups the active agents by pricing type.
func Plans(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := svc.Plans(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

func AgentsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := viewerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListAgents(r.Context(), viewer, listInput(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AgentDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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
		detail, err := svc.AgentDetail(r.Context(), viewer, agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
