package controllers

import (
	"net/http"

	"github.com/angelmondragon/iacol-backend/api/responses"
	"github.com/angelmondragon/iacol-backend/api/validators"
	"github.com/angelmondragon/iacol-backend/internal/automotive"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
)

func AutomotiveGet(svc automotive.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, err := scopedRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		info, err := svc.Get(r.Context(), viewer, agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}

func AutomotivePut(svc automotive.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, agentID, err := scopedRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body automotive.Input
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		info, err := svc.Put(r.Context(), viewer, agentID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}
