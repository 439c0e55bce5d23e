package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
)

// SuccessEnvelope wraps every successful payload of the JSON API.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of a failure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteJSON writes payload without an envelope. Machine endpoints whose body
// shape is fixed by their clients use it directly.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Resolve maps err to its typed form, status and public payload.
func Resolve(err error) (*pkgerrors.Error, int, APIError) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if m := typed.Message(); meta.ExposeMessage && m != "" {
		msg = m
	}

	public := APIError{Code: string(typed.Code()), Message: msg}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			public.Details = details
		}
	}
	return typed, meta.HTTPStatus, public
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, status, public := Resolve(err)
	LogError(ctx, logg, typed, status, err)
	WriteJSON(w, status, ErrorEnvelope{Error: public})
}

// LogError logs server-side failures with their driver diagnostics. Client
// errors are logged at warn level without a dump.
func LogError(ctx context.Context, logg *logger.Logger, typed *pkgerrors.Error, status int, err error) {
	if logg == nil {
		return
	}
	if status < http.StatusInternalServerError {
		logg.Warn(logg.WithField(ctx, "error_code", string(typed.Code())), "request.rejected: "+typed.Message())
		return
	}
	dump := pkgerrors.Dump(err)
	fields := dump.Fields()
	fields["error"] = dump.TopMessage
	logg.Error(logg.WithFields(ctx, fields), "request.error", err)
}
