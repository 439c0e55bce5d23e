package controllers

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
)

const (
	noFileMessage = "No se ha enviado ningún fichero."
	// formOverhead is the allowance for non-file multipart fields.
	formOverhead = 1 << 20
)

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

// multipartImage parses a multipart body and returns its "image" file, or nil
// when the form carries none. The body is capped at maxBytes plus form overhead;
// the media store enforces the exact file cap while streaming.
func multipartImage(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, error) {
	if !isMultipart(r) {
		return nil, pkgerrors.NewField("body", "Se esperaba un formulario multipart.")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, pkgerrors.NewField("image", "La imagen excede el tamaño máximo permitido.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form").
			WithDetails(pkgerrors.FieldErrors{"body": {"Formulario multipart inválido."}})
	}
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.NewField("image", noFileMessage)
	}
	return file, nil
}
