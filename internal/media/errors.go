package media

import (
	"errors"

	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
)

// FieldError maps a store failure onto a validation error for field. Other
// failures are internal.
func FieldError(field string, err error) error {
	var fe *FetchError
	switch {
	case errors.As(err, &fe):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fe.Message).
			WithDetails(pkgerrors.FieldErrors{field: {fe.Message}})
	case errors.Is(err, ErrTooLarge):
		return pkgerrors.NewField(field, "La imagen excede el tamaño máximo permitido.")
	case errors.Is(err, ErrUnsupportedType):
		return pkgerrors.NewField(field, "Formato no permitido. Formatos válidos: "+AllowedTypesDescription())
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store image")
	}
}
