package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/fields"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 8 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return fields.Phone(fl.Field().String())
	})
	mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool {
		return fields.HHMM(fl.Field().String())
	})
	mustRegister(v, "decimal_gt0", decimalGreaterThanZero)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// decimalGreaterThanZero accepts decimal.Decimal values and numeric strings.
func decimalGreaterThanZero(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return v.IsPositive()
	case string:
		_, ok := fields.PositiveDecimal(v)
		return ok
	}
	return false
}

// DecodeJSONBody decodes a strict JSON body and validates struct tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	return decode(r, dest, true)
}

// DecodeJSONBodyLenient ignores unknown fields; machine clients send extras.
func DecodeJSONBodyLenient(r *http.Request, dest any) error {
	return decode(r, dest, false)
}

func decode(r *http.Request, dest any, strict bool) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails(pkgerrors.FieldErrors{"body": {err.Error()}})
	}
	return Validate(dest)
}

// Validate runs struct-tag validation and maps failures to field errors.
func Validate(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := pkgerrors.FieldErrors{}
	for _, fieldErr := range errs {
		details.Add(fieldErr.Field(), validationMessage(fieldErr))
	}
	return details.Err()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es requerido."
	case "min":
		return fmt.Sprintf("Debe tener al menos %s caracteres.", fe.Param())
	case "max":
		return fmt.Sprintf("Asegúrese de que este campo no tenga más de %s caracteres.", fe.Param())
	case "email":
		return "Introduzca una dirección de correo electrónico válida."
	case "phone":
		return fields.PhoneMessage
	case "hhmm":
		return "Formato de hora inválido (HH:MM)."
	case "decimal_gt0":
		return "El valor debe ser mayor que 0."
	case "oneof":
		return fmt.Sprintf("Debe ser una de: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid", "uuid4":
		return "Debe ser un UUID válido."
	}
	return "Valor inválido."
}
