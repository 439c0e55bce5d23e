// Package fields holds the input format rules shared by request validation
// and the domain services.
package fields

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	hhmmPattern  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	// numeric(10,2) holds at most 8 integer digits.
	maxPrice = decimal.New(1, 8)
)

// PhoneMessage is shown when a phone number does not match the accepted format.
const PhoneMessage = "El número debe tener el formato '+999999999'. Se permiten de 9 a 15 dígitos."

// Phone reports whether value is an international phone number of 9 to 15 digits.
func Phone(value string) bool {
	return phonePattern.MatchString(strings.TrimSpace(value))
}

// HHMM reports whether value is a 24-hour HH:MM time.
func HHMM(value string) bool {
	return hhmmPattern.MatchString(value)
}

// PositiveDecimal parses value and reports whether it is strictly greater than zero.
func PositiveDecimal(value string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// PriceFits reports whether d is storable in a numeric(10,2) column without
// rounding: at most 2 decimal places and at most 8 integer digits.
func PriceFits(d decimal.Decimal) bool {
	return d.Equal(d.Round(2)) && d.Abs().LessThan(maxPrice)
}
