package fields

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	for _, ok := range []string{"+573001234567", "3001234567", "123456789", "+112345678901234"} {
		assert.True(t, Phone(ok), ok)
	}
	for _, bad := range []string{"", "12345678", "+57 300 123", "phone", "12345678901234567"} {
		assert.False(t, Phone(bad), bad)
	}
}

func TestHHMM(t *testing.T) {
	assert.True(t, HHMM("08:00"))
	assert.True(t, HHMM("23:59"))
	assert.False(t, HHMM("24:00"))
	assert.False(t, HHMM("8:00"))
	assert.False(t, HHMM("08:60"))
}

func TestPositiveDecimal(t *testing.T) {
	d, ok := PositiveDecimal(" 19.99 ")
	assert.True(t, ok)
	assert.Equal(t, "19.99", d.String())
	_, ok = PositiveDecimal("0")
	assert.False(t, ok)
	_, ok = PositiveDecimal("-1")
	assert.False(t, ok)
	_, ok = PositiveDecimal("abc")
	assert.False(t, ok)
}

func TestPriceFits(t *testing.T) {
	for _, ok := range []string{"0.01", "19.9", "19.990", "99999999.99"} {
		assert.True(t, PriceFits(decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"0.004", "1.999", "100000000", "1e9"} {
		assert.False(t, PriceFits(decimal.RequireFromString(bad)), bad)
	}
}
