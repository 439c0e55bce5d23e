package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactBody struct {
	Name  string `json:"name" validate:"required,max=10"`
	Phone string `json:"phone" validate:"omitempty,phone"`
	Opens string `json:"opens" validate:"omitempty,hhmm"`
	Price string `json:"price" validate:"decimal_gt0"`
}

func details(t *testing.T, err error) pkgerrors.FieldErrors {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	out, ok := typed.Details().(pkgerrors.FieldErrors)
	require.True(t, ok)
	return out
}

func TestDecodeJSONBodyCustomTags(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"","phone":"12","opens":"24:00","price":"0"}`))
	d := details(t, DecodeJSONBody(r, &contactBody{}))
	assert.Contains(t, d, "name")
	assert.Contains(t, d, "phone")
	assert.Contains(t, d, "opens")
	assert.Contains(t, d, "price")

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Taller","phone":"+573001234567","opens":"08:30","price":"10.50"}`))
	assert.NoError(t, DecodeJSONBody(r, &contactBody{}))
}

func TestDecodeStrictness(t *testing.T) {
	body := `{"name":"Taller","price":"1","extra":true}`
	err := DecodeJSONBody(httptest.NewRequest("POST", "/", strings.NewReader(body)), &contactBody{})
	assert.Contains(t, details(t, err), "body")

	err = DecodeJSONBodyLenient(httptest.NewRequest("POST", "/", strings.NewReader(body)), &contactBody{})
	assert.NoError(t, err)
}

func TestParsePageAndSanitize(t *testing.T) {
	assert.Equal(t, 1, ParsePage(httptest.NewRequest("GET", "/?page=abc", nil)))
	assert.Equal(t, 1, ParsePage(httptest.NewRequest("GET", "/?page=-2", nil)))
	assert.Equal(t, 3, ParsePage(httptest.NewRequest("GET", "/?page=3", nil)))
	assert.Equal(t, "ñ", SanitizeString("  ñá ", 2))
}
