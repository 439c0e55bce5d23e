package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.NewField(key, "query parameter must be numeric")
	}
	if value < min || value > max {
		return 0, pkgerrors.NewField(key, "query parameter out of range")
	}
	return value, nil
}

// ParsePage reads ?page= leniently: junk and out-of-range values fall back to 1.
func ParsePage(r *http.Request) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("page")))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// SearchTerm returns the trimmed ?search= value, cut to maxLen bytes.
func SearchTerm(r *http.Request, maxLen int) string {
	return SanitizeString(r.URL.Query().Get("search"), maxLen)
}

// URLUUID parses a chi path parameter. Malformed ids are reported as not found.
func URLUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found")
	}
	return id, nil
}
