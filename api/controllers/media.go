package controllers

import (
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/iacol-backend/internal/media"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
)

type mediaResolver interface {
	Resolve(requested string) (string, string, error)
}

// ServeMedia streams files from the media root. Every rejection is the same
// plain 404 so callers learn nothing about the tree.
func ServeMedia(resolver mediaResolver, maxAge int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		abs, contentType, err := resolver.Resolve(chi.URLParam(r, "*"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		f, err := os.Open(abs)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", contentType)
		if maxAge > 0 {
			w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "media_path", chi.URLParam(r, "*")), "media.served")
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}

var _ mediaResolver = (*media.Resolver)(nil)
