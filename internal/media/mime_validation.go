package media

import (
	"fmt"
	"mime"
	"path"
	"sort"
	"strings"
)

// rasterTypes maps every accepted raster MIME type to its canonical file extension.
var rasterTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// servedExtensions maps the extensions the media endpoint will serve to their MIME type.
var servedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// AllowedImageTypes lists the accepted raster MIME types in stable order.
func AllowedImageTypes() []string {
	out := make([]string, 0, len(rasterTypes))
	for ct := range rasterTypes {
		out = append(out, ct)
	}
	sort.Strings(out)
	return out
}

// IsAllowedImageType reports whether a Content-Type header value names an accepted raster type.
func IsAllowedImageType(contentType string) bool {
	_, ok := ExtensionFor(contentType)
	return ok
}

// ExtensionFor returns the canonical extension for an accepted MIME type.
func ExtensionFor(contentType string) (string, bool) {
	mediaType, err := normalizeMimeType(contentType)
	if err != nil {
		return "", false
	}
	ext, ok := rasterTypes[mediaType]
	return ext, ok
}

// ContentTypeForPath returns the MIME type of a servable file, based on its extension only.
func ContentTypeForPath(p string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	ct, ok := servedExtensions[ext]
	return ct, ok
}

// AllowedTypesDescription is the human readable list used in validation messages.
func AllowedTypesDescription() string {
	names := make([]string, 0, len(rasterTypes))
	for _, ext := range rasterTypes {
		names = append(names, strings.ToUpper(ext))
	}
	sort.Strings(names)
	return humanReadableList(names)
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s or %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s, or %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}

func normalizeMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	return strings.ToLower(mediaType), nil
}
