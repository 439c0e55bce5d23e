package media

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is the single error returned for every rejected or missing media path.
var ErrNotFound = errors.New("media not found")

// Resolver maps request paths to files under the media root.
type Resolver struct {
	root string
}

func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Resolver{root: abs}, nil
}

// Resolve validates a request path and returns the absolute file path and its
// MIME type. Unknown extensions, traversal segments, paths that resolve outside
// the root (including through symlinks), directories and missing files all
// yield ErrNotFound.
func (r *Resolver) Resolve(requested string) (string, string, error) {
	requested = strings.TrimSuffix(strings.TrimSpace(requested), "/")
	if requested == "" || strings.ContainsRune(requested, 0) || strings.Contains(requested, "\\") {
		return "", "", ErrNotFound
	}
	for _, segment := range strings.Split(requested, "/") {
		if segment == ".." {
			return "", "", ErrNotFound
		}
	}
	contentType, ok := ContentTypeForPath(requested)
	if !ok {
		return "", "", ErrNotFound
	}

	clean := path.Clean("/" + requested)
	candidate := filepath.Join(r.root, filepath.FromSlash(clean))
	if !within(r.root, candidate) {
		return "", "", ErrNotFound
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", "", ErrNotFound
	}
	root, err := filepath.EvalSymlinks(r.root)
	if err != nil || !within(root, resolved) {
		return "", "", ErrNotFound
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return "", "", ErrNotFound
	}
	return resolved, contentType, nil
}
