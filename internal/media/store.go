// Package media stores uploaded images on local disk under a single root,
// fetches remote images with a streaming size cap, and resolves paths for
// the public media endpoint.
package media

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const sniffLen = 3072

var (
	// ErrTooLarge is returned when content exceeds the configured byte cap.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType is returned when content is not an accepted raster image.
	ErrUnsupportedType = errors.New("unsupported image type")
)

// Store writes media files below root. Stored paths are slash-separated and
// relative to root.
type Store struct {
	root     string
	maxBytes int64
	now      func() time.Time
}

func NewStore(root string, maxBytes int64) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("media root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Store{root: abs, maxBytes: maxBytes, now: time.Now}, nil
}

// Root returns the absolute media root.
func (s *Store) Root() string {
	return s.root
}

// Save streams r into dir under a generated name, rejecting content over the
// cap or whose sniffed type is not an accepted raster image.
func (s *Store) Save(dir string, r io.Reader) (string, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	ext, ok := sniffExtension(head)
	if !ok {
		return "", ErrUnsupportedType
	}
	name := fmt.Sprintf("%s_%s.%s", s.now().UTC().Format("20060102_150405"), uuid.NewString()[:8], ext)
	return s.write(dir, name, br)
}

// SaveNamed writes data under dir/name after checking the cap and sniffed type.
// The extension of name is kept as given.
func (s *Store) SaveNamed(dir, name string, data []byte) (string, error) {
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}
	if _, ok := sniffExtension(data); !ok {
		return "", ErrUnsupportedType
	}
	return s.write(dir, name, bytes.NewReader(data))
}

// Import moves an already validated local file into dir under a generated name.
func (s *Store) Import(dir, src, ext string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()
	name := fmt.Sprintf("%s_%s.%s", s.now().UTC().Format("20060102_150405"), uuid.NewString()[:8], ext)
	return s.write(dir, name, f)
}

// Delete removes a stored file. Missing files are ignored.
func (s *Store) Delete(rel string) error {
	abs, err := s.abs(rel)
	if err != nil {
		return err
	}
	return removeIfExists(abs)
}

func (s *Store) write(dir, name string, r io.Reader) (rel string, err error) {
	rel = path.Join(cleanDir(dir), filepath.Base(name))
	dest, err := s.abs(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, removeIfExists(tmp.Name()))
		}
	}()

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write media: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return "", ErrTooLarge
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("store media: %w", err)
	}
	return rel, nil
}

// abs maps a relative media path to an absolute path that is guaranteed to be under root.
func (s *Store) abs(rel string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(rel))
	abs := filepath.Join(s.root, filepath.FromSlash(clean))
	if !within(s.root, abs) || abs == s.root {
		return "", fmt.Errorf("path escapes media root")
	}
	return abs, nil
}

func sniffExtension(head []byte) (string, bool) {
	return ExtensionFor(mimetype.Detect(head).String())
}

func cleanDir(dir string) string {
	clean := strings.Trim(path.Clean("/"+filepath.ToSlash(dir)), "/")
	if clean == "." {
		return ""
	}
	return clean
}

func within(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func removeIfExists(p string) error {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PublicURL joins the public media prefix with a stored path. Nil or empty paths yield nil.
func PublicURL(prefix string, rel *string) *string {
	if rel == nil || strings.TrimSpace(*rel) == "" {
		return nil
	}
	url := strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(*rel, "/")
	return &url
}
