package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// Fetch outcomes, also used as the metric label.
const (
	OutcomeStored      = "stored"
	OutcomeBadURL      = "bad_url"
	OutcomeTimeout     = "timeout"
	OutcomeHTTPStatus  = "http_status"
	OutcomeContentType = "content_type"
	OutcomeTooLarge    = "too_large"
	OutcomeNotImage    = "not_image"
	OutcomeTransport   = "transport"
)

// FetchError carries a user-facing message and the outcome label of a failed fetch.
type FetchError struct {
	Outcome string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *FetchError) Unwrap() error { return e.Err }

type fetchObserver interface {
	ImageFetch(outcome string)
}

// FetcherParams configures a Fetcher.
type FetcherParams struct {
	Store    *Store
	Client   *http.Client
	Timeout  time.Duration
	MaxBytes int64
	TempDir  string
	Logger   zerolog.Logger
	Metrics  fetchObserver
}

// Fetcher downloads remote images into the media store.
type Fetcher struct {
	store    *Store
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	tempDir  string
	logg     zerolog.Logger
	metrics  fetchObserver
}

func NewFetcher(p FetcherParams) (*Fetcher, error) {
	if p.Store == nil {
		return nil, fmt.Errorf("media store required")
	}
	if p.MaxBytes <= 0 {
		return nil, fmt.Errorf("remote max bytes must be positive")
	}
	client := p.Client
	if client == nil {
		client = &http.Client{}
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		store:    p.Store,
		client:   client,
		timeout:  timeout,
		maxBytes: p.MaxBytes,
		tempDir:  p.TempDir,
		logg:     p.Logger,
		metrics:  p.Metrics,
	}, nil
}

// Fetch downloads rawURL and stores it under dir. The Content-Type header is
// checked before the body is read, the body is streamed to a temp file and
// aborted once it exceeds the cap, and the stored bytes are sniffed again.
// The temp file is always removed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dir string) (string, error) {
	rel, err := f.fetch(ctx, rawURL, dir)
	outcome := OutcomeStored
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			outcome = fe.Outcome
		} else {
			outcome = OutcomeTransport
		}
		f.logg.Warn().Err(err).Str("url", rawURL).Str("outcome", outcome).Msg("remote image fetch failed")
	}
	if f.metrics != nil {
		f.metrics.ImageFetch(outcome)
	}
	return rel, err
}

func (f *Fetcher) fetch(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &FetchError{Outcome: OutcomeBadURL, Message: "La URL de la imagen no es válida"}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", &FetchError{Outcome: OutcomeBadURL, Message: "La URL de la imagen no es válida", Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &FetchError{Outcome: OutcomeTimeout, Message: "Tiempo de espera agotado al descargar la imagen", Err: err}
		}
		return "", &FetchError{Outcome: OutcomeTransport, Message: "No se pudo descargar la imagen", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{
			Outcome: OutcomeHTTPStatus,
			Message: fmt.Sprintf("No se pudo descargar la imagen (HTTP %d)", resp.StatusCode),
		}
	}
	if !IsAllowedImageType(resp.Header.Get("Content-Type")) {
		return "", &FetchError{
			Outcome: OutcomeContentType,
			Message: fmt.Sprintf("Tipo de contenido no permitido. Formatos válidos: %s", AllowedTypesDescription()),
		}
	}
	if resp.ContentLength > f.maxBytes {
		return "", f.tooLarge()
	}

	tmp, err := os.CreateTemp(f.tempDir, "remote-image-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		if rmErr := removeIfExists(tmp.Name()); rmErr != nil {
			f.logg.Warn().Err(rmErr).Str("path", tmp.Name()).Msg("remove temp image")
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &FetchError{Outcome: OutcomeTimeout, Message: "Tiempo de espera agotado al descargar la imagen", Err: err}
		}
		return "", &FetchError{Outcome: OutcomeTransport, Message: "No se pudo descargar la imagen", Err: err}
	}
	if n > f.maxBytes {
		return "", f.tooLarge()
	}

	detected, err := mimetype.DetectFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("sniff remote image: %w", err)
	}
	ext, ok := ExtensionFor(detected.String())
	if !ok {
		return "", &FetchError{Outcome: OutcomeNotImage, Message: "El archivo descargado no es una imagen válida"}
	}
	return f.store.Import(dir, tmp.Name(), ext)
}

func (f *Fetcher) tooLarge() *FetchError {
	return &FetchError{
		Outcome: OutcomeTooLarge,
		Message: fmt.Sprintf("La imagen excede el tamaño máximo de %d MB", f.maxBytes>>20),
		Err:     ErrTooLarge,
	}
}
