package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"darkroom/internal/config"
)

// Source fetches original photo bytes by their opaque source reference.
type Source interface {
	Fetch(ctx context.Context, sourceRef string) ([]byte, error)
}

// maxPhotoBytes caps a single fetched asset. Listing photos top out in the
// tens of megabytes; anything larger is a misconfigured ref.
const maxPhotoBytes = 64 << 20

// HTTPSource fetches photos over HTTP. Relative refs are resolved against the
// configured base URL; absolute refs are fetched as-is.
type HTTPSource struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPSource builds a source store from configuration.
func NewHTTPSource(cfg config.Source) *HTTPSource {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the asset bytes for sourceRef.
func (s *HTTPSource) Fetch(ctx context.Context, sourceRef string) ([]byte, error) {
	target, err := s.resolve(sourceRef)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", sourceRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", sourceRef, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourceRef, err)
	}
	if len(data) > maxPhotoBytes {
		return nil, fmt.Errorf("fetch %s: asset exceeds %d bytes", sourceRef, maxPhotoBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch %s: empty response body", sourceRef)
	}
	return data, nil
}

func (s *HTTPSource) resolve(sourceRef string) (string, error) {
	trimmed := strings.TrimSpace(sourceRef)
	if trimmed == "" {
		return "", errors.New("source ref is empty")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse source ref %q: %w", sourceRef, err)
	}
	if parsed.IsAbs() {
		return trimmed, nil
	}
	if s.baseURL == "" {
		return "", fmt.Errorf("relative source ref %q requires source.base_url", sourceRef)
	}
	return s.baseURL + "/" + strings.TrimLeft(trimmed, "/"), nil
}
