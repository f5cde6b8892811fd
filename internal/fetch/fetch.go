// Package fetch retrieves level payloads from the level API or from static files.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
	"github.com/klauspost/compress/gzhttp"
)

const defaultUserAgent = "toycar/1.0"

// maxPayload bounds a single response body.
const maxPayload = 8 << 20

// ErrNetworkUnavailable wraps every remote failure: transport errors and non-OK statuses.
var ErrNetworkUnavailable = errors.New("network unavailable")

// Source returns the raw bytes of a named resource.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// HTTPSource fetches name relative to BaseURL.
type HTTPSource struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
}

// NewHTTPSource returns a source with a 10s client timeout that accepts gzip and zstd
// responses.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: gzhttp.Transport(http.DefaultTransport),
		},
		UserAgent: defaultUserAgent,
	}
}

func (s *HTTPSource) url(name string) string {
	return s.BaseURL + "/" + strings.TrimLeft(name, "/")
}

// Fetch performs GET BaseURL/name and returns the body on 200 OK.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := s.url(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w: %v", url, ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: %s: HTTP %d: %w", url, resp.StatusCode, ErrNetworkUnavailable)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w: %v", url, ErrNetworkUnavailable, err)
	}
	return data, nil
}

// FSSource reads name from a filesystem; names are slash-separated and relative.
type FSSource struct {
	FS hackpadfs.FS
}

// Fetch reads the whole file.
func (s *FSSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := hackpadfs.ReadFile(s.FS, strings.TrimLeft(name, "/"))
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w", name, err)
	}
	return data, nil
}

// DirFS opens dir on the host filesystem as a hackpadfs.FS.
func DirFS(dir string) (hackpadfs.FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	// hackpadfs paths are rooted at "/" and never start with it.
	sub, err := osfs.NewFS().Sub(strings.TrimPrefix(filepath.ToSlash(abs), "/"))
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w", dir, err)
	}
	return sub, nil
}
