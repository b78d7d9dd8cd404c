package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
)

// Fetcher resolves track locations against a base directory or http(s)
// URL, then opens and decodes them.
type Fetcher struct {
	base string
	http *http.Client
}

// NewFetcher creates a fetcher. timeout bounds each remote fetch.
func NewFetcher(base string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

// Resolve returns the absolute location for a track resource.
func (f *Fetcher) Resolve(location string) string {
	if isURL(location) || filepath.IsAbs(location) {
		return location
	}
	if isURL(f.base) {
		u, err := url.Parse(f.base)
		if err != nil {
			return location
		}
		u.Path = path.Join(u.Path, location)
		return u.String()
	}
	return filepath.Join(f.base, filepath.FromSlash(location))
}

// Open fetches the resource at location.
func (f *Fetcher) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	target := f.Resolve(location)
	if !isURL(target) {
		file, err := os.Open(target)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", target, err)
		}
		return file, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", target, resp.Status)
	}
	return resp.Body, nil
}

// Load fetches and decodes the resource at location into memory.
func (f *Fetcher) Load(ctx context.Context, location string) (*beep.Buffer, error) {
	rc, err := f.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	return Decode(rc, extension(location))
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func extension(location string) string {
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		location = u.Path
	}
	return strings.ToLower(path.Ext(location))
}
