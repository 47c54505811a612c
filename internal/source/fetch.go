package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "classclock/internal/log"
)

// cacheEntry holds HTTP cache metadata for a single document URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HTTPProvider fetches schedule documents from a base URL with HTTP
// caching (ETag / Last-Modified) and a disk-backed body cache, so a flaky
// network still yields the last known schedule.
//
// A 404 is reported as ErrNotFound without consulting the cache: an absent
// weekly override must fall through to the normal document rather than
// resurrect a stale override from a previous week.
type HTTPProvider struct {
	BaseURL  string
	client   *http.Client
	cacheDir string
}

// NewHTTPProvider creates an HTTPProvider caching under cacheDir.
func NewHTTPProvider(baseURL, cacheDir string) *HTTPProvider {
	if cacheDir == "" {
		// Caller should set this explicitly; fall back to a relative dir
		// so that development runs without root permissions.
		cacheDir = "./cache/schedules"
	}
	return &HTTPProvider{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cacheDir: cacheDir,
	}
}

// Fetch retrieves a single schedule document, honoring ETag and
// Last-Modified, using a disk cache keyed by a hash of the URL.
func (p *HTTPProvider) Fetch(ctx context.Context, name string) ([]byte, error) {
	if p.BaseURL == "" {
		return nil, errors.New("source: base URL is empty")
	}
	url := p.BaseURL + "/" + name

	cachePath, err := p.cachePathForURL(url)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return nil, err
	}

	meta, _ := p.loadCacheMeta(cachePath)
	cachedBody, _ := p.loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	// Conditional headers from cache metadata.
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		// Network error; if we have a cached body, fall back to it.
		if len(cachedBody) > 0 {
			appLog.Error("source: fetch network error, using cached body", err, "name", name)
			return cachedBody, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := p.saveCache(cachePath, newMeta, body); err != nil {
			// Log but still return the freshly fetched body.
			appLog.Error("source: cache save failed", err, "name", name)
		}

		appLog.Info("source: fetched schedule document", "name", name, "status", resp.StatusCode)
		return body, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			// 304 but no cached body: treat as error.
			return nil, errors.New("source: 304 Not Modified but no cached body available")
		}
		appLog.Debug("source: document not modified; using cache", "name", name)
		return cachedBody, nil

	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)

	default:
		// Non-OK status: if we have cached data, fall back to it.
		if len(cachedBody) > 0 {
			appLog.Error("source: fetch non-OK, using cached body", errors.New(resp.Status), "name", name, "status", resp.StatusCode)
			return cachedBody, nil
		}
		return nil, errors.New(resp.Status)
	}
}

func (p *HTTPProvider) cachePathForURL(url string) (string, error) {
	if url == "" {
		return "", errors.New("source: empty url")
	}
	sum := sha256.Sum256([]byte(url))
	// Use first 16 hex chars as directory name.
	dir := hex.EncodeToString(sum[:8])
	return filepath.Join(p.cacheDir, dir), nil
}

func (p *HTTPProvider) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (p *HTTPProvider) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.json"))
}

func (p *HTTPProvider) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.json"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}
