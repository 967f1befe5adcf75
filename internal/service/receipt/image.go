package receipt

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ridetrace/internal/model"
)

// maxImageBytes caps downloaded map images.
const maxImageBytes = 20 << 20

// Fetcher downloads a remote map image.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher fetches over HTTP(S).
type HTTPFetcher struct {
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPFetcher returns a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient, Timeout: timeout}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %s", rawURL, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// MapImage returns the raw bytes of the map image. cid: references resolve to
// inline attachments, data: URIs are decoded, http(s) URLs go through f and
// anything else is read as a path relative to the receipt file. Failures wrap
// model.ErrInvalidImage.
func (r *Receipt) MapImage(ctx context.Context, f Fetcher) ([]byte, error) {
	ref := r.MapRef
	switch {
	case ref == "":
		return nil, fmt.Errorf("receipt has no map image: %w", model.ErrInvalidImage)

	case strings.HasPrefix(strings.ToLower(ref), "cid:"):
		id := strings.Trim(ref[len("cid:"):], "<>")
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
		data, ok := r.Inline[id]
		if !ok {
			return nil, fmt.Errorf("inline image %q not attached: %w", id, model.ErrInvalidImage)
		}
		return data, nil

	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)

	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		if f == nil {
			return nil, fmt.Errorf("no fetcher for %s: %w", ref, model.ErrInvalidImage)
		}
		data, err := f.Fetch(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
		}
		return data, nil
	}

	path := ref
	if !filepath.IsAbs(path) && r.Path != "" {
		path = filepath.Join(filepath.Dir(r.Path), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
	}
	return data, nil
}

func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(ref[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI: %w", model.ErrInvalidImage)
	}
	if !strings.HasSuffix(meta, ";base64") {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
		}
		return []byte(s), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
	}
	return data, nil
}
