// Package resource fetches stylesheets, markup and image bytes from
// network, file and data URIs.
package resource

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "htmlbox/1.0 (compatible; Go)"

// Resource is a fetched body with its content type and resolved location.
type Resource struct {
	URL         string
	ContentType string
	Body        []byte
}

// Options configures a Fetcher.
type Options struct {
	// BaseURL resolves relative references. It may be an http(s) URL or a
	// directory path.
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RateLimit caps network requests per second; 0 disables the limit.
	RateLimit float64
	Client    *http.Client
}

// Fetcher retrieves resources by URI.
type Fetcher struct {
	base    string
	agent   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewFetcher creates a fetcher. A "~" in a file base is expanded to the
// home directory.
func NewFetcher(opts Options, logger *zap.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fetcher{
		base:   opts.BaseURL,
		agent:  opts.UserAgent,
		client: opts.Client,
		logger: logger.Named("fetch"),
	}
	if f.agent == "" {
		f.agent = defaultUserAgent
	}
	if f.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		f.client = &http.Client{Timeout: timeout}
	}
	if opts.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	if f.base != "" && !IsNetworkURL(f.base) {
		expanded, err := homedir.Expand(f.base)
		if err != nil {
			return nil, fmt.Errorf("expanding base %q: %w", f.base, err)
		}
		f.base = expanded
	}
	return f, nil
}

// IsNetworkURL reports whether s is an http or https URL.
func IsNetworkURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// IsDataURI reports whether s is a data: URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "data:")
}

// Resolve turns ref into an absolute URL or path using the base.
func (f *Fetcher) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "", IsDataURI(ref), IsNetworkURL(ref):
		return ref
	case strings.HasPrefix(ref, "//") && IsNetworkURL(f.base):
		u, err := url.Parse(f.base)
		if err == nil {
			return u.Scheme + ":" + ref
		}
		return ref
	case IsNetworkURL(f.base):
		baseURL, err := url.Parse(f.base)
		if err != nil {
			return ref
		}
		refURL, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return baseURL.ResolveReference(refURL).String()
	}
	path := strings.TrimPrefix(ref, "file://")
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	if !filepath.IsAbs(path) && f.base != "" {
		path = filepath.Join(f.base, filepath.FromSlash(path))
	}
	return path
}

// Fetch loads uri from the network, a data URI or the file system.
func (f *Fetcher) Fetch(ctx context.Context, uri string) (*Resource, error) {
	resolved := f.Resolve(uri)
	switch {
	case resolved == "":
		return nil, fmt.Errorf("empty resource reference")
	case IsDataURI(resolved):
		return ParseDataURI(resolved)
	case IsNetworkURL(resolved):
		return f.fetchHTTP(ctx, resolved)
	}
	body, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", resolved, err)
	}
	return &Resource{URL: resolved, ContentType: mime.TypeByExtension(filepath.Ext(resolved)), Body: body}, nil
}

// FetchText loads uri and decodes it to UTF-8 using the charset of its
// content type, a byte order mark or a <meta> declaration.
func (f *Fetcher) FetchText(ctx context.Context, uri string) (string, error) {
	res, err := f.Fetch(ctx, uri)
	if err != nil {
		return "", err
	}
	return res.Text()
}

// Text decodes the body to UTF-8.
func (r *Resource) Text() (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(r.Body), r.ContentType)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", r.URL, err)
	}
	text, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", r.URL, err)
	}
	return string(text), nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, uri string) (*Resource, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting to fetch %s: %w", uri, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.agent)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, uri)
	}
	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("reading response body of %s: %w", uri, err)
	}
	f.logger.Debug("fetched",
		zap.String("url", uri),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	return &Resource{URL: uri, ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}

// decodeBody reads the response body and undoes its content encoding.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		reader = zr
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		reader = zr
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}
	return io.ReadAll(reader)
}
