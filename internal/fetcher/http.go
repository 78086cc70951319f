package fetcher

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/detroit-open-data/ccw-yoy/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond limits requests to the portal. Zero means 2.
	RequestsPerSecond float64
	Retry             resilience.RetryConfig
}

// HTTPFetcher downloads files over HTTP with rate limiting and retries.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    HTTPOptions
}

// NewHTTPFetcher creates an HTTPFetcher, filling unset options with defaults.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ccw-yoy/1.0"
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Retry.OnRetry == nil {
		opts.Retry.OnRetry = resilience.RetryLogger("fetcher.get")
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		opts:    opts,
	}
}

// get issues a GET, retrying transient failures. A 304 response is
// returned as is.
func (f *HTTPFetcher) get(ctx context.Context, rawURL, etag string) (*http.Response, error) {
	return resilience.DoVal(ctx, f.opts.Retry, func(ctx context.Context) (*http.Response, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: create request")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resilience.IsTransientStatus(resp.StatusCode) {
			_ = resp.Body.Close()
			return nil, resilience.NewTransientError(
				eris.Errorf("fetcher: http %d from %s", resp.StatusCode, rawURL), resp.StatusCode)
		}
		return resp, nil
	})
}

// Fetch downloads t unless the server reports etag as current. Zip
// archives are extracted into t.Path; anything else replaces t.Path.
func (f *HTTPFetcher) Fetch(ctx context.Context, t Target, etag string) (Result, error) {
	res := Result{Name: t.Name, Path: t.Path}

	resp, err := f.get(ctx, t.URL, etag)
	if err != nil {
		return res, err
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusNotModified:
		return res, nil
	case http.StatusOK:
	default:
		return res, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, t.URL)
	}

	dir := filepath.Dir(t.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, eris.Wrapf(err, "fetcher: create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(t.Path)+".*.download")
	if err != nil {
		return res, eris.Wrap(err, "fetcher: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	br := bufio.NewReader(resp.Body)
	peeked, _ := br.Peek(len(zipMagic))
	isZip := bytes.Equal(peeked, zipMagic)
	res.Bytes, err = io.Copy(tmp, br)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return res, eris.Wrapf(err, "fetcher: download %s", t.URL)
	}

	if isZip {
		res.Files, err = replaceWithZIP(tmp.Name(), t.Path)
		if err != nil {
			return res, err
		}
	} else if err := os.Rename(tmp.Name(), t.Path); err != nil {
		return res, eris.Wrapf(err, "fetcher: move download to %s", t.Path)
	}

	res.Changed = true
	return res, writeETag(t.Path, resp.Header.Get("ETag"))
}
