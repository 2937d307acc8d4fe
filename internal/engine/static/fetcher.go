// internal/engine/static/fetcher.go
package static

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/law-makers/hackscout/internal/engine"
	"github.com/law-makers/hackscout/internal/ratelimit"
	"github.com/law-makers/hackscout/internal/retry"
)

const (
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptJSON = "application/json"

	// maxBodyBytes caps a single response body
	maxBodyBytes = 16 << 20
)

// Options configures a Fetcher
type Options struct {
	Client    *http.Client
	UserAgent string
	Headers   map[string]string
	Limiter   ratelimit.RateLimiter
	Retry     retry.Config
	Logger    zerolog.Logger

	// OnRetry is told the host of every retried request
	OnRetry func(host string)
}

// Fetcher issues GET requests with per-host pacing and exponential backoff
type Fetcher struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	limiter   ratelimit.RateLimiter
	retry     retry.Config
	logger    zerolog.Logger
	onRetry   func(host string)
}

// Response is a fully read 2xx response
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

// NewFetcher creates a Fetcher; a nil client gets a 15s-timeout default
func NewFetcher(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		headers:   opts.Headers,
		limiter:   limiter,
		retry:     opts.Retry,
		logger:    opts.Logger,
		onRetry:   opts.OnRetry,
	}
}

// Get fetches rawURL. 2xx returns immediately, 429, 5xx and connection
// failures are retried with backoff, any other status fails at once.
func (f *Fetcher) Get(ctx context.Context, rawURL, accept string) (*Response, error) {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	cfg := f.retry
	userOnRetry := cfg.OnRetry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		f.logger.Warn().
			Str("url", rawURL).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Err(err).
			Msg("Request failed, backing off")
		if f.onRetry != nil {
			f.onRetry(host)
		}
		if userOnRetry != nil {
			userOnRetry(attempt, delay, err)
		}
	}

	var resp *Response
	err := retry.WithRetry(ctx, cfg, func() error {
		r, err := f.do(ctx, rawURL, accept)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, engine.NewEngineError(engine.ErrCodeFetch, rawURL, err)
	}

	f.logger.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Elapsed).
		Msg("Fetch completed")

	return resp, nil
}

func (f *Fetcher) do(ctx context.Context, rawURL, accept string) (*Response, error) {
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, retry.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Elapsed:    time.Since(start),
	}, nil
}

// GetJSON fetches rawURL and decodes the body into v
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := f.Get(ctx, rawURL, acceptJSON)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return engine.NewEngineError(engine.ErrCodeParseError, rawURL, err)
	}
	return nil
}

// GetDocument fetches rawURL and parses it as HTML
func (f *Fetcher) GetDocument(ctx context.Context, rawURL string) (*Document, error) {
	resp, err := f.Get(ctx, rawURL, acceptHTML)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeParseError, rawURL, err)
	}
	return NewDocument(rawURL, doc), nil
}
