package reqctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type key int

const crawlKey key = 0

// CrawlContext identifies one crawl across log lines, metrics and errors
type CrawlContext struct {
	CrawlID   string
	Provider  string
	StartTime time.Time
}

// WithCrawl attaches a fresh CrawlContext to ctx
func WithCrawl(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, crawlKey, &CrawlContext{
		CrawlID:   uuid.NewString(),
		Provider:  provider,
		StartTime: time.Now(),
	})
}

// FromContext returns the crawl attached to ctx, or a placeholder
func FromContext(ctx context.Context) *CrawlContext {
	if cc, ok := ctx.Value(crawlKey).(*CrawlContext); ok {
		return cc
	}
	return &CrawlContext{
		CrawlID:   "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns base enriched with the crawl's id and provider
func Logger(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	cc := FromContext(ctx)
	return base.With().
		Str("crawl_id", cc.CrawlID).
		Str("provider", cc.Provider).
		Logger()
}

// CrawlError wraps an error with the crawl it happened in
type CrawlError struct {
	CrawlID string
	Err     error
}

// Error implements the error interface
func (e *CrawlError) Error() string {
	return fmt.Sprintf("[%s] %v", e.CrawlID, e.Err)
}

// Unwrap returns the underlying error
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// NewCrawlError tags err with the crawl id from ctx
func NewCrawlError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &CrawlError{
		CrawlID: FromContext(ctx).CrawlID,
		Err:     err,
	}
}
