// Package crawl drives a source through its listing pages: fetch, extract,
// filter, enrich and hand each event to a sink until a stop condition holds.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/hackscout/internal/extract"
	"github.com/law-makers/hackscout/internal/filter"
	"github.com/law-makers/hackscout/internal/metrics"
	"github.com/law-makers/hackscout/internal/reqctx"
	"github.com/law-makers/hackscout/internal/source"
	"github.com/law-makers/hackscout/pkg/models"
)

// Stop is the reason a crawl ended
type Stop string

const (
	StopTarget      Stop = "target"
	StopExhausted   Stop = "exhausted"
	StopPageLimit   Stop = "page_limit"
	StopFetchFailed Stop = "fetch_failed"
	StopCancelled   Stop = "cancelled"
	StopSinkClosed  Stop = "sink_closed"
)

// Abnormal reports whether the stop carries an error
func (s Stop) Abnormal() bool {
	return s == StopFetchFailed || s == StopCancelled || s == StopSinkClosed
}

// ErrSinkClosed is reported when the receiver stopped accepting events
var ErrSinkClosed = errors.New("event sink closed")

// Sink receives each finished event in discovery order. Returning false
// ends the crawl.
type Sink func(ev models.Event) bool

// Summary describes a finished crawl
type Summary struct {
	CrawlID        string
	Provider       models.Provider
	Pages          int
	Delivered      int
	Rejected       int
	Duplicates     int
	DetailFailures int
	Stop           Stop
	Err            error
	Elapsed        time.Duration
}

// Controller holds what every crawl shares
type Controller struct {
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	maxPages int
	now      func() time.Time
}

// Options configures a Controller
type Options struct {
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// MaxPages caps listing pages per crawl, 0 means no cap
	MaxPages int
}

// NewController creates a Controller
func NewController(opts Options) *Controller {
	return &Controller{
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		maxPages: opts.MaxPages,
		now:      time.Now,
	}
}

// Run crawls src until req.Count events reached sink or another stop
// condition holds. Everything delivered before an abnormal stop stays
// delivered.
func Run[D, N any](ctx context.Context, c *Controller, src source.Source[D, N], req models.CrawlRequest, sink Sink) (sum Summary) {
	ctx = reqctx.WithCrawl(ctx, string(src.Provider))
	cc := reqctx.FromContext(ctx)
	logger := reqctx.Logger(ctx, c.logger)
	ctx = logger.WithContext(ctx)

	sum = Summary{CrawlID: cc.CrawlID, Provider: src.Provider}
	start := c.now()

	logger.Info().
		Str("domain", req.Domain).
		Str("location", req.Location).
		Int("count", req.Count).
		Msg("Crawl started")

	defer func() {
		sum.Elapsed = c.now().Sub(start)
		c.metrics.CrawlFinished(string(src.Provider), string(sum.Stop), sum.Elapsed)

		ev := logger.Info()
		if sum.Stop.Abnormal() {
			ev = logger.Warn().Err(sum.Err)
		}
		ev.Str("stop", string(sum.Stop)).
			Int("pages", sum.Pages).
			Int("delivered", sum.Delivered).
			Int("rejected", sum.Rejected).
			Int("duplicates", sum.Duplicates).
			Dur("elapsed", sum.Elapsed).
			Msg("Crawl finished")
	}()

	stop := func(s Stop, err error) Summary {
		sum.Stop = s
		if s.Abnormal() {
			sum.Err = reqctx.NewCrawlError(ctx, err)
		}
		return sum
	}

	if req.Count <= 0 {
		return stop(StopTarget, nil)
	}

	sess, err := src.Open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return stop(StopCancelled, ctx.Err())
		}
		return stop(StopFetchFailed, fmt.Errorf("open session: %w", err))
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Debug().Err(err).Msg("Session close failed")
		}
	}()

	f := filter.New(req, src.KeywordInQuery)
	stamp := extract.Stamp{Provider: src.Provider, Type: src.Type, Now: c.now}

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			return stop(StopCancelled, ctx.Err())
		}
		if c.maxPages > 0 && page > c.maxPages {
			return stop(StopPageLimit, nil)
		}

		url := src.Adapter.ListingURL(req.Domain, page)
		if url == "" {
			return stop(StopExhausted, nil)
		}

		plog := logger.With().Int("page", page).Logger()
		plog.Debug().Str("url", url).Msg("Fetching listing page")

		doc, err := sess.Listing(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return stop(StopCancelled, ctx.Err())
			}
			return stop(StopFetchFailed, fmt.Errorf("listing page %d: %w", page, err))
		}
		sum.Pages++
		c.metrics.PageFetched(string(src.Provider))

		nodes, err := src.Adapter.ItemNodes(ctx, doc)
		if err != nil {
			if ctx.Err() != nil {
				return stop(StopCancelled, ctx.Err())
			}
			return stop(StopFetchFailed, fmt.Errorf("listing items on page %d: %w", page, err))
		}
		if len(nodes) == 0 {
			plog.Debug().Msg("No listing items, source exhausted")
			return stop(StopExhausted, nil)
		}

		events := extract.Phase1(ctx, nodes, src.Adapter.BasicFields, stamp)
		plog.Debug().Int("items", len(events)).Msg("Listing page extracted")

		for _, ev := range events {
			switch v := f.Accept(&ev); v {
			case filter.Accepted:
			case filter.Duplicate:
				sum.Duplicates++
				c.metrics.EventRejected(string(src.Provider), v.String())
				continue
			default:
				sum.Rejected++
				c.metrics.EventRejected(string(src.Provider), v.String())
				continue
			}

			full, err := extract.Enrich(ctx, ev, extract.Navigator[D](sess.Detail), src.Adapter.DetailFields)
			if err != nil {
				sum.DetailFailures++
				c.metrics.DetailFailed(string(src.Provider))
			}
			if ctx.Err() != nil {
				return stop(StopCancelled, ctx.Err())
			}

			if !sink(full) {
				return stop(StopSinkClosed, ErrSinkClosed)
			}
			sum.Delivered++
			c.metrics.EventDelivered(string(src.Provider))

			if sum.Delivered >= req.Count {
				return stop(StopTarget, nil)
			}
		}
	}
}
