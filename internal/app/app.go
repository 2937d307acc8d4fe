// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/hackscout/internal/config"
	"github.com/law-makers/hackscout/internal/crawl"
	"github.com/law-makers/hackscout/internal/delivery"
	"github.com/law-makers/hackscout/internal/downloader"
	"github.com/law-makers/hackscout/internal/engine/dynamic"
	"github.com/law-makers/hackscout/internal/engine/static"
	"github.com/law-makers/hackscout/internal/metrics"
	"github.com/law-makers/hackscout/internal/proxy"
	"github.com/law-makers/hackscout/internal/ratelimit"
	"github.com/law-makers/hackscout/internal/retry"
	"github.com/law-makers/hackscout/internal/source"
	"github.com/law-makers/hackscout/internal/source/devpost"
	"github.com/law-makers/hackscout/internal/source/devpostapi"
	"github.com/law-makers/hackscout/internal/source/mlh"
	"github.com/law-makers/hackscout/internal/utils/headers"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command and shared by everything the command runs.
// Use Close() to release idle connections and flush metrics.
type Application struct {
	Config         *config.Config
	Logger         *zerolog.Logger
	Metrics        *metrics.Metrics
	RateLimiter    *ratelimit.DomainLimiter
	BrowserLimiter *ratelimit.DomainLimiter
	Proxies        *proxy.Pool
	HTTPClient     *http.Client
	Fetcher        *static.Fetcher
	Controller     *crawl.Controller
	Registry       *crawl.Registry
	Delivery       *delivery.Service
	Images         *downloader.WorkerPool
	startTime      time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the per-host rate limiters and the proxy rotation pool
//   - Initializes the HTTP client and the retrying fetcher
//   - Registers every source with the crawl controller
//   - Creates the delivery service and the image worker pool
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := newLogger(cfg)
	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	m := metrics.New()

	rateLimiter := ratelimit.NewDomainLimiter(cfg.StaticRateLimitRPS, cfg.StaticRateLimitBurst)
	browserLimiter := ratelimit.NewDomainLimiter(cfg.DynamicRateLimitRPS, cfg.DynamicRateLimitBurst)
	logger.Debug().
		Float64("static_rps", cfg.StaticRateLimitRPS).
		Float64("dynamic_rps", cfg.DynamicRateLimitRPS).
		Msg("Rate limiters initialized")

	proxies := proxy.NewPool(cfg.Proxies)

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			Proxy:               proxyFunc(proxies),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Int("proxies", proxies.Len()).
		Msg("HTTP client initialized")

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.Retry.MaxRetries
	retryCfg.InitialBackoff = cfg.Retry.InitialBackoff
	retryCfg.MaxBackoff = cfg.Retry.MaxBackoff
	retryCfg.Multiplier = cfg.Retry.Multiplier

	fetcher := static.NewFetcher(static.Options{
		Client:    httpClient,
		UserAgent: cfg.UserAgent,
		Headers:   headers.ParseHeaders(cfg.Headers),
		Limiter:   rateLimiter,
		Retry:     retryCfg,
		Logger:    logger,
		OnRetry:   m.Retry,
	})

	controller := crawl.NewController(crawl.Options{
		Logger:   logger,
		Metrics:  m,
		MaxPages: cfg.MaxPages,
	})

	browser := dynamic.Options{
		Headless:        cfg.BrowserHeadless,
		ChromePath:      cfg.ChromePath,
		UserAgent:       cfg.UserAgent,
		ImplicitWait:    cfg.ImplicitWait,
		PageLoadTimeout: cfg.PageLoadTimeout,
		Limiter:         browserLimiter,
		Logger:          logger,
	}

	registry := crawl.NewRegistry()
	for _, c := range []crawl.Crawler{
		crawl.Bind(controller, devpost.New(rotating(proxies, source.RenderedOptions{
			Browser: browser,
			Listing: dynamic.NavOptions{Settle: cfg.ListingSettle},
			Detail:  dynamic.NavOptions{Settle: cfg.DetailSettle},
		}))),
		crawl.Bind(controller, devpostapi.New(devpostapi.DefaultBase, fetcher)),
		crawl.Bind(controller, mlh.New(cfg.MLHSeason, rotating(proxies, source.RenderedOptions{
			Browser: browser,
			Listing: dynamic.NavOptions{Settle: cfg.ListingSettle, TolerateTimeout: true},
			Detail:  dynamic.NavOptions{Settle: cfg.ListingSettle},
		}))),
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	logger.Debug().Int("sources", len(registry.List())).Msg("Sources registered")

	images := downloader.NewWorkerPool(downloader.NewDownloader(downloader.Options{
		Client:    &http.Client{Timeout: cfg.ImageTimeout, Transport: httpClient.Transport},
		UserAgent: cfg.UserAgent,
		Limiter:   rateLimiter,
		Logger:    logger,
	}), cfg.ImageWorkers, config.DefaultMaxImageWorkers)

	app := &Application{
		Config:         cfg,
		Logger:         &logger,
		Metrics:        m,
		RateLimiter:    rateLimiter,
		BrowserLimiter: browserLimiter,
		Proxies:        proxies,
		HTTPClient:     httpClient,
		Fetcher:        fetcher,
		Controller:     controller,
		Registry:       registry,
		Delivery:       delivery.NewService(delivery.Options{Logger: logger}),
		Images:         images,
		startTime:      time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var level zerolog.Level
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	// "info" is the non-verbose default: only warnings reach the console, -v shows more
	default:
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer
	if cfg.JSONLog {
		w = os.Stderr
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return log.Logger
}

// proxyFunc picks a proxy from the pool for every new connection
func proxyFunc(pool *proxy.Pool) func(*http.Request) (*url.URL, error) {
	if pool.Len() == 0 {
		return http.ProxyFromEnvironment
	}
	return func(*http.Request) (*url.URL, error) {
		return url.Parse(pool.Next())
	}
}

// rotating gives every rendered crawl the next proxy of the pool. A proxy
// whose browser fails to start is put on cooldown.
func rotating(pool *proxy.Pool, opts source.RenderedOptions) source.Opener[*dynamic.Page] {
	return func(ctx context.Context) (source.Session[*dynamic.Page], error) {
		o := opts
		o.Browser.Proxy = pool.Next()
		s, err := source.OpenRendered(o)(ctx)
		if err != nil {
			pool.MarkFailed(o.Browser.Proxy)
			return nil, err
		}
		pool.MarkHealthy(o.Browser.Proxy)
		return s, nil
	}
}

// Close gracefully shuts down the application and all its resources.
//
// Crawls own their browsers, so only idle connections and the metrics
// textfile remain. Errors are logged and do not stop other steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	var err error
	if path := a.Config.MetricsFile; path != "" {
		if err = a.Metrics.WriteFile(path); err != nil {
			a.Logger.Warn().Err(err).Str("path", path).Msg("Failed to write metrics")
		}
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return err
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
