// internal/engine/dynamic/browser.go
package dynamic

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/law-makers/hackscout/internal/engine"
	"github.com/law-makers/hackscout/internal/ratelimit"
)

// Options configures one rendered-navigation session
type Options struct {
	Headless   bool
	ChromePath string
	UserAgent  string
	Proxy      string

	// ImplicitWait bounds how long node lookups wait for a selector to match
	ImplicitWait time.Duration
	// PageLoadTimeout bounds a single navigation
	PageLoadTimeout time.Duration

	Limiter ratelimit.RateLimiter
	Logger  zerolog.Logger
}

// NavOptions tunes a single navigation
type NavOptions struct {
	// Settle is a fixed wait after load for client-side rendering
	Settle time.Duration
	// TolerateTimeout keeps going when the page-load timeout fires; the
	// document is usually usable even if some resources never finished
	TolerateTimeout bool
}

// Browser is one headless Chrome with a single tab, owned by one crawl.
// Navigating the tab invalidates every Page obtained before.
type Browser struct {
	opts        Options
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	mu          sync.Mutex
	generation  uint64
	closed      bool
}

// Launch starts a browser and opens its tab. Cancelling ctx during startup
// aborts the launch.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 30 * time.Second
	}

	chromePath := FindChrome(opts.ChromePath)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts, chromePath)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	b := &Browser{
		opts:        opts,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}

	// The first Run allocates the browser process and ties its lifetime to
	// the context it is given, so it must run on the tab context itself.
	stop := context.AfterFunc(ctx, func() { b.Close() })
	err := chromedp.Run(tabCtx)
	stop()
	if err != nil {
		b.Close()
		return nil, engine.NewEngineError(engine.ErrCodeNavigation, "start browser", err)
	}

	opts.Logger.Debug().
		Str("chrome", chromePath).
		Bool("headless", opts.Headless).
		Str("proxy", opts.Proxy).
		Msg("Browser started")

	return b, nil
}

// Navigate loads url in the tab and returns a Page bound to the new document
func (b *Browser) Navigate(ctx context.Context, url string, nav NavOptions) (*Page, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, engine.NewEngineError(engine.ErrCodeNavigation, "browser closed", nil)
	}
	b.generation++
	gen := b.generation
	b.mu.Unlock()

	if err := b.opts.Limiter.Wait(ctx, url); err != nil {
		return nil, err
	}

	start := time.Now()
	loadCtx, cancel := b.bind(ctx, b.opts.PageLoadTimeout)
	err := chromedp.Run(loadCtx, chromedp.Navigate(url))
	cancel()

	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
		if !(timedOut && nav.TolerateTimeout) {
			return nil, engine.NewEngineError(engine.ErrCodeNavigation, url, err)
		}
		b.opts.Logger.Warn().
			Str("url", url).
			Dur("timeout", b.opts.PageLoadTimeout).
			Msg("Page load timed out, continuing with partial document")
	}

	if nav.Settle > 0 {
		settleCtx, cancel := b.bind(ctx, 0)
		err := chromedp.Run(settleCtx, chromedp.Sleep(nav.Settle))
		cancel()
		if err != nil {
			return nil, err
		}
	}

	b.opts.Logger.Debug().
		Str("url", url).
		Dur("elapsed", time.Since(start)).
		Msg("Page rendered")

	return &Page{browser: b, url: url, generation: gen}, nil
}

// Close stops the browser. Safe to call more than once.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.tabCancel != nil {
		b.tabCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}

	b.opts.Logger.Debug().Msg("Browser closed")
	return nil
}

// current reports whether gen is still the loaded document
func (b *Browser) current(gen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.generation == gen
}

// bind derives a context from the tab that is also cancelled with ctx.
// A zero timeout means no extra deadline.
func (b *Browser) bind(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(b.tabCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(b.tabCtx)
	}

	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
