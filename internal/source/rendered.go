package source

import (
	"context"

	"github.com/law-makers/hackscout/internal/engine/dynamic"
)

// RenderedOptions configures sessions backed by a headless browser
type RenderedOptions struct {
	Browser dynamic.Options
	Listing dynamic.NavOptions
	Detail  dynamic.NavOptions
}

type renderedSession struct {
	browser *dynamic.Browser
	opts    RenderedOptions
}

// OpenRendered returns an Opener that launches one browser per crawl
func OpenRendered(opts RenderedOptions) Opener[*dynamic.Page] {
	return func(ctx context.Context) (Session[*dynamic.Page], error) {
		b, err := dynamic.Launch(ctx, opts.Browser)
		if err != nil {
			return nil, err
		}
		return &renderedSession{browser: b, opts: opts}, nil
	}
}

func (s *renderedSession) Listing(ctx context.Context, url string) (*dynamic.Page, error) {
	return s.browser.Navigate(ctx, url, s.opts.Listing)
}

func (s *renderedSession) Detail(ctx context.Context, url string) (*dynamic.Page, error) {
	return s.browser.Navigate(ctx, url, s.opts.Detail)
}

func (s *renderedSession) Close() error {
	return s.browser.Close()
}
