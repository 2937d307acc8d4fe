// Package source defines what a listing source must provide to be crawled:
// an adapter that knows the site's markup and a session that loads pages.
package source

import (
	"context"

	"github.com/law-makers/hackscout/pkg/models"
)

// Adapter extracts events from one source. D is the loaded document type
// and N the item node type of its listing pages.
type Adapter[D, N any] interface {
	// ListingURL returns the address of a listing page, or "" when the
	// source has no page with that number
	ListingURL(keyword string, page int) string

	// ItemNodes returns the listing items of doc. An empty result means
	// there are no more pages.
	ItemNodes(ctx context.Context, doc D) ([]N, error)

	// BasicFields reads the fields available on the listing itself. Missing
	// fields are empty; an error means the whole item is unusable.
	BasicFields(ctx context.Context, node N) (models.Event, error)

	// DetailFields reads what the event's own page adds, best-effort per field
	DetailFields(ctx context.Context, doc D) models.Detail
}

// Session loads documents for one crawl. Loading a page may invalidate
// documents and nodes obtained earlier.
type Session[D any] interface {
	Listing(ctx context.Context, url string) (D, error)
	Detail(ctx context.Context, url string) (D, error)
	Close() error
}

// Opener starts a Session for a new crawl
type Opener[D any] func(ctx context.Context) (Session[D], error)

// Source binds an adapter to the way its pages are loaded
type Source[D, N any] struct {
	Name        string
	Description string
	Provider    models.Provider
	Type        models.EventType

	// KeywordInQuery is set when ListingURL already searches by keyword,
	// so titles need no second check
	KeywordInQuery bool

	Adapter Adapter[D, N]
	Open    Opener[D]
}
