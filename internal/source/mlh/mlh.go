// Package mlh reads the Major League Hacking season page and enriches events
// from their own external sites
package mlh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/hackscout/internal/engine/dynamic"
	"github.com/law-makers/hackscout/internal/engine/metadata"
	"github.com/law-makers/hackscout/internal/extract"
	"github.com/law-makers/hackscout/internal/source"
	urlutil "github.com/law-makers/hackscout/internal/utils/url"
	"github.com/law-makers/hackscout/pkg/models"
)

const (
	cardSelector     = ".event-wrapper"
	nameSelector     = ".event-name"
	linkSelector     = "a.event-link"
	locationSelector = ".event-location"
	dateSelector     = ".event-date"
	imageSelector    = ".image-wrap img"

	// contentSelector lists the containers an event site usually describes itself in
	contentSelector = "main, article, #about, #description, .about-section, .description-section, .post-content"

	// minContentChars is the text length a container needs to count as a description
	minContentChars = 200
	// maxBodyChars bounds the body fallback
	maxBodyChars = 3000
)

// ErrNoName marks a card without an event name; such cards are skipped
var ErrNoName = errors.New("event card has no name")

// SeasonURL returns the events page of a season
func SeasonURL(season string) string {
	return fmt.Sprintf("https://mlh.io/seasons/%s/events", season)
}

// Adapter extracts events from the rendered season page
type Adapter struct {
	URL string
}

var _ source.Adapter[*dynamic.Page, *dynamic.Node] = (*Adapter)(nil)

// New returns a Source for one MLH season
func New(season string, opener source.Opener[*dynamic.Page]) source.Source[*dynamic.Page, *dynamic.Node] {
	return source.Source[*dynamic.Page, *dynamic.Node]{
		Name:        "mlh",
		Description: "Major League Hacking season events, rendered in a headless browser",
		Provider:    models.ProviderMLH,
		Type:        models.TypeHackathon,
		Adapter:     &Adapter{URL: SeasonURL(season)},
		Open:        opener,
	}
}

// ListingURL returns the season page for page 1. The season is a single page.
func (a *Adapter) ListingURL(keyword string, page int) string {
	if page != 1 {
		return ""
	}
	return a.URL
}

func (a *Adapter) ItemNodes(ctx context.Context, doc *dynamic.Page) ([]*dynamic.Node, error) {
	return doc.Nodes(ctx, cardSelector)
}

func (a *Adapter) BasicFields(ctx context.Context, n *dynamic.Node) (models.Event, error) {
	text := func(field, sel string) string {
		return extract.OrDefault(ctx, field, func(ctx context.Context) (string, error) {
			return n.Text(ctx, sel)
		}, "")
	}
	attr := func(field, sel, name string) string {
		return extract.OrDefault(ctx, field, func(ctx context.Context) (string, error) {
			return n.Attr(ctx, sel, name)
		}, "")
	}

	title := text("title", nameSelector)
	if title == "" {
		return models.Event{}, ErrNoName
	}

	return models.Event{
		Title:    title,
		URL:      attr("url", linkSelector, "href"),
		Location: text("location", locationSelector),
		Date:     text("date", dateSelector),
		ImageURL: attr("image_url", imageSelector, "src"),
		Provider: models.ProviderMLH,
		Type:     models.TypeHackathon,
	}, nil
}

// DetailFields reads the event's external site from the rendered DOM
func (a *Adapter) DetailFields(ctx context.Context, doc *dynamic.Page) models.Detail {
	html := extract.OrDefault(ctx, "document", func(ctx context.Context) (string, error) {
		return doc.HTML(ctx, "html")
	}, "")
	if html == "" {
		return models.Detail{}
	}

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader("<html>" + html + "</html>"))
	if err != nil {
		return models.Detail{}
	}
	return ExternalDetail(parsed, doc.URL())
}

// ExternalDetail applies the tiers used for arbitrary event sites: meta
// description as blurb, then the first content container with enough text,
// then a prefix of the body markup as description. The share image is
// resolved against pageURL.
func ExternalDetail(doc *goquery.Document, pageURL string) models.Detail {
	meta := metadata.Extract(doc)
	d := models.Detail{
		Blurb:    meta.Description(),
		ImageURL: urlutil.ResolveURL(pageURL, meta.Image()),
	}

	doc.Find(contentSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if utf8.RuneCountInString(sel.Text()) <= minContentChars {
			return true
		}
		if h, err := sel.Html(); err == nil {
			d.Description = strings.TrimSpace(h)
		}
		return false
	})
	if d.Description != "" {
		return d
	}

	body, err := doc.Find("body").First().Html()
	if err != nil {
		return d
	}
	body = strings.TrimSpace(body)
	if len(body) > maxBodyChars {
		body = metadata.Truncate(body, maxBodyChars) + "..."
	}
	d.Description = body
	return d
}
