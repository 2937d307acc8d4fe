// Package devpost reads the rendered Devpost hackathon listing
package devpost

import (
	"context"
	"strconv"

	"github.com/law-makers/hackscout/internal/engine/dynamic"
	"github.com/law-makers/hackscout/internal/extract"
	"github.com/law-makers/hackscout/internal/source"
	urlutil "github.com/law-makers/hackscout/internal/utils/url"
	"github.com/law-makers/hackscout/pkg/models"
)

// ListingBase is the search page of the site
const ListingBase = "https://devpost.com/hackathons"

// Selectors of the listing tiles and detail pages
const (
	tileSelector     = ".challenge-listing, .hackathon-tile"
	titleSelector    = ".title, h3, .challenge-name"
	linkSelector     = "a"
	locationSelector = ".location, .info, .challenge-location"
	dateSelector     = ".date, .challenge-date, time"
	imageSelector    = "img"

	descriptionSelector = "#challenge-description, .challenge-description, #challenge-overview, .content-section"
	prizesSelector      = "#prizes, .prizes"
	criteriaSelector    = "#judging-criteria, .judging-criteria"
	judgesSelector      = "#judges, .judges, .judge-list"
)

// Adapter extracts events from rendered Devpost pages
type Adapter struct {
	Base string
}

var _ source.Adapter[*dynamic.Page, *dynamic.Node] = (*Adapter)(nil)

// New returns a Source crawling Devpost through opener
func New(opener source.Opener[*dynamic.Page]) source.Source[*dynamic.Page, *dynamic.Node] {
	return source.Source[*dynamic.Page, *dynamic.Node]{
		Name:           "devpost",
		Description:    "Devpost hackathon search, rendered in a headless browser",
		Provider:       models.ProviderDevpost,
		Type:           models.TypeHackathon,
		KeywordInQuery: true,
		Adapter:        &Adapter{Base: ListingBase},
		Open:           opener,
	}
}

func (a *Adapter) ListingURL(keyword string, page int) string {
	return urlutil.WithQuery(a.Base, map[string]string{
		"search": keyword,
		"page":   strconv.Itoa(page),
	})
}

func (a *Adapter) ItemNodes(ctx context.Context, doc *dynamic.Page) ([]*dynamic.Node, error) {
	return doc.Nodes(ctx, tileSelector)
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

	return models.Event{
		Title:    text("title", titleSelector),
		URL:      attr("url", linkSelector, "href"),
		Location: text("location", locationSelector),
		Date:     text("date", dateSelector),
		ImageURL: attr("image_url", imageSelector, "src"),
		Provider: models.ProviderDevpost,
		Type:     models.TypeHackathon,
	}, nil
}

func (a *Adapter) DetailFields(ctx context.Context, doc *dynamic.Page) models.Detail {
	html := func(field, sel string) string {
		return extract.OrDefault(ctx, field, func(ctx context.Context) (string, error) {
			return doc.HTML(ctx, sel)
		}, "")
	}

	return models.Detail{
		Description:     html("description", descriptionSelector),
		Requirements:    html("requirements", prizesSelector),
		JudgingCriteria: html("judging_criteria", criteriaSelector),
		Judges:          html("judges", judgesSelector),
	}
}
