// Package devpostapi reads hackathons from the Devpost JSON API, with
// detail pages fetched as static HTML
package devpostapi

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/law-makers/hackscout/internal/engine/metadata"
	"github.com/law-makers/hackscout/internal/engine/static"
	"github.com/law-makers/hackscout/internal/extract"
	"github.com/law-makers/hackscout/internal/source"
	urlutil "github.com/law-makers/hackscout/internal/utils/url"
	"github.com/law-makers/hackscout/pkg/models"
)

// DefaultBase is the site the API and its detail pages live on
const DefaultBase = "https://devpost.com"

const (
	descriptionSelector  = "main #challenge-description, main .challenge-blurb, #challenge-description, .challenge-description"
	requirementsSelector = "main #challenge-requirements, #challenge-requirements, .challenge-requirements, .requirements"
	judgesSelector       = "main #judges, #judges, .judges, .judge-list"
	criteriaSelector     = "main #judging-criteria, #judging-criteria, .judging-criteria, .criteria"

	// scriptSearchDepth bounds the walk through script globals
	scriptSearchDepth = 4
)

// scriptDescriptionKeys are looked up in inline script data when the page
// has no description element
var scriptDescriptionKeys = []string{"description_html", "descriptionHtml", "description", "challenge_description"}

// Doc is a loaded API listing page or event page
type Doc struct {
	URL        string
	Hackathons []Hackathon
	Page       *static.Document
	// API holds the detail values the listing already carried for this event
	API models.Detail
}

// Adapter maps API entries and static detail pages to events
type Adapter struct {
	Base string
}

var _ source.Adapter[*Doc, Hackathon] = (*Adapter)(nil)

// New returns a Source reading the API at base through fetcher
func New(base string, fetcher *static.Fetcher) source.Source[*Doc, Hackathon] {
	if base == "" {
		base = DefaultBase
	}
	return source.Source[*Doc, Hackathon]{
		Name:        "devpost-api",
		Description: "Devpost JSON API with static detail pages",
		Provider:    models.ProviderDevpost,
		Type:        models.TypeHackathon,
		Adapter:     &Adapter{Base: base},
		Open: func(ctx context.Context) (source.Session[*Doc], error) {
			return &session{fetcher: fetcher, known: make(map[string]models.Detail)}, nil
		},
	}
}

func (a *Adapter) ListingURL(keyword string, page int) string {
	return strings.TrimRight(a.Base, "/") + "/api/hackathons?page=" + strconv.Itoa(page)
}

func (a *Adapter) ItemNodes(ctx context.Context, doc *Doc) ([]Hackathon, error) {
	return doc.Hackathons, nil
}

func (a *Adapter) BasicFields(ctx context.Context, h Hackathon) (models.Event, error) {
	blurb := h.APIBlurb()
	if blurb == "" {
		blurb = h.Overview()
	}

	return models.Event{
		Title:           string(h.Title),
		URL:             urlutil.ResolveURL(a.Base, string(h.URL)),
		Location:        string(h.Location),
		Date:            h.DateRange(),
		ImageURL:        urlutil.ResolveURL(a.Base, string(h.ThumbnailURL)),
		Blurb:           blurb,
		Requirements:    firstText(h.Requirements, h.ChallengeRequirements, h.RequirementsText),
		Judges:          firstText(h.Judges, h.JudgeList),
		JudgingCriteria: firstText(h.JudgingCriteria, h.Criteria, h.Judging),
		Provider:        models.ProviderDevpost,
		Type:            models.TypeHackathon,
	}, nil
}

// DetailFields reads the event page. Values the API provided win over the page.
func (a *Adapter) DetailFields(ctx context.Context, doc *Doc) models.Detail {
	if doc.Page == nil {
		return doc.API
	}
	page := doc.Page
	meta := metadata.Extract(page.Doc)

	text := func(field, sel string) string {
		return extract.OrDefault(ctx, field, func(context.Context) (string, error) {
			return page.Text(sel)
		}, "")
	}
	html := func(field, sel string) string {
		return extract.OrDefault(ctx, field, func(context.Context) (string, error) {
			return page.HTML(sel)
		}, "")
	}

	d := models.Detail{
		Blurb:           meta.Description(),
		Description:     html("description", descriptionSelector),
		Requirements:    text("requirements", requirementsSelector),
		Judges:          text("judges", judgesSelector),
		JudgingCriteria: text("judging_criteria", criteriaSelector),
		ImageURL:        urlutil.ResolveURL(page.URL, meta.Image()),
	}
	if d.Blurb == "" {
		d.Blurb = text("blurb", descriptionSelector)
	}
	if d.Description == "" {
		d.Description = static.FindString(page.ScriptGlobals(), scriptSearchDepth, scriptDescriptionKeys...)
	}
	if d.Description == "" {
		d.Description = meta.Description()
	}

	return overlay(d, doc.API)
}

func overlay(page, api models.Detail) models.Detail {
	if api.Blurb != "" {
		page.Blurb = api.Blurb
	}
	if api.Description != "" {
		page.Description = api.Description
	}
	if api.Requirements != "" {
		page.Requirements = api.Requirements
	}
	if api.Judges != "" {
		page.Judges = api.Judges
	}
	if api.JudgingCriteria != "" {
		page.JudgingCriteria = api.JudgingCriteria
	}
	return page
}

type session struct {
	fetcher *static.Fetcher

	mu    sync.Mutex
	known map[string]models.Detail
}

func (s *session) Listing(ctx context.Context, url string) (*Doc, error) {
	var resp listingResponse
	if err := s.fetcher.GetJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.Skipped > 0 {
		zerolog.Ctx(ctx).Warn().
			Str("url", url).
			Int("skipped", resp.Skipped).
			Msg("Skipped malformed API entries")
	}

	s.mu.Lock()
	for _, h := range resp.Hackathons {
		if h.URL == "" {
			continue
		}
		s.known[urlutil.ResolveURL(url, string(h.URL))] = models.Detail{
			Blurb:           h.APIBlurb(),
			Requirements:    firstText(h.Requirements, h.ChallengeRequirements, h.RequirementsText),
			Judges:          firstText(h.Judges, h.JudgeList),
			JudgingCriteria: firstText(h.JudgingCriteria, h.Criteria, h.Judging),
		}
	}
	s.mu.Unlock()

	return &Doc{URL: url, Hackathons: resp.Hackathons}, nil
}

func (s *session) Detail(ctx context.Context, url string) (*Doc, error) {
	page, err := s.fetcher.GetDocument(ctx, url)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	api := s.known[url]
	s.mu.Unlock()

	return &Doc{URL: url, Page: page, API: api}, nil
}

func (s *session) Close() error {
	return nil
}
