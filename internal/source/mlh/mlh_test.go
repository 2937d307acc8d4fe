package mlh

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/hackscout/pkg/models"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}
	return doc
}

func TestListingURL_SinglePage(t *testing.T) {
	a := &Adapter{URL: SeasonURL("2026")}

	if got := a.ListingURL("ai", 1); got != "https://mlh.io/seasons/2026/events" {
		t.Errorf("Unexpected page 1 URL %q", got)
	}
	if got := a.ListingURL("ai", 2); got != "" {
		t.Errorf("Expected no page 2, got %q", got)
	}
}

func TestNew(t *testing.T) {
	src := New("2025", nil)
	if src.Provider != models.ProviderMLH {
		t.Errorf("Expected provider MLH, got %s", src.Provider)
	}
	if src.KeywordInQuery {
		t.Error("Expected keyword to be filtered locally")
	}
}

func TestExternalDetail_Container(t *testing.T) {
	long := strings.Repeat("We build things together. ", 12)
	doc := parse(t, `<html><head>
		<meta name="description" content="Plain description">
		<meta property="og:description" content="Social description">
		<meta property="og:image" content="/share.png">
	</head><body>
		<nav>Menu</nav>
		<article><p>Short</p></article>
		<section id="about"><p>`+long+`</p></section>
	</body></html>`)

	d := ExternalDetail(doc, "https://hack.example.com/")

	if d.Blurb != "Social description" {
		t.Errorf("Expected og:description blurb, got %q", d.Blurb)
	}
	if d.Description != "<p>"+long+"</p>" {
		t.Errorf("Expected the about container, got %q", d.Description)
	}
	if d.ImageURL != "https://hack.example.com/share.png" {
		t.Errorf("Expected resolved share image, got %q", d.ImageURL)
	}
}

func TestExternalDetail_BodyFallback(t *testing.T) {
	filler := strings.Repeat("x", 4000)
	doc := parse(t, `<html><body><div>`+filler+`</div></body></html>`)

	d := ExternalDetail(doc, "https://hack.example.com/")

	if d.Blurb != "" {
		t.Errorf("Expected no blurb, got %q", d.Blurb)
	}
	if !strings.HasPrefix(d.Description, "<div>xxx") {
		t.Errorf("Expected body markup, got %q", d.Description[:20])
	}
	if !strings.HasSuffix(d.Description, "...") || len(d.Description) != maxBodyChars+3 {
		t.Errorf("Expected truncated body of %d bytes, got %d", maxBodyChars+3, len(d.Description))
	}
}

func TestExternalDetail_ShortBody(t *testing.T) {
	doc := parse(t, `<html><body><p>Tiny site</p></body></html>`)

	d := ExternalDetail(doc, "https://hack.example.com/")
	if d.Description != "<p>Tiny site</p>" {
		t.Errorf("Expected whole body, got %q", d.Description)
	}
}
