package devpostapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/law-makers/hackscout/internal/engine/static"
	"github.com/law-makers/hackscout/internal/retry"
)

const listingJSON = `{"hackathons": [
	{
		"title": "Green Hack",
		"url": "/h/green",
		"organization_name": "Planet Org",
		"location": {"location": "Online"},
		"start_a": "Mar 01",
		"end_a": "Mar 03, 2026",
		"prize_amount": "$<span data-currency-value>10,000</span>",
		"registrations_count": 412,
		"featured": true,
		"open_state": "open",
		"thumbnail_url": "//cdn.example.com/green.png",
		"judges": ["Ada Lovelace", "Alan Turing"]
	},
	{
		"title": "AI Sprint",
		"url": "/h/ai",
		"location": "Berlin",
		"start_a": "Apr 10",
		"short_description": "Build with models",
		"requirements": null,
		"judging_criteria": "Impact"
	}
]}`

const greenPage = `<html><head>
<meta property="og:description" content="Hack for the planet">
</head><body><main>
<div id="challenge-description"><p>Full <b>story</b></p></div>
<div id="challenge-requirements">Ship a demo</div>
<div id="judges">Page Judge</div>
<div class="criteria">Creativity</div>
</main></body></html>`

const aiPage = `<html><head></head><body>
<script>var challenge = {"meta": {"description_html": "<p>From script</p>"}};</script>
<div class="judges">Grace Hopper</div>
<div id="judging-criteria">Page criteria</div>
</body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/hackathons", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(listingJSON))
			return
		}
		w.Write([]byte(`{"hackathons": []}`))
	})
	mux.HandleFunc("/h/green", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(greenPage))
	})
	mux.HandleFunc("/h/ai", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(aiPage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher() *static.Fetcher {
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = 0
	return static.NewFetcher(static.Options{Retry: cfg})
}

func TestText_Decoding(t *testing.T) {
	var v struct {
		A Text `json:"a"`
		B Text `json:"b"`
		C Text `json:"c"`
		D Text `json:"d"`
		E Text `json:"e"`
	}
	raw := `{"a": " plain ", "b": 42, "c": ["x", {"name": "y"}, null], "d": {"location": "Online"}, "e": null}`
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if v.A != "plain" || v.B != "42" || v.C != "x, y" || v.D != "Online" || v.E != "" {
		t.Errorf("Unexpected decoding: %+v", v)
	}
}

func TestCount_Decoding(t *testing.T) {
	tests := []struct {
		raw  string
		want Count
	}{
		{`412`, 412},
		{`"1,204"`, 1204},
		{`" 7 "`, 7},
		{`null`, 0},
		{`"many"`, 0},
		{`{"n": 3}`, 0},
	}
	for _, tt := range tests {
		var c Count
		if err := json.Unmarshal([]byte(tt.raw), &c); err != nil {
			t.Errorf("Unmarshal(%s) failed: %v", tt.raw, err)
			continue
		}
		if c != tt.want {
			t.Errorf("Unmarshal(%s): expected %d, got %d", tt.raw, tt.want, c)
		}
	}
}

func TestFlag_Decoding(t *testing.T) {
	tests := []struct {
		raw  string
		want Flag
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`1`, true},
		{`0`, false},
		{`null`, false},
		{`"yes please"`, false},
	}
	for _, tt := range tests {
		var f Flag
		if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
			t.Errorf("Unmarshal(%s) failed: %v", tt.raw, err)
			continue
		}
		if f != tt.want {
			t.Errorf("Unmarshal(%s): expected %v, got %v", tt.raw, tt.want, f)
		}
	}
}

func TestHackathon_DateRange(t *testing.T) {
	tests := []struct {
		start, end, want string
	}{
		{"Mar 01", "Mar 03", "Mar 01 - Mar 03"},
		{"Mar 01", "", "Mar 01"},
		{"", "Mar 03", "Mar 03"},
		{"", "", ""},
	}
	for _, tt := range tests {
		h := Hackathon{StartA: Text(tt.start), EndA: Text(tt.end)}
		if got := h.DateRange(); got != tt.want {
			t.Errorf("DateRange(%q, %q): expected %q, got %q", tt.start, tt.end, tt.want, got)
		}
	}
}

func TestHackathon_Overview(t *testing.T) {
	h := Hackathon{
		OrganizationName:   "Planet Org",
		PrizeAmount:        "$<span>10,000</span>",
		RegistrationsCount: 412,
		OpenState:          "open",
	}
	want := "Hosted by Planet Org · $10,000 in prizes · 412 participants · open"
	if got := h.Overview(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestListingURL(t *testing.T) {
	a := &Adapter{Base: "https://devpost.com/"}
	if got := a.ListingURL("ignored", 2); got != "https://devpost.com/api/hackathons?page=2" {
		t.Errorf("Unexpected listing URL %q", got)
	}
}

func TestSource_ListingAndDetail(t *testing.T) {
	srv := newServer(t)
	src := New(srv.URL, newFetcher())
	ctx := context.Background()

	if src.KeywordInQuery {
		t.Error("Expected keyword to be filtered locally")
	}

	sess, err := src.Open(ctx)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sess.Close()

	doc, err := sess.Listing(ctx, src.Adapter.ListingURL("", 1))
	if err != nil {
		t.Fatalf("Listing failed: %v", err)
	}
	items, _ := src.Adapter.ItemNodes(ctx, doc)
	if len(items) != 2 {
		t.Fatalf("Expected 2 hackathons, got %d", len(items))
	}

	green, _ := src.Adapter.BasicFields(ctx, items[0])
	if green.URL != srv.URL+"/h/green" {
		t.Errorf("Expected resolved URL, got %q", green.URL)
	}
	if green.Location != "Online" {
		t.Errorf("Expected location Online, got %q", green.Location)
	}
	if green.Date != "Mar 01 - Mar 03, 2026" {
		t.Errorf("Unexpected date %q", green.Date)
	}
	if green.ImageURL != "http://cdn.example.com/green.png" {
		t.Errorf("Expected scheme-relative thumbnail to resolve, got %q", green.ImageURL)
	}
	if !strings.HasPrefix(green.Blurb, "Hosted by Planet Org") {
		t.Errorf("Expected overview blurb, got %q", green.Blurb)
	}

	page, err := sess.Detail(ctx, green.URL)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}
	d := src.Adapter.DetailFields(ctx, page)
	if d.Blurb != "Hack for the planet" {
		t.Errorf("Expected meta blurb, got %q", d.Blurb)
	}
	if d.Description != "<p>Full <b>story</b></p>" {
		t.Errorf("Expected description HTML, got %q", d.Description)
	}
	if d.Requirements != "Ship a demo" || d.JudgingCriteria != "Creativity" {
		t.Errorf("Unexpected page fields %+v", d)
	}
	if d.Judges != "Ada Lovelace, Alan Turing" {
		t.Errorf("Expected API judges to win, got %q", d.Judges)
	}

	ai, _ := src.Adapter.BasicFields(ctx, items[1])
	page, err = sess.Detail(ctx, ai.URL)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}
	d = src.Adapter.DetailFields(ctx, page)
	if d.Blurb != "Build with models" {
		t.Errorf("Expected API blurb to win, got %q", d.Blurb)
	}
	if d.Description != "<p>From script</p>" {
		t.Errorf("Expected description from inline script, got %q", d.Description)
	}
	if d.JudgingCriteria != "Impact" {
		t.Errorf("Expected API criteria to win, got %q", d.JudgingCriteria)
	}
	if d.Judges != "Grace Hopper" {
		t.Errorf("Expected page judges, got %q", d.Judges)
	}

	doc, err = sess.Listing(ctx, src.Adapter.ListingURL("", 2))
	if err != nil {
		t.Fatalf("Listing page 2 failed: %v", err)
	}
	if items, _ := src.Adapter.ItemNodes(ctx, doc); len(items) != 0 {
		t.Errorf("Expected empty page 2, got %d items", len(items))
	}
}

func TestSource_ListingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	src := New(srv.URL, newFetcher())
	sess, _ := src.Open(context.Background())
	if _, err := sess.Listing(context.Background(), src.Adapter.ListingURL("", 1)); err == nil {
		t.Error("Expected error for 403 listing")
	}
}

func TestSource_ListingKeepsGoodEntries(t *testing.T) {
	const body = `{"hackathons": [
		{"title": "Counted", "url": "/h/a", "registrations_count": 5, "featured": true},
		{"title": "Stringly", "url": "/h/b", "registrations_count": "1,204", "featured": "false"},
		"not an object",
		{"title": "Odd", "url": "/h/c", "registrations_count": null, "featured": 1}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	src := New(srv.URL, newFetcher())
	ctx := context.Background()
	sess, _ := src.Open(ctx)
	defer sess.Close()

	doc, err := sess.Listing(ctx, src.Adapter.ListingURL("", 1))
	if err != nil {
		t.Fatalf("Expected listing to survive a malformed entry, got %v", err)
	}
	items, _ := src.Adapter.ItemNodes(ctx, doc)
	if len(items) != 3 {
		t.Fatalf("Expected 3 hackathons, got %d", len(items))
	}
	if items[0].RegistrationsCount != 5 || !items[0].Featured {
		t.Errorf("Unexpected first entry %+v", items[0])
	}
	if items[1].RegistrationsCount != 1204 || items[1].Featured {
		t.Errorf("Expected numeric string to decode, got %+v", items[1])
	}
	if items[2].Title != "Odd" || items[2].RegistrationsCount != 0 || !items[2].Featured {
		t.Errorf("Unexpected third entry %+v", items[2])
	}
}
