// Package filter applies keyword and location matching to listing records
// and collapses duplicates within one crawl.
package filter

import (
	"strings"
	"unicode/utf16"

	"github.com/law-makers/hackscout/pkg/models"
)

// Verdict is the outcome of Accept
type Verdict int

const (
	Accepted Verdict = iota
	RejectedKeyword
	RejectedLocation
	Duplicate
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case RejectedKeyword:
		return "keyword"
	case RejectedLocation:
		return "location"
	case Duplicate:
		return "duplicate"
	}
	return "unknown"
}

// remoteTokens all mean "not tied to a place"
var remoteTokens = []string{"remote", "online", "worldwide", "everywhere"}

// MatchKeyword reports whether title contains keyword, ignoring case.
// An empty keyword matches everything.
func MatchKeyword(title, keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(keyword))
}

// MatchLocation reports whether an event location satisfies the filter.
// Remote-style filters match remote-style locations. Otherwise the filter
// must appear in the location, ignoring case. An empty filter matches everything.
func MatchLocation(location, filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return true
	}
	location = strings.ToLower(location)

	if isRemote(filter) {
		return isRemote(location)
	}
	return strings.Contains(location, filter)
}

func isRemote(s string) bool {
	for _, token := range remoteTokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

// ID derives the stable identifier of an event from its title and URL.
// It is the 31-multiplier polynomial hash over UTF-16 code units with 32-bit
// wraparound, masked to a non-negative value, so identifiers match those
// stored by earlier versions of the service.
func ID(title, url string) int64 {
	var h int32
	for _, unit := range utf16.Encode([]rune(title + url)) {
		h = 31*h + int32(unit)
	}
	return int64(h & 0x7FFFFFFF)
}

// Filter holds the per-crawl matching state. It is not safe for concurrent use.
type Filter struct {
	keyword      string
	location     string
	checkKeyword bool
	seen         map[int64]struct{}
}

// New creates a Filter for one crawl. When keywordDelegated is true the
// source already searched by keyword and titles are not checked again.
func New(req models.CrawlRequest, keywordDelegated bool) *Filter {
	return &Filter{
		keyword:      req.Domain,
		location:     req.Location,
		checkKeyword: !keywordDelegated,
		seen:         make(map[int64]struct{}),
	}
}

// Accept assigns ev's identifier, then applies keyword, location and dedup
// checks in that order. Only accepted events are remembered.
func (f *Filter) Accept(ev *models.Event) Verdict {
	ev.ID = ID(ev.Title, ev.URL)

	if f.checkKeyword && !MatchKeyword(ev.Title, f.keyword) {
		return RejectedKeyword
	}
	if !MatchLocation(ev.Location, f.location) {
		return RejectedLocation
	}
	if _, dup := f.seen[ev.ID]; dup {
		return Duplicate
	}
	f.seen[ev.ID] = struct{}{}
	return Accepted
}

// Seen returns how many distinct events were accepted
func (f *Filter) Seen() int {
	return len(f.seen)
}
