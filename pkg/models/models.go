package models

import "time"

// Provider names the source an event was discovered on
type Provider string

const (
	ProviderDevpost Provider = "DEVPOST"
	ProviderMLH     Provider = "MLH"
)

// EventType classifies an event
type EventType string

const (
	TypeHackathon EventType = "HACKATHON"
)

// UnknownTitle is used when a listing tile has no readable title
const UnknownTitle = "Unknown"

// Event represents a single discovered hackathon listing
type Event struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Blurb           string    `json:"blurb"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	Location        string    `json:"location"`
	Date            string    `json:"date"`
	ImageURL        string    `json:"image_url"`
	Provider        Provider  `json:"provider"`
	Requirements    string    `json:"requirements"`
	Judges          string    `json:"judges"`
	JudgingCriteria string    `json:"judging_criteria"`
	Type            EventType `json:"type"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// Detail holds the fields gathered from an event's own page
type Detail struct {
	Blurb           string
	Description     string
	Requirements    string
	Judges          string
	JudgingCriteria string

	// ImageURL only fills an event that had no listing thumbnail
	ImageURL string
}

// Empty reports whether no detail field was found
func (d Detail) Empty() bool {
	return d == Detail{}
}

// Enrich returns a copy of e with every non-empty detail field applied.
// Fields the detail page did not provide keep their listing values.
func (e Event) Enrich(d Detail) Event {
	if d.Blurb != "" {
		e.Blurb = d.Blurb
	}
	if d.Description != "" {
		e.Description = d.Description
	}
	if d.Requirements != "" {
		e.Requirements = d.Requirements
	}
	if d.Judges != "" {
		e.Judges = d.Judges
	}
	if d.JudgingCriteria != "" {
		e.JudgingCriteria = d.JudgingCriteria
	}
	if e.ImageURL == "" {
		e.ImageURL = d.ImageURL
	}
	return e
}

// CrawlRequest contains the caller's parameters for one crawl
type CrawlRequest struct {
	Domain   string `json:"domain"`
	Location string `json:"location"`
	Count    int    `json:"count"`
}
