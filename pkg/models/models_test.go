package models

import "testing"

func TestEnrich_KeepsListingValues(t *testing.T) {
	ev := Event{Title: "Jam", Blurb: "listing blurb", ImageURL: "https://cdn.example.com/tile.png"}

	got := ev.Enrich(Detail{
		Description: "<p>About</p>",
		ImageURL:    "https://jam.example.com/share.png",
	})

	if got.Blurb != "listing blurb" {
		t.Errorf("Expected listing blurb to survive an empty detail blurb, got %q", got.Blurb)
	}
	if got.Description != "<p>About</p>" {
		t.Errorf("Expected detail description, got %q", got.Description)
	}
	if got.ImageURL != "https://cdn.example.com/tile.png" {
		t.Errorf("Expected listing thumbnail to win, got %q", got.ImageURL)
	}
	if ev.Description != "" {
		t.Error("Expected Enrich to leave the original untouched")
	}
}

func TestEnrich_ImageFallback(t *testing.T) {
	got := Event{Title: "Jam"}.Enrich(Detail{ImageURL: "https://jam.example.com/share.png"})
	if got.ImageURL != "https://jam.example.com/share.png" {
		t.Errorf("Expected detail image as fallback, got %q", got.ImageURL)
	}
}

func TestDetailEmpty(t *testing.T) {
	if !(Detail{}).Empty() {
		t.Error("Expected zero Detail to be empty")
	}
	if (Detail{Judges: "Ada"}).Empty() {
		t.Error("Expected Detail with judges to be non-empty")
	}
}
