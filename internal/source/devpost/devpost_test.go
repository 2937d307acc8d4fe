package devpost

import (
	"net/url"
	"testing"

	"github.com/law-makers/hackscout/pkg/models"
)

func TestListingURL(t *testing.T) {
	a := &Adapter{Base: ListingBase}

	raw := a.ListingURL("machine learning", 3)
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Invalid listing URL %q: %v", raw, err)
	}

	if u.Host != "devpost.com" || u.Path != "/hackathons" {
		t.Errorf("Expected devpost.com/hackathons, got %s%s", u.Host, u.Path)
	}
	if got := u.Query().Get("search"); got != "machine learning" {
		t.Errorf("Expected search 'machine learning', got %q", got)
	}
	if got := u.Query().Get("page"); got != "3" {
		t.Errorf("Expected page 3, got %q", got)
	}
}

func TestNew(t *testing.T) {
	src := New(nil)

	if src.Provider != models.ProviderDevpost {
		t.Errorf("Expected provider DEVPOST, got %s", src.Provider)
	}
	if !src.KeywordInQuery {
		t.Error("Expected the keyword to be delegated to the search query")
	}
	if src.Name != "devpost" {
		t.Errorf("Expected name devpost, got %s", src.Name)
	}
}
