package metadata

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Metadata is the head-level information of an event page
type Metadata struct {
	Title string
	// Tags maps meta name/property to content, first occurrence wins
	Tags map[string]string
}

// Extract collects the title and meta tags of a goquery document
func Extract(doc *goquery.Document) Metadata {
	md := Metadata{Tags: make(map[string]string)}
	if doc == nil {
		return md
	}

	md.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("meta").Each(func(i int, sel *goquery.Selection) {
		content, ok := sel.Attr("content")
		if !ok {
			return
		}
		content = strings.TrimSpace(content)
		for _, attr := range []string{"name", "property"} {
			if key, exists := sel.Attr(attr); exists && key != "" {
				key = strings.ToLower(key)
				if _, seen := md.Tags[key]; !seen {
					md.Tags[key] = content
				}
			}
		}
	})

	return md
}

// First returns the first non-empty tag among keys
func (m Metadata) First(keys ...string) string {
	for _, k := range keys {
		if v := m.Tags[strings.ToLower(k)]; v != "" {
			return v
		}
	}
	return ""
}

// Description returns the social or plain description of the page
func (m Metadata) Description() string {
	return m.First("og:description", "description", "twitter:description")
}

// Image returns the social preview image of the page
func (m Metadata) Image() string {
	return m.First("og:image", "twitter:image")
}
