package output

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	urlutil "github.com/law-makers/hackscout/internal/utils/url"
)

// droppedTags never carry event content
const droppedTags = "script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas"

// keptAttrs lists the attributes that survive cleaning, per tag
var keptAttrs = map[string][]string{
	"a":   {"href", "title"},
	"img": {"src", "alt", "title"},
}

// CleanHTML strips scripts, forms and presentation attributes from an event
// description fragment. Links and image sources are resolved against base.
func CleanHTML(fragment, base string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	doc.Find(droppedTags).Remove()

	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		node := s.Get(0)
		allowed := keptAttrs[node.Data]

		kept := node.Attr[:0]
		for _, attr := range node.Attr {
			if !slices.Contains(allowed, attr.Key) {
				continue
			}
			if attr.Key == "href" || attr.Key == "src" {
				attr = html.Attribute{Key: attr.Key, Val: urlutil.ResolveURL(base, attr.Val)}
			}
			kept = append(kept, attr)
		}
		node.Attr = kept
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// PlainText returns the whitespace-collapsed text of an HTML fragment
func PlainText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
