// internal/engine/static/document.go
package static

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/hackscout/internal/engine"
	urlutil "github.com/law-makers/hackscout/internal/utils/url"
)

// Document is a parsed static HTML page
type Document struct {
	URL string
	Doc *goquery.Document

	scriptsOnce sync.Once
	globals     map[string]any
}

// NewDocument wraps a parsed goquery document
func NewDocument(pageURL string, doc *goquery.Document) *Document {
	return &Document{URL: pageURL, Doc: doc}
}

// ParseDocument parses raw HTML
func ParseDocument(pageURL, html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeParseError, pageURL, err)
	}
	return NewDocument(pageURL, doc), nil
}

// Text returns the trimmed text of the first element matching selector
func (d *Document) Text(selector string) (string, error) {
	sel, err := d.first(selector)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(sel.Text()), nil
}

// HTML returns the inner HTML of the first element matching selector
func (d *Document) HTML(selector string) (string, error) {
	sel, err := d.first(selector)
	if err != nil {
		return "", err
	}
	html, err := sel.Html()
	if err != nil {
		return "", engine.NewEngineError(engine.ErrCodeParseError, selector, err)
	}
	return strings.TrimSpace(html), nil
}

// Attr returns an attribute of the first element matching selector.
// href and src values are resolved against the page URL.
func (d *Document) Attr(selector, name string) (string, error) {
	sel, err := d.first(selector)
	if err != nil {
		return "", err
	}
	v, ok := sel.Attr(name)
	if !ok {
		return "", engine.NewEngineError(engine.ErrCodeNotFound, selector+"@"+name, nil)
	}
	if name == "href" || name == "src" {
		v = urlutil.ResolveURL(d.URL, v)
	}
	return v, nil
}

func (d *Document) first(selector string) (*goquery.Selection, error) {
	sel := d.Doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, engine.NewEngineError(engine.ErrCodeNotFound, selector, nil)
	}
	return sel, nil
}

// ScriptGlobals runs the page's inline scripts once and returns the globals
// they defined
func (d *Document) ScriptGlobals() map[string]any {
	d.scriptsOnce.Do(func() {
		d.globals = RunInlineScripts(d.Doc, d.URL)
	})
	return d.globals
}
