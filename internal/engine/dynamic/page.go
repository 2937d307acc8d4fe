// internal/engine/dynamic/page.go
package dynamic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/law-makers/hackscout/internal/engine"
)

// Mode selects what a query reads from the matched element
type Mode string

const (
	ModeText Mode = "text"
	ModeHTML Mode = "html"
	ModeAttr Mode = "attr"
)

// queryJS runs with this bound to a node or the document. An empty selector
// reads this itself. href and src are read as properties so they come back
// absolute.
const queryJS = `function(sel, mode, attr) {
	const el = sel ? this.querySelector(sel) : this;
	if (!el) {
		return {found: false, value: ""};
	}
	if (mode === "html") {
		return {found: true, value: el.innerHTML || ""};
	}
	if (mode === "attr") {
		if (!el.hasAttribute || !el.hasAttribute(attr)) {
			return {found: false, value: ""};
		}
		const prop = (attr === "href" || attr === "src") ? el[attr] : null;
		return {found: true, value: prop || el.getAttribute(attr) || ""};
	}
	return {found: true, value: (el.innerText || el.textContent || "").trim()};
}`

type queryResult struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

// Page is a rendered document. It becomes stale once the browser navigates again.
type Page struct {
	browser    *Browser
	url        string
	generation uint64
}

// Node is a live element of a Page
type Node struct {
	page *Page
	node *cdp.Node
}

// URL returns the address the page was loaded from
func (p *Page) URL() string {
	return p.url
}

// Nodes returns every element matching selector, waiting up to the implicit
// wait for the first match. No match within the wait is an empty result.
func (p *Page) Nodes(ctx context.Context, selector string) ([]*Node, error) {
	if !p.browser.current(p.generation) {
		return nil, staleError(selector, nil)
	}

	wait := p.browser.opts.ImplicitWait
	queryOpts := []chromedp.QueryOption{chromedp.ByQueryAll}
	if wait <= 0 {
		queryOpts = append(queryOpts, chromedp.AtLeast(0))
	}

	runCtx, cancel := p.browser.bind(ctx, wait)
	defer cancel()

	var found []*cdp.Node
	err := chromedp.Run(runCtx, chromedp.Nodes(selector, &found, queryOpts...))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, classify(selector, err)
	}

	nodes := make([]*Node, 0, len(found))
	for _, n := range found {
		nodes = append(nodes, &Node{page: p, node: n})
	}
	return nodes, nil
}

// Text reads the visible text of the first element matching selector
func (p *Page) Text(ctx context.Context, selector string) (string, error) {
	return p.evaluate(ctx, selector, ModeText, "")
}

// HTML reads the inner HTML of the first element matching selector
func (p *Page) HTML(ctx context.Context, selector string) (string, error) {
	return p.evaluate(ctx, selector, ModeHTML, "")
}

// Attr reads an attribute of the first element matching selector
func (p *Page) Attr(ctx context.Context, selector, name string) (string, error) {
	return p.evaluate(ctx, selector, ModeAttr, name)
}

func (p *Page) evaluate(ctx context.Context, selector string, mode Mode, attr string) (string, error) {
	if !p.browser.current(p.generation) {
		return "", staleError(selector, nil)
	}

	expr, err := documentQuery(selector, mode, attr)
	if err != nil {
		return "", err
	}

	runCtx, cancel := p.browser.bind(ctx, p.browser.opts.PageLoadTimeout)
	defer cancel()

	var res queryResult
	if err := chromedp.Run(runCtx, chromedp.Evaluate(expr, &res)); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classify(selector, err)
	}
	return result(selector, res)
}

// Text reads the visible text of the first descendant matching selector.
// An empty selector reads the node itself.
func (n *Node) Text(ctx context.Context, selector string) (string, error) {
	return n.call(ctx, selector, ModeText, "")
}

// HTML reads the inner HTML of the first descendant matching selector
func (n *Node) HTML(ctx context.Context, selector string) (string, error) {
	return n.call(ctx, selector, ModeHTML, "")
}

// Attr reads an attribute of the first descendant matching selector
func (n *Node) Attr(ctx context.Context, selector, name string) (string, error) {
	return n.call(ctx, selector, ModeAttr, name)
}

func (n *Node) call(ctx context.Context, selector string, mode Mode, attr string) (string, error) {
	b := n.page.browser
	if !b.current(n.page.generation) {
		return "", staleError(selector, nil)
	}

	runCtx, cancel := b.bind(ctx, b.opts.PageLoadTimeout)
	defer cancel()

	var res queryResult
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(n.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
		}()

		return chromedp.CallFunctionOn(queryJS, &res,
			func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
				return p.WithObjectID(obj.ObjectID)
			},
			selector, string(mode), attr,
		).Do(ctx)
	}))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classify(selector, err)
	}
	return result(selector, res)
}

func result(selector string, res queryResult) (string, error) {
	if !res.Found {
		return "", engine.NewEngineError(engine.ErrCodeNotFound, selector, nil)
	}
	return res.Value, nil
}

// documentQuery builds an expression running queryJS against the document
func documentQuery(selector string, mode Mode, attr string) (string, error) {
	args, err := json.Marshal([]string{selector, string(mode), attr})
	if err != nil {
		return "", err
	}
	// args is a JSON array literal, which is also a valid JS array literal
	return fmt.Sprintf("(%s).apply(document, %s)", queryJS, args), nil
}

// staleMarkers are substrings of CDP errors raised for nodes that no longer
// belong to the current document
var staleMarkers = []string{
	"no node with given id",
	"could not find node with given id",
	"node with given id does not belong to the document",
	"node is detached",
	"cannot find context with specified id",
	"execution context was destroyed",
	"stale",
}

// classify maps CDP failures onto engine errors
func classify(selector string, err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range staleMarkers {
		if strings.Contains(msg, marker) {
			return staleError(selector, err)
		}
	}
	return engine.NewEngineError(engine.ErrCodeParseError, selector, err)
}

func staleError(selector string, err error) error {
	return engine.NewEngineError(engine.ErrCodeStale, selector, err)
}
