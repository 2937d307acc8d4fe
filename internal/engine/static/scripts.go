// internal/engine/static/scripts.go
package static

import (
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

// scriptBudget bounds the total time spent running a page's inline scripts
const scriptBudget = 2 * time.Second

// RunInlineScripts executes inline <script> blocks in a bare JS runtime and
// exports the globals they assigned. Pages often ship their data as
// `window.__STATE__ = {...}`; DOM access fails and is ignored.
func RunInlineScripts(doc *goquery.Document, pageURL string) map[string]any {
	vm := goja.New()

	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("document", map[string]any{
		"location": map[string]any{"href": pageURL},
	})
	vm.Set("location", map[string]any{"href": pageURL})
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	vm.Set("console", map[string]any{"log": noop, "warn": noop, "error": noop})

	baseline := make(map[string]bool)
	for _, k := range vm.GlobalObject().Keys() {
		baseline[k] = true
	}

	timer := time.AfterFunc(scriptBudget, func() {
		vm.Interrupt("script budget exceeded")
	})
	defer timer.Stop()

	doc.Find("script").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if _, external := sel.Attr("src"); external {
			return true
		}
		if t, ok := sel.Attr("type"); ok && !isJSType(t) {
			return true
		}

		src := strings.TrimSpace(sel.Text())
		if src == "" {
			return true
		}

		if _, err := vm.RunString(src); err != nil {
			if _, interrupted := err.(*goja.InterruptedError); interrupted {
				log.Debug().Str("url", pageURL).Msg("Inline script budget exceeded")
				return false
			}
		}
		return true
	})

	globals := make(map[string]any)
	for _, key := range vm.GlobalObject().Keys() {
		if baseline[key] {
			continue
		}
		if v := vm.Get(key); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
			if exported := v.Export(); exported != nil {
				if _, isFunc := goja.AssertFunction(v); !isFunc {
					globals[key] = exported
				}
			}
		}
	}
	return globals
}

func isJSType(t string) bool {
	t = strings.ToLower(strings.TrimSpace(t))
	return t == "" || t == "text/javascript" || t == "application/javascript" || t == "module"
}

// FindString walks exported script values for the first non-empty string
// under any of keys, searching at most depth levels deep
func FindString(globals map[string]any, depth int, keys ...string) string {
	for _, k := range sortedKeys(globals) {
		if s := findString(globals[k], depth, keys); s != "" {
			return s
		}
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func findString(v any, depth int, keys []string) string {
	if depth < 0 {
		return ""
	}
	switch t := v.(type) {
	case map[string]any:
		for _, k := range keys {
			if s, ok := t[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		for _, k := range sortedKeys(t) {
			if s := findString(t[k], depth-1, keys); s != "" {
				return s
			}
		}
	case []any:
		for _, child := range t {
			if s := findString(child, depth-1, keys); s != "" {
				return s
			}
		}
	}
	return ""
}
