package crawl

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/law-makers/hackscout/internal/source"
	"github.com/law-makers/hackscout/pkg/models"
)

// Crawler is a source ready to be crawled, whatever its document types
type Crawler interface {
	Name() string
	Description() string
	Provider() models.Provider
	Crawl(ctx context.Context, req models.CrawlRequest, sink Sink) Summary
}

type bound[D, N any] struct {
	c   *Controller
	src source.Source[D, N]
}

// Bind returns a Crawler running src on c
func Bind[D, N any](c *Controller, src source.Source[D, N]) Crawler {
	return bound[D, N]{c: c, src: src}
}

func (b bound[D, N]) Name() string { return b.src.Name }
func (b bound[D, N]) Description() string { return b.src.Description }
func (b bound[D, N]) Provider() models.Provider { return b.src.Provider }

func (b bound[D, N]) Crawl(ctx context.Context, req models.CrawlRequest, sink Sink) Summary {
	return Run(ctx, b.c, b.src, req, sink)
}

// Registry maps source names to crawlers
type Registry struct {
	mu       sync.RWMutex
	crawlers map[string]Crawler
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{crawlers: make(map[string]Crawler)}
}

// Register adds c under its name
func (r *Registry) Register(c Crawler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.crawlers[c.Name()]; exists {
		return fmt.Errorf("source %q already registered", c.Name())
	}
	r.crawlers[c.Name()] = c
	return nil
}

// Get returns the crawler registered under name
func (r *Registry) Get(name string) (Crawler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.crawlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}
	return c, nil
}

// List returns every crawler sorted by name
func (r *Registry) List() []Crawler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Crawler, 0, len(r.crawlers))
	for _, c := range r.crawlers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
