package proxy

import (
	"sync"
	"time"
)

// DefaultCooldown is how long a failed proxy is skipped
const DefaultCooldown = 5 * time.Minute

// Pool rotates crawl sessions across proxies, skipping ones that failed recently.
// An empty pool always yields "" (direct connection).
type Pool struct {
	proxies  []string
	index    int
	cooldown time.Duration
	failed   map[string]time.Time
	now      func() time.Time
	mu       sync.Mutex
}

// NewPool creates a Pool with the default cooldown
func NewPool(proxies []string) *Pool {
	return &Pool{
		proxies:  append([]string(nil), proxies...),
		cooldown: DefaultCooldown,
		failed:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// Len returns the number of configured proxies
func (p *Pool) Len() int {
	return len(p.proxies)
}

// Next returns the next healthy proxy in round-robin order.
// When every proxy is cooling down the next one in order is returned anyway.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.proxies)
	if n == 0 {
		return ""
	}

	for i := 0; i < n; i++ {
		candidate := p.proxies[p.index]
		p.index = (p.index + 1) % n

		failedAt, ok := p.failed[candidate]
		if !ok {
			return candidate
		}
		if p.now().Sub(failedAt) >= p.cooldown {
			delete(p.failed, candidate)
			return candidate
		}
	}

	candidate := p.proxies[p.index]
	p.index = (p.index + 1) % n
	return candidate
}

// MarkFailed puts a proxy on cooldown
func (p *Pool) MarkFailed(proxy string) {
	if proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears a proxy's cooldown
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}
