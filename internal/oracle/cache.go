package oracle

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type quote struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// quoteCache holds recent quotes with a per-entry TTL. A zero or negative
// TTL disables caching entirely.
type quoteCache struct {
	mu     sync.RWMutex
	quotes map[string]quote
	ttl    time.Duration
}

func newQuoteCache(ttl time.Duration) *quoteCache {
	return &quoteCache{
		quotes: make(map[string]quote),
		ttl:    ttl,
	}
}

func (c *quoteCache) get(coin string) (decimal.Decimal, bool) {
	if c.ttl <= 0 {
		return decimal.Zero, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.quotes[coin]
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		return decimal.Zero, false
	}
	return entry.price, true
}

func (c *quoteCache) set(coin string, price decimal.Decimal) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[coin] = quote{price: price, fetchedAt: time.Now()}
}
