package links

import (
	"context"
	"sync"
	"time"

	"github.com/bankdir/ifsc-api/internal/model"
)

// CandidateLister lists spreadsheet candidates from the source page.
type CandidateLister interface {
	List(ctx context.Context) ([]model.CandidateFile, error)
}

// Cache wraps a CandidateLister with a time-to-live cache. A failed
// refetch leaves the prior entries untouched and propagates the error.
type Cache struct {
	lister CandidateLister
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	fetchedAt time.Time
	entries   []model.CandidateFile
}

// NewCache creates a Cache over the given lister. A zero now falls back
// to time.Now.
func NewCache(lister CandidateLister, ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{lister: lister, ttl: ttl, now: now}
}

// Candidates returns the cached candidate list, refetching when the
// cache is empty or older than the TTL.
func (c *Cache) Candidates(ctx context.Context) ([]model.CandidateFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > 0 && c.now().Sub(c.fetchedAt) <= c.ttl {
		return c.entries, nil
	}

	items, err := c.lister.List(ctx)
	if err != nil {
		return nil, err
	}
	c.entries = items
	c.fetchedAt = c.now()
	return c.entries, nil
}
