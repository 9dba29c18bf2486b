package cache

import (
	"sync"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
)

// Entry is the possibly partial set of results computed for one fingerprint.
type Entry struct {
	Amount *domain.AmountResult
	Target *domain.TargetResult
	UK     *domain.UKResult
}

// Empty reports whether no part is populated.
func (e Entry) Empty() bool {
	return e.Amount == nil && e.Target == nil && e.UK == nil
}

// merge returns e with every non-nil part of other laid over it.
func (e Entry) merge(other Entry) Entry {
	if other.Amount != nil {
		e.Amount = other.Amount
	}
	if other.Target != nil {
		e.Target = other.Target
	}
	if other.UK != nil {
		e.UK = other.UK
	}
	return e
}

// Results maps fingerprints to computed results for the lifetime of a session.
// Entries are never evicted.
type Results struct {
	mu    sync.RWMutex
	items map[string]Entry
}

// NewResults creates an empty result cache.
func NewResults() *Results {
	return &Results{items: make(map[string]Entry)}
}

// Get returns the record stored under key. A miss is a normal outcome.
func (c *Results) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	return e, ok
}

// Put merges part into the record stored under key; parts that are nil in part
// keep their stored value.
func (c *Results) Put(key string, part Entry) {
	if part.Empty() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = c.items[key].merge(part)
}

// Len returns the number of fingerprints with at least one stored result.
func (c *Results) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
