package catalog

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"ballotmap/internal"
)

type fetchFunc func(ctx context.Context, url string) ([]internal.RawRecord, error)

// FeedCache keeps the records of every feed URL fetched successfully. An
// entry is never refreshed; Reset starts a fresh load.
type FeedCache struct {
	mu      sync.Mutex
	entries map[string][]internal.RawRecord
	group   singleflight.Group
}

func NewFeedCache() *FeedCache {
	return &FeedCache{entries: map[string][]internal.RawRecord{}}
}

// Get returns the cached records for url, fetching them at most once even
// under concurrent callers. Failures are not cached.
func (c *FeedCache) Get(ctx context.Context, url string, fetch fetchFunc) ([]internal.RawRecord, bool, error) {
	c.mu.Lock()
	records, ok := c.entries[url]
	c.mu.Unlock()
	if ok {
		return records, true, nil
	}

	v, err, _ := c.group.Do(url, func() (any, error) {
		c.mu.Lock()
		if cached, ok := c.entries[url]; ok {
			c.mu.Unlock()
			return cached, nil
		}
		c.mu.Unlock()

		fetched, err := fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[url] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]internal.RawRecord), false, nil
}

func (c *FeedCache) Reset() {
	c.mu.Lock()
	c.entries = map[string][]internal.RawRecord{}
	c.mu.Unlock()
}

func (c *FeedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
