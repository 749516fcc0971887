// Package query binds cache keys to revalidating fetches over the HTTP client.
package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the value stored under a key.
type Fetcher func(ctx context.Context) (any, error)

// State is what the cache knows about one key.
type State struct {
	Data      any
	Err       error
	Loading   bool
	UpdatedAt time.Time
}

type entry struct {
	state   State
	fetcher Fetcher
}

// Cache holds the last result per key. Concurrent fetches of one key share a single call.
// A failed fetch keeps the previous data next to the new error.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	log     *zap.Logger
}

func NewCache(log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{entries: make(map[string]*entry), log: log}
}

// Fetch registers fetcher under key and runs it. An empty key is never fetched.
func (c *Cache) Fetch(ctx context.Context, key string, fetcher Fetcher) State {
	if key == "" {
		return State{}
	}

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.fetcher = fetcher
	c.mu.Unlock()

	return c.run(ctx, key)
}

// Revalidate reruns the fetcher last registered under key. Unknown keys report false.
func (c *Cache) Revalidate(ctx context.Context, key string) (State, bool) {
	c.mu.Lock()
	_, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return State{}, false
	}
	return c.run(ctx, key), true
}

// Snapshot returns the current state of key without fetching.
func (c *Cache) Snapshot(key string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

func (c *Cache) run(ctx context.Context, key string) State {
	_, _, _ = c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		e := c.entries[key]
		e.state.Loading = true
		fetcher := e.fetcher
		c.mu.Unlock()

		data, err := fetcher(ctx)

		c.mu.Lock()
		e.state.Loading = false
		e.state.Err = err
		if err == nil {
			e.state.Data = data
			e.state.UpdatedAt = time.Now()
		}
		c.mu.Unlock()

		if err != nil {
			c.log.Debug("fetch failed", zap.String("key", key), zap.Error(err))
		}
		return nil, nil
	})

	st, _ := c.Snapshot(key)
	return st
}
