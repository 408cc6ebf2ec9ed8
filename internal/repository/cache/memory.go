package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryClient is an in-process Client used when Redis is not configured.
type MemoryClient struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryClient starts a janitor that drops expired entries every sweep interval.
// A non-positive sweep disables the janitor; expired entries are still never returned.
func NewMemoryClient(sweep time.Duration) *MemoryClient {
	c := &MemoryClient{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweep > 0 {
		go c.janitor(sweep)
	}
	return c
}

func (c *MemoryClient) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.expired(entry) {
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a copy of value. A non-positive ttl keeps the entry until deleted.
func (c *MemoryClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	entry := memoryEntry{value: stored}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryClient) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// Close stops the janitor. It is safe to call more than once.
func (c *MemoryClient) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryClient) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt)
}

func (c *MemoryClient) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if c.expired(entry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
