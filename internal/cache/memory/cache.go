package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/reactor-bot/internal/cache"
)

const defaultSweepInterval = 5 * time.Minute

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache - in-memory кеш с TTL и фоновой уборкой просроченных записей.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	done    chan struct{}
	stopped bool
}

var _ cache.Cache = (*Cache)(nil)

func New() *Cache {
	return NewWithContext(context.Background(), defaultSweepInterval)
}

// NewWithContext создает кеш с заданным интервалом уборки; значение <= 0
// заменяется интервалом по умолчанию. Уборщик живет до Stop или отмены ctx.
func NewWithContext(ctx context.Context, sweepInterval time.Duration) *Cache {
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}

	c := &Cache{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go c.sweeper(ctx, sweepInterval)
	return c
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len - число записей, включая просроченные, но еще не убранные.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop останавливает уборщика. Повторный вызов безопасен.
func (c *Cache) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.done)
	}
	c.mu.Unlock()
}

func (c *Cache) sweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
