package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CreativeUnicorns/cogbot"
)

// Cooldown limits an action to one use per period and key. The expiry of the
// running window is stored in a cogbot.Cache with the period as TTL, so a
// Redis cache shares cooldowns between processes.
type Cooldown struct {
	mu     sync.Mutex
	cache  cogbot.Cache
	period time.Duration
	now    func() time.Time
}

// NewCooldown creates a Cooldown over cache.
func NewCooldown(cache cogbot.Cache, period time.Duration) *Cooldown {
	return &Cooldown{cache: cache, period: period, now: time.Now}
}

// Period returns the cooldown window.
func (c *Cooldown) Period() time.Duration {
	return c.period
}

// Try starts a new window for key and returns zero, or returns the time left
// in the window that is already running. A non-positive period never blocks.
func (c *Cooldown) Try(ctx context.Context, key string) (time.Duration, error) {
	if c.period <= 0 {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	raw, err := c.cache.Get(ctx, key)
	switch {
	case err == nil && len(raw) == 8:
		expiry := time.Unix(0, int64(binary.BigEndian.Uint64(raw)))
		if left := expiry.Sub(now); left > 0 {
			return left, nil
		}
	case err != nil && !errors.Is(err, cogbot.ErrNotFound):
		return 0, fmt.Errorf("cooldown %q: %w", key, err)
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(now.Add(c.period).UnixNano()))
	if err := c.cache.Set(ctx, key, buf, c.period); err != nil {
		return 0, fmt.Errorf("cooldown %q: %w", key, err)
	}
	return 0, nil
}

// Reset ends the window for key.
func (c *Cooldown) Reset(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Delete(ctx, key)
}
