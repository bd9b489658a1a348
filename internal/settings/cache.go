package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/packquote/packquote/internal/pricing"
)

const (
	versionKey  = "settings:version"
	bumpChannel = "settings.bump"
	loadTimeout = 10 * time.Second
)

// Loader is the read side of Repository used by the cache.
type Loader interface {
	ListActive(ctx context.Context) ([]Setting, error)
}

// LoadObserver receives the outcome of every reload.
type LoadObserver interface {
	SettingsLoaded(err error)
}

// Cache holds the current rates snapshot. A snapshot is reloaded on first
// use, after the TTL, after Invalidate, and when another instance bumps the
// shared Redis version. A nil Redis client keeps invalidation local.
type Cache struct {
	loader   Loader
	client   *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
	observer LoadObserver
	now      func() time.Time

	mu         sync.RWMutex
	rates      pricing.Rates
	loadedAt   time.Time
	version    int64
	valid      bool
	generation uint64

	group singleflight.Group
}

// CacheOption customises a Cache.
type CacheOption func(*Cache)

// WithObserver reports reload outcomes to o.
func WithObserver(o LoadObserver) CacheOption {
	return func(c *Cache) { c.observer = o }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache builds a cache over loader.
func NewCache(loader Loader, client *redis.Client, ttl time.Duration, logger *slog.Logger, opts ...CacheOption) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{loader: loader, client: client, ttl: ttl, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rates returns the current rates, loading them when the snapshot is
// missing, expired or superseded. When a reload fails and an older snapshot
// exists, the older snapshot is returned and the failure is logged.
func (c *Cache) Rates(ctx context.Context) (pricing.Rates, error) {
	remote := c.remoteVersion(ctx)

	c.mu.RLock()
	fresh := c.valid && c.now().Sub(c.loadedAt) < c.ttl && (remote == 0 || remote == c.version)
	rates, hasStale := c.rates, !c.loadedAt.IsZero()
	c.mu.RUnlock()
	if fresh {
		return rates.Clone(), nil
	}

	res := c.group.DoChan("rates", func() (any, error) {
		return c.load(context.WithoutCancel(ctx), remote)
	})
	select {
	case <-ctx.Done():
		return pricing.Rates{}, ctx.Err()
	case r := <-res:
		if r.Err != nil {
			if hasStale {
				c.logger.Warn("settings reload failed, serving previous snapshot", slog.Any("error", r.Err))
				return rates.Clone(), nil
			}
			return pricing.Rates{}, r.Err
		}
		return r.Val.(pricing.Rates).Clone(), nil
	}
}

func (c *Cache) load(ctx context.Context, version int64) (pricing.Rates, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	c.mu.RLock()
	generation := c.generation
	c.mu.RUnlock()

	rows, err := c.loader.ListActive(ctx)
	if c.observer != nil {
		c.observer.SettingsLoaded(err)
	}
	if err != nil {
		return pricing.Rates{}, fmt.Errorf("settings: load rates: %w", err)
	}
	rates, skipped := BuildRates(rows)
	for _, s := range skipped {
		c.logger.Warn("settings row ignored", slog.Any("error", s))
	}

	c.mu.Lock()
	if c.generation != generation {
		c.mu.Unlock()
		c.logger.Debug("settings load superseded by invalidation", slog.Int("rows", len(rows)))
		return rates, nil
	}
	c.rates = rates
	c.loadedAt = c.now()
	c.version = version
	c.valid = true
	c.mu.Unlock()

	c.logger.Debug("settings loaded", slog.Int("rows", len(rows)), slog.Int64("version", version))
	return rates, nil
}

// LastLoaded reports when the current snapshot was loaded. Zero means never.
func (c *Cache) LastLoaded() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Invalidate drops the local snapshot and bumps the shared version so other
// instances reload too.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.drop()
	if c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return fmt.Errorf("settings: bump version: %w", err)
	}
	if err := c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err(); err != nil {
		return fmt.Errorf("settings: publish bump: %w", err)
	}
	return nil
}

// drop marks the snapshot invalid. A load already in flight may have read
// rows older than the invalidation, so it is detached from the singleflight
// key and its result is not stored.
func (c *Cache) drop() {
	c.mu.Lock()
	c.valid = false
	c.generation++
	c.mu.Unlock()
	c.group.Forget("rates")
}

// ListenForInvalidation drops the local snapshot whenever another instance
// publishes a bump. It returns once the subscription is confirmed and stops
// when ctx is done.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("settings: subscribe: %w", err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				c.logger.Debug("settings bump received", slog.String("version", msg.Payload))
				c.drop()
			}
		}
	}()
	return nil
}

// remoteVersion reads the shared version. Errors are logged and treated as
// "no remote version" so a Redis outage falls back to TTL expiry.
func (c *Cache) remoteVersion(ctx context.Context) int64 {
	if c.client == nil {
		return 0
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("settings version unavailable", slog.Any("error", err))
		}
		return 0
	}
	return ver
}
