package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache stores upstream response bodies for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

// maxMemoryEntries bounds the in-process cache; distinct search queries
// would otherwise grow it without limit.
const maxMemoryEntries = 1024

type memory struct {
	mu         sync.Mutex
	m          map[string]*entry
	maxEntries int
	now        func() time.Time
}

type entry struct {
	b        []byte
	exp      time.Time
	accessed time.Time
}

// NewMemory returns a process-local cache.
func NewMemory() Cache { return newMemory(time.Now, maxMemoryEntries) }

func newMemory(now func() time.Time, maxEntries int) *memory {
	return &memory{m: make(map[string]*entry), maxEntries: maxEntries, now: now}
}

func (c *memory) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false
	}
	now := c.now()
	if e.expired(now) {
		delete(c.m, key)
		return nil, false
	}
	e.accessed = now
	return append([]byte(nil), e.b...), true
}

func (c *memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.m[key]; !exists && c.maxEntries > 0 && len(c.m) >= c.maxEntries {
		c.removeExpired(now)
		if len(c.m) >= c.maxEntries {
			c.evictLRU()
		}
	}
	e := &entry{b: append([]byte(nil), val...), accessed: now}
	if ttl > 0 {
		e.exp = now.Add(ttl)
	}
	c.m[key] = e
}

func (e *entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && !now.Before(e.exp)
}

// removeExpired drops every expired entry (caller holds mu).
func (c *memory) removeExpired(now time.Time) {
	for k, e := range c.m {
		if e.expired(now) {
			delete(c.m, k)
		}
	}
}

// evictLRU drops the least recently used entry (caller holds mu).
func (c *memory) evictLRU() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.m {
		if oldestKey == "" || e.accessed.Before(oldest) {
			oldestKey, oldest = k, e.accessed
		}
	}
	if oldestKey != "" {
		delete(c.m, oldestKey)
	}
}

// Redis is a Cache backed by a shared redis instance, so several screener
// processes reuse one another's upstream responses.
type Redis struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Timeout  time.Duration
}

// NewRedis connects to redis. The connection is lazy; a dead server shows up
// as cache misses.
func NewRedis(opts RedisOptions) *Redis {
	if opts.Timeout <= 0 {
		opts.Timeout = 500 * time.Millisecond
	}
	if opts.Prefix == "" {
		opts.Prefix = "pairscreen:"
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		prefix:  opts.Prefix,
		timeout: opts.Timeout,
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+key, val, ttl).Err(); err != nil {
		log.Debug().
			Err(err).
			Str("key", r.prefix+key).
			Dur("ttl", ttl).
			Msg("Cache write failed")
	}
}

// Ping checks that the server answers.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis cache unreachable: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Redis) Close() error { return r.client.Close() }

// New returns a redis cache when addr is set and an in-memory cache
// otherwise.
func New(opts RedisOptions) Cache {
	if opts.Addr != "" {
		return NewRedis(opts)
	}
	return NewMemory()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) {}
