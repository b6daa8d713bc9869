// Package ratelimit provides per-key token bucket limiters backed by Redis or
// by process memory.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config holds the bucket parameters shared by all limiters.
type Config struct {
	RequestsPerSecond float64
	Burst             int
}

func (c Config) String() string {
	return fmt.Sprintf("%.2f requests/second (burst capacity: %d)", c.RequestsPerSecond, c.Burst)
}

// Token Bucket algorithm implemented in Lua for atomicity.
// Data structure: {last_refill, tokens}
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])       -- tokens per second
local capacity = tonumber(ARGV[2])   -- max tokens in bucket
local now = tonumber(ARGV[3])        -- current timestamp in seconds
local ttl = tonumber(ARGV[4])        -- bucket expiry in seconds

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
redis.call('EXPIRE', key, ttl)
return allowed
`)

// RedisLimiter shares buckets between instances through Redis.
type RedisLimiter struct {
	client redis.Scripter
	cfg    Config
	prefix string
	now    func() time.Time
}

// NewRedisLimiter creates a Redis-backed token bucket limiter.
func NewRedisLimiter(client redis.Scripter, cfg Config) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		cfg:    cfg,
		prefix: "ratelimit:tb:",
		now:    time.Now,
	}
}

// Allow consumes one token from the bucket of key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(l.now().UnixMicro()) / 1e6

	// Keep a bucket long enough to refill completely
	ttl := int(float64(l.cfg.Burst)/l.cfg.RequestsPerSecond) + 1
	if ttl < 60 {
		ttl = 60
	}

	allowed, err := tokenBucket.Run(ctx, l.client, []string{l.prefix + key},
		l.cfg.RequestsPerSecond,
		l.cfg.Burst,
		strconv.FormatFloat(now, 'f', 6, 64),
		ttl,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return allowed == 1, nil
}

// LocalLimiter keeps one golang.org/x/time/rate limiter per key in memory.
type LocalLimiter struct {
	cfg     Config
	mu      sync.Mutex
	buckets map[string]*localBucket
	idleTTL time.Duration
	maxKeys int
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter creates an in-process token bucket limiter.
func NewLocalLimiter(cfg Config) *LocalLimiter {
	return &LocalLimiter{
		cfg:     cfg,
		buckets: make(map[string]*localBucket),
		idleTTL: 3 * time.Minute,
		maxKeys: 10000,
	}
}

// Allow consumes one token from the bucket of key. It never fails.
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.maxKeys {
			l.prune(now)
		}
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1), nil
}

// prune drops buckets idle for longer than idleTTL. Callers hold mu.
func (l *LocalLimiter) prune(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}
