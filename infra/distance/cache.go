package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	coredistance "github.com/Medic423/medport-sub003/core/distance"
	"github.com/Medic423/medport-sub003/core/logger"
)

// ErrCacheMiss is returned by KV implementations when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// KV is the small key/value surface the cache decorator needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisKV adapts a go-redis client to the KV interface.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV wraps an existing client.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// NewRedisKVAddr dials the given address with default options.
func NewRedisKVAddr(addr string) *RedisKV {
	return &RedisKV{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return v, err
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying client.
func (r *RedisKV) Close() error { return r.client.Close() }

// CachedProvider memoizes estimates from an inner provider. Cache failures
// are logged and treated as misses; the inner provider stays authoritative.
type CachedProvider struct {
	inner coredistance.Provider
	kv    KV
	ttl   time.Duration
	log   logger.Logger
}

// NewCachedProvider decorates inner with a KV cache. A non-positive ttl
// defaults to one hour.
func NewCachedProvider(inner coredistance.Provider, kv KV, ttl time.Duration, log logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedProvider{inner: inner, kv: kv, ttl: ttl, log: log}
}

func cacheKey(from, to string, route coredistance.RouteType) string {
	return fmt.Sprintf("dist:%s:%s:%s", route, from, to)
}

// Distance looks up the cache before delegating to the inner provider.
func (p *CachedProvider) Distance(ctx context.Context, fromFacilityID, toFacilityID string, route coredistance.RouteType) (coredistance.Estimate, error) {
	key := cacheKey(fromFacilityID, toFacilityID, route)
	if raw, err := p.kv.Get(ctx, key); err == nil {
		var est coredistance.Estimate
		if jerr := json.Unmarshal([]byte(raw), &est); jerr == nil {
			return est, nil
		}
		// Corrupt entry: fall through and overwrite it.
	} else if !errors.Is(err, ErrCacheMiss) && p.log != nil {
		p.log.Warnf("distance cache read %s: %v", key, err)
	}

	est, err := p.inner.Distance(ctx, fromFacilityID, toFacilityID, route)
	if err != nil {
		return coredistance.Estimate{}, err
	}

	if raw, jerr := json.Marshal(est); jerr == nil {
		if serr := p.kv.Set(ctx, key, string(raw), p.ttl); serr != nil && p.log != nil {
			p.log.Warnf("distance cache write %s: %v", key, serr)
		}
	}
	return est, nil
}
