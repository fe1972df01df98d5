package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMultipartBufferTTL bounds how long a "#multi_*" buffer survives
// without completing, so an abandoned fragment set doesn't accumulate
// forever (spec leaves this unbounded; this repo adds the ceiling).
const DefaultMultipartBufferTTL = 24 * time.Hour

const multipartIndexKey = "#multi_index"

// Redis is the production Store backend, built on go-redis.
type Redis struct {
	client             *redis.Client
	multipartBufferTTL time.Duration
}

// Connect dials url (a redis:// connection string) and returns a Redis
// store. multipartBufferTTL of 0 uses DefaultMultipartBufferTTL.
func Connect(url string, multipartBufferTTL time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if multipartBufferTTL == 0 {
		multipartBufferTTL = DefaultMultipartBufferTTL
	}
	return &Redis{
		client:             redis.NewClient(opts),
		multipartBufferTTL: multipartBufferTTL,
	}, nil
}

// ListPushLeft implements Store.
func (r *Redis) ListPushLeft(ctx context.Context, key string, value []byte) error {
	return r.client.LPush(ctx, key, value).Err()
}

// ListPopLeft implements Store.
func (r *Redis) ListPopLeft(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.LPop(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// ListLen implements Store.
func (r *Redis) ListLen(ctx context.Context, key string) (int, error) {
	n, err := r.client.LLen(ctx, key).Result()
	return int(n), err
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set stores value under key. Multipart buffer keys ("#multi_" suffix)
// are written with the configured TTL and indexed in a sorted set scored
// by expiry time (write time plus TTL), so Sweep can reap abandoned buffers.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if isMultipartKey(key) {
		pipe := r.client.TxPipeline()
		pipe.Set(ctx, key, value, r.multipartBufferTTL)
		pipe.ZAdd(ctx, multipartIndexKey, redis.Z{
			Score:  float64(time.Now().Add(r.multipartBufferTTL).Unix()),
			Member: key,
		})
		_, err := pipe.Exec(ctx)
		return err
	}
	return r.client.Set(ctx, key, value, 0).Err()
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, key string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	if isMultipartKey(key) {
		pipe.ZRem(ctx, multipartIndexKey, key)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Sweep deletes multipart buffers whose TTL has already elapsed according
// to the index sorted set, in case the corresponding Redis key already
// expired without its index entry being cleaned up. Returns the number
// of stale index entries removed. Core reassembly correctness never
// depends on Sweep running.
func (r *Redis) Sweep(ctx context.Context) (int, error) {
	stale, err := r.client.ZRangeByScore(ctx, multipartIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(time.Now().Unix(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}
	pipe := r.client.TxPipeline()
	for _, key := range stale {
		pipe.Del(ctx, key)
		pipe.ZRem(ctx, multipartIndexKey, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return len(stale), nil
}

func isMultipartKey(key string) bool {
	return strings.Contains(key, "#multi_")
}
