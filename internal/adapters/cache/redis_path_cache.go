package cache

import (
	"context"
	"delivery-tour-service/internal/platform/obs"
	"delivery-tour-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPathCache shares shortest paths between service instances.
// Entries live under path:{map}:{origin}:{destination} as JSON.
type RedisPathCache struct {
	Client *redis.Client
	// Zero keeps entries until evicted.
	TTL time.Duration
}

func NewRedisPathCache(client *redis.Client, ttl time.Duration) *RedisPathCache {
	return &RedisPathCache{Client: client, TTL: ttl}
}

type redisPath struct {
	LengthMeters float64 `json:"length_meters"`
	Vertices     []int64 `json:"vertices"`
}

func pathKey(mapID string, origin, destination int64) string {
	return fmt.Sprintf("path:%s:%d:%d", mapID, origin, destination)
}

// Fetch cached paths for one origin and multiple destinations with a single
// MGET.
func (c *RedisPathCache) GetMany(
	ctx context.Context,
	mapID string,
	origin int64,
	destinations []int64,
) (_ map[int64]ports.PathResult, err error) {
	defer obs.Time(ctx, "path.cache.redis.GetMany")(&err)

	if c.Client == nil {
		return nil, errors.New("redis path cache: client is nil")
	}
	if strings.TrimSpace(mapID) == "" {
		return nil, errors.New("get redis path cache: map id must not be empty")
	}

	uniq := uniqueDestinations(destinations)
	if len(uniq) == 0 {
		return map[int64]ports.PathResult{}, nil
	}

	keys := make([]string, len(uniq))
	for i, d := range uniq {
		keys[i] = pathKey(mapID, origin, d)
	}

	vals, err := c.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get redis path cache: mget: %w", err)
	}

	out := make(map[int64]ports.PathResult, len(uniq))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}

		var p redisPath
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			log.Printf("redis path cache: drop corrupt entry key=%s err=%v", keys[i], err)
			continue
		}
		out[uniq[i]] = ports.PathResult{LengthMeters: p.LengthMeters, Vertices: p.Vertices}
	}

	return out, nil
}

// Store many cached paths for a single origin in one pipeline.
func (c *RedisPathCache) PutMany(
	ctx context.Context,
	mapID string,
	origin int64,
	results map[int64]ports.PathResult,
) (err error) {
	defer obs.Time(ctx, "path.cache.redis.PutMany")(&err)

	if c.Client == nil {
		return errors.New("redis path cache: client is nil")
	}
	if strings.TrimSpace(mapID) == "" {
		return errors.New("insert redis path cache: map id must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := c.Client.TxPipeline()
	for dest, r := range results {
		if len(r.Vertices) == 0 {
			return fmt.Errorf("insert redis path cache dest=%d: empty path", dest)
		}

		b, err := json.Marshal(redisPath{LengthMeters: r.LengthMeters, Vertices: r.Vertices})
		if err != nil {
			return fmt.Errorf("insert redis path cache dest=%d: %w", dest, err)
		}
		pipe.Set(ctx, pathKey(mapID, origin, dest), b, c.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert redis path cache: exec: %w", err)
	}

	return nil
}

// Drop every cached path of a map. Keys are found with SCAN so Redis is
// never blocked by a KEYS call.
func (c *RedisPathCache) Clear(ctx context.Context, mapID string) (err error) {
	defer obs.Time(ctx, "path.cache.redis.Clear")(&err)

	if c.Client == nil {
		return errors.New("redis path cache: client is nil")
	}
	if strings.TrimSpace(mapID) == "" {
		return errors.New("clear redis path cache: map id must not be empty")
	}

	pattern := "path:" + escapeGlob(mapID) + ":*"
	batch := make([]string, 0, clearBatch)
	iter := c.Client.Scan(ctx, 0, pattern, clearBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatch {
			if err := c.Client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("clear redis path cache %q: del: %w", mapID, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("clear redis path cache %q: scan: %w", mapID, err)
	}
	if len(batch) > 0 {
		if err := c.Client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("clear redis path cache %q: del: %w", mapID, err)
		}
	}

	return nil
}

const clearBatch = 500

// escapeGlob quotes the characters SCAN MATCH treats as wildcards.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
