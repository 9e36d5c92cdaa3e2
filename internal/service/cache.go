package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// CountCache 组卷题目数缓存
type CountCache interface {
	Get(ctx context.Context, key string) (int64, bool)
	Set(ctx context.Context, key string, value int64, ttl time.Duration)
}

type RedisCountCache struct {
	Client *redis.Client
	Prefix string
}

func NewRedisCountCache(rdb *redis.Client) *RedisCountCache {
	return &RedisCountCache{Client: rdb, Prefix: "kreuzen:pool-count:"}
}

func (c *RedisCountCache) Get(ctx context.Context, key string) (int64, bool) {
	val, err := c.Client.Get(ctx, c.Prefix+key).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *RedisCountCache) Set(ctx context.Context, key string, value int64, ttl time.Duration) {
	c.Client.Set(ctx, c.Prefix+key, value, ttl)
}

// cacheKey 对筛选条件做摘要
func cacheKey(v interface{}) string {
	raw, _ := json.Marshal(v)
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}
