package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle 用 SETNX 做“每个 key 每个窗口只放行一次”
type Throttle struct {
	rdb    *redis.Client
	prefix string
	window time.Duration
}

func NewThrottle(rdb *redis.Client, prefix string, window time.Duration) *Throttle {
	return &Throttle{rdb: rdb, prefix: prefix, window: window}
}

// Allow 窗口内第一次调用返回 true；Redis 出错时返回 false
func (t *Throttle) Allow(ctx context.Context, key string) bool {
	if t.window <= 0 {
		return true
	}
	ok, err := t.rdb.SetNX(ctx, t.prefix+key, "1", t.window).Result()
	return err == nil && ok
}
