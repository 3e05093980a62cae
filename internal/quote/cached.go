package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cached 带 Redis 缓存的行情装饰器
// 行情按 TTL 缓存，减少对外部接口的调用；缓存读写失败不影响正常查询
type Cached struct {
	next   Provider
	client *redis.Client
	ttl    time.Duration
}

func NewCached(next Provider, client *redis.Client, ttl time.Duration) *Cached {
	return &Cached{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(symbol string) string {
	return fmt.Sprintf("quote:%s", symbol)
}

func (c *Cached) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	key := cacheKey(symbol)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var q Quote
		if err := json.Unmarshal([]byte(raw), &q); err == nil {
			return &q, nil
		}
		// 缓存内容损坏，当作未命中
	} else if err != redis.Nil {
		log.Printf("[Quote] 读取行情缓存失败: symbol=%s, err=%v", symbol, err)
	}

	q, err := c.next.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(q)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[Quote] 写入行情缓存失败: symbol=%s, err=%v", symbol, err)
	}

	return q, nil
}
