package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedResponse is the envelope stored per upstream response: the
// status, content type and raw body are enough to replay it.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// responseCache is a short-TTL Redis cache of upstream trip responses.
// A nil cache is valid and disabled; cache failures degrade to upstream
// fetches, never to request errors.
type responseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newResponseCache(addr string, ttl time.Duration) *responseCache {
	if addr == "" || ttl <= 0 {
		return nil
	}
	return &responseCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (c *responseCache) get(ctx context.Context, key string) (*cachedResponse, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, "tp:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}

func (c *responseCache) set(ctx context.Context, key string, resp *cachedResponse) {
	if c == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	c.client.Set(ctx, "tp:"+key, data, c.ttl)
}
