package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// URLCache caches presigned download URLs so repeated avatar and attachment
// loads do not re-sign on every request. The TTL must stay below the
// presign expiry.
type URLCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewURLCache(client *goredis.Client, ttl time.Duration) *URLCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &URLCache{client: client, ttl: ttl}
}

// Get returns the cached URL for an object key, or "" on a miss.
func (c *URLCache) Get(ctx context.Context, objectKey string) (string, error) {
	url, err := c.client.Get(ctx, "url:"+objectKey).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return url, nil
}

// Put stores a URL under the object key.
func (c *URLCache) Put(ctx context.Context, objectKey, url string) error {
	return c.client.Set(ctx, "url:"+objectKey, url, c.ttl).Err()
}

// Invalidate drops the cached URL, for when the object is deleted.
func (c *URLCache) Invalidate(ctx context.Context, objectKey string) error {
	return c.client.Del(ctx, "url:"+objectKey).Err()
}
