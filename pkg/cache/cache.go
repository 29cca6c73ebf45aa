package cache

import (
	"context"
	"time"
)

// Cache 第三方接口响应缓存
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
