package xsource

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

// Redis 读取字符串键。键不存在返回 ErrNotFound。
func Redis(client redis.UniversalClient, key string) xloader.Loader[[]byte] {
	return func(ctx context.Context) ([]byte, error) {
		if client == nil {
			return nil, ErrNilClient
		}
		data, err := client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, notFound("redis key " + key)
		}
		return data, err
	}
}
