package xsource

import (
	"context"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

//go:generate mockgen -source=etcd.go -destination=mock_kv_test.go -package=xsource_test KV

// KV etcd 读操作，方法与 clientv3.KV 一致。*clientv3.Client 满足。
type KV interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
}

var _ KV = (*clientv3.Client)(nil)

// Etcd 读取 etcd 键。键不存在返回 ErrNotFound。
func Etcd(kv KV, key string) xloader.Loader[[]byte] {
	return func(ctx context.Context) ([]byte, error) {
		if kv == nil {
			return nil, ErrNilClient
		}
		resp, err := kv.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if len(resp.Kvs) == 0 {
			return nil, notFound("etcd key " + key)
		}
		return resp.Kvs[0].Value, nil
	}
}
