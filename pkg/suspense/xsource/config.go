package xsource

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/omeyang/xlazy/pkg/config/xconf"
	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

// DefaultDialTimeout etcd 建连与 HTTP 请求的默认超时。
const DefaultDialTimeout = 5 * time.Second

// ConfigOption 调整 FromConfig 构建客户端的方式。
type ConfigOption func(*configOptions)

type configOptions struct {
	httpClient *http.Client
	kube       kubernetes.Interface
	logger     xlog.Logger
}

// WithHTTPClient 指定 http 源使用的客户端。
func WithHTTPClient(c *http.Client) ConfigOption {
	return func(o *configOptions) { o.httpClient = c }
}

// WithKubernetes 指定 configmap 源使用的客户端，默认使用集群内配置。
func WithKubernetes(c kubernetes.Interface) ConfigOption {
	return func(o *configOptions) { o.kube = c }
}

// WithLogger 设置熔断状态日志。
func WithLogger(l xlog.Logger) ConfigOption {
	return func(o *configOptions) { o.logger = l }
}

// FromConfig 按配置构建加载函数与释放底层客户端的 closer。
// closer 总是非 nil，可重复调用。
func FromConfig(src xconf.Source, opts ...ConfigOption) (xloader.Loader[[]byte], func() error, error) {
	o := &configOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	loader, closer, err := build(src, o)
	if err != nil {
		return nil, noopCloser, err
	}
	if src.Breaker {
		loader = Breaker(src.Kind, loader, WithBreakerLogger(o.logger))
	}
	return loader, sync.OnceValue(closer), nil
}

func build(src xconf.Source, o *configOptions) (xloader.Loader[[]byte], func() error, error) {
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	switch src.Kind {
	case xconf.SourceFile:
		return File(src.Path), noopCloser, nil

	case xconf.SourceHTTP:
		client := o.httpClient
		if client == nil {
			client = &http.Client{Timeout: timeout}
		}
		return HTTP(client, src.URL, WithMaxBodyBytes(src.MaxBodyBytes)), noopCloser, nil

	case xconf.SourceRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{src.Addr}})
		return Redis(client, src.Key), client.Close, nil

	case xconf.SourceEtcd:
		client, err := clientv3.New(clientv3.Config{
			Endpoints:   src.Endpoints,
			DialTimeout: timeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("xsource: etcd client: %w", err)
		}
		return Etcd(client, src.Key), client.Close, nil

	case xconf.SourceMongo:
		client, err := mongo.Connect(options.Client().ApplyURI(src.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("xsource: mongo client: %w", err)
		}
		coll := client.Database(src.Database).Collection(src.Collection)
		field := src.Field
		if field == "" {
			field = "content"
		}
		closer := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return client.Disconnect(ctx)
		}
		return Mongo(coll, src.ID, field), closer, nil

	case xconf.SourceConfigMap:
		client := o.kube
		if client == nil {
			cfg, err := rest.InClusterConfig()
			if err != nil {
				return nil, nil, fmt.Errorf("xsource: kubernetes config: %w", err)
			}
			cs, err := kubernetes.NewForConfig(cfg)
			if err != nil {
				return nil, nil, fmt.Errorf("xsource: kubernetes client: %w", err)
			}
			client = cs
		}
		ns := src.Namespace
		if ns == "" {
			ns = "default"
		}
		return ConfigMap(client, ns, src.Name, src.Key), noopCloser, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, src.Kind)
	}
}

func noopCloser() error { return nil }
