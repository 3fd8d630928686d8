package xconf

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// 默认值，与 xlazy 的默认配置一致。
const (
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
	DefaultHTTPAddr   = ":8080"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// 数据源类型。
const (
	SourceFile      = "file"
	SourceHTTP      = "http"
	SourceRedis     = "redis"
	SourceEtcd      = "etcd"
	SourceMongo     = "mongo"
	SourceConfigMap = "configmap"
)

// Boundary 懒加载边界的文件配置。
//
//	name: profile
//	retries: 3
//	retry_delay: 1s
//	verbose: true
//	log:
//	  level: debug
//	http:
//	  addr: ":8080"
//	source:
//	  kind: redis
//	  addr: localhost:6379
//	  key: widgets/profile
type Boundary struct {
	Name       string        `koanf:"name"`
	Retries    int           `koanf:"retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`
	Verbose    bool          `koanf:"verbose"`
	Log        Log           `koanf:"log"`
	HTTP       HTTP          `koanf:"http"`
	Source     Source        `koanf:"source"`
}

// Log 日志配置。File 非空时按大小轮转写入文件。
type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// HTTP 宿主监听配置。
type HTTP struct {
	Addr string `koanf:"addr"`
}

// Source 描述资源实现所在的位置，按 Kind 取用对应字段。
type Source struct {
	Kind string `koanf:"kind"`

	// file
	Path string `koanf:"path"`

	// http
	URL          string        `koanf:"url"`
	Timeout      time.Duration `koanf:"timeout"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"` // 0 表示默认上限

	// redis / etcd / configmap
	Addr      string   `koanf:"addr"`
	Endpoints []string `koanf:"endpoints"`
	Key       string   `koanf:"key"`

	// mongo
	URI        string `koanf:"uri"`
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`
	ID         string `koanf:"id"`
	Field      string `koanf:"field"`

	// configmap
	Namespace string `koanf:"namespace"`
	Name      string `koanf:"name"`

	// 为 true 时用熔断器包装加载函数
	Breaker bool `koanf:"breaker"`
}

// DefaultBoundary 返回填充默认值的配置。
func DefaultBoundary() Boundary {
	return Boundary{
		Name:       "default",
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
		Log:        Log{Level: DefaultLogLevel, Format: DefaultLogFormat},
		HTTP:       HTTP{Addr: DefaultHTTPAddr},
	}
}

// Load 从文件加载边界配置并校验。
func Load(path string, opts ...Option) (*Boundary, error) {
	cfg, err := New(path, opts...)
	if err != nil {
		return nil, err
	}
	return Decode(cfg)
}

// FromBytes 从字节数据加载边界配置并校验。
func FromBytes(data []byte, format Format, opts ...Option) (*Boundary, error) {
	cfg, err := NewFromBytes(data, format, opts...)
	if err != nil {
		return nil, err
	}
	return Decode(cfg)
}

// Decode 在默认值之上反序列化整个配置并校验。
func Decode(cfg Config) (*Boundary, error) {
	b := DefaultBoundary()
	if err := cfg.Unmarshal("", &b); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate 校验配置，返回合并后的全部错误。
func (b *Boundary) Validate() error {
	var errs []error
	if b.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must be >= 0, got %d", b.Retries))
	}
	if b.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("retry_delay must be >= 0, got %s", b.RetryDelay))
	}
	switch strings.ToLower(b.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", b.Log.Format))
	}
	if err := b.Source.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func (s *Source) validate() error {
	missing := func(field string) error {
		return fmt.Errorf("source.%s is required for kind %q", field, s.Kind)
	}
	switch s.Kind {
	case "":
		return nil
	case SourceFile:
		if s.Path == "" {
			return missing("path")
		}
	case SourceHTTP:
		if s.URL == "" {
			return missing("url")
		}
		if s.MaxBodyBytes < 0 {
			return fmt.Errorf("source.max_body_bytes must be >= 0, got %d", s.MaxBodyBytes)
		}
	case SourceRedis:
		if s.Addr == "" {
			return missing("addr")
		}
		if s.Key == "" {
			return missing("key")
		}
	case SourceEtcd:
		if len(s.Endpoints) == 0 {
			return missing("endpoints")
		}
		if s.Key == "" {
			return missing("key")
		}
	case SourceMongo:
		if s.URI == "" || s.Database == "" || s.Collection == "" || s.ID == "" {
			return missing("uri/database/collection/id")
		}
	case SourceConfigMap:
		if s.Name == "" || s.Key == "" {
			return missing("name/key")
		}
	default:
		return fmt.Errorf("unknown source.kind %q", s.Kind)
	}
	return nil
}
