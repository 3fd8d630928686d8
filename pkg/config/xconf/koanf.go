package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// koanfConfig 是 Config 接口的 koanf 实现。
type koanfConfig struct {
	mu          sync.RWMutex
	reloadMu    sync.Mutex // 序列化并发 Reload，防止旧数据覆盖新数据
	k           *koanf.Koanf
	fingerprint uint64
	path        string
	format      Format
	opts        *Options
	isBytes     bool
}

// New 从文件路径创建配置实例。
// 根据文件扩展名自动检测格式（.yaml/.yml 或 .json）。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	options := applyOptions(opts)
	k, err := parse(data, format, options)
	if err != nil {
		return nil, err
	}
	return &koanfConfig{
		k:           k,
		fingerprint: xxhash.Sum64(data),
		path:        path,
		format:      format,
		opts:        options,
	}, nil
}

// NewFromBytes 从字节数据创建配置实例，需要显式指定格式。
// 适用于 K8s ConfigMap 等场景；空数据得到空配置。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}
	options := applyOptions(opts)
	k, err := parse(data, format, options)
	if err != nil {
		return nil, err
	}
	return &koanfConfig{
		k:           k,
		fingerprint: xxhash.Sum64(data),
		format:      format,
		opts:        options,
		isBytes:     true,
	}, nil
}

// Client 返回底层的 koanf 实例。
func (c *koanfConfig) Client() *koanf.Koanf {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k
}

// Unmarshal 将指定路径的配置反序列化到目标结构体。
func (c *koanfConfig) Unmarshal(path string, target any) error {
	k := c.Client()
	if err := k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.opts.Tag}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Reload 重新读取配置文件。
//
// 编辑器保存、ConfigMap 符号链接切换等场景会产生内容不变的写事件，
// 指纹一致时跳过解析并返回 changed=false。
func (c *koanfConfig) Reload() (bool, error) {
	if c.isBytes {
		return false, ErrNotReloadable
	}

	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	sum := xxhash.Sum64(data)
	if sum == c.Fingerprint() {
		return false, nil
	}

	k, err := parse(data, c.format, c.opts)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.k = k
	c.fingerprint = sum
	c.mu.Unlock()
	return true, nil
}

// Fingerprint 返回当前已加载内容的指纹。
func (c *koanfConfig) Fingerprint() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fingerprint
}

// Path 返回配置文件路径。
func (c *koanfConfig) Path() string {
	return c.path
}

// Format 返回配置格式。
func (c *koanfConfig) Format() Format {
	return c.format
}

func applyOptions(opts []Option) *Options {
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func isValidFormat(format Format) bool {
	return format == FormatYAML || format == FormatJSON
}

// parse 将数据解析为新的 koanf 实例，空数据得到空实例。
func parse(data []byte, format Format, opts *Options) (*koanf.Koanf, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, ErrUnsupportedFormat
	}

	k := koanf.New(opts.Delim)
	if len(data) == 0 {
		return k, nil
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return k, nil
}
