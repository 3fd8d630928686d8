package xconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `name: profile
retries: 5
retry_delay: 250ms
verbose: true
log:
  level: debug
source:
  kind: redis
  addr: localhost:6379
  key: widgets/profile
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_DetectFormat(t *testing.T) {
	dir := t.TempDir()

	cfg, err := New(writeFile(t, dir, "a.yml", "x: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Format())
	assert.Equal(t, 1, cfg.Client().Int("x"))

	cfg, err = New(writeFile(t, dir, "b.json", `{"x": 2}`))
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Format())

	_, err = New(writeFile(t, dir, "c.toml", "x = 1"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = New(writeFile(t, dir, "bad.yaml", "x: [1"))
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes(nil, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, cfg.Client().Keys())
	assert.Empty(t, cfg.Path())

	_, err = cfg.Reload()
	assert.ErrorIs(t, err, ErrNotReloadable)

	_, err = NewFromBytes([]byte("x"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestOptions(t *testing.T) {
	cfg, err := NewFromBytes([]byte("a:\n  b: 1\n"), FormatYAML, WithDelim("/"), WithTag(""), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Client().Int("a/b"))
}

func TestReload_Fingerprint(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "c.yaml", "x: 1\n")
	cfg, err := New(path)
	require.NoError(t, err)
	before := cfg.Fingerprint()

	changed, err := cfg.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, cfg.Fingerprint())

	writeFile(t, dir, "c.yaml", "x: 2\n")
	changed, err = cfg.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotEqual(t, before, cfg.Fingerprint())
	assert.Equal(t, 2, cfg.Client().Int("x"))

	// 解析失败保留旧配置
	writeFile(t, dir, "c.yaml", "x: [")
	_, err = cfg.Reload()
	assert.ErrorIs(t, err, ErrParseFailed)
	assert.Equal(t, 2, cfg.Client().Int("x"))
}

func TestFromBytes_Boundary(t *testing.T) {
	b, err := FromBytes([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "profile", b.Name)
	assert.Equal(t, 5, b.Retries)
	assert.Equal(t, 250*time.Millisecond, b.RetryDelay)
	assert.True(t, b.Verbose)
	assert.Equal(t, "debug", b.Log.Level)
	// 未出现的字段保留默认值
	assert.Equal(t, DefaultLogFormat, b.Log.Format)
	assert.Equal(t, DefaultHTTPAddr, b.HTTP.Addr)
	assert.Equal(t, SourceRedis, b.Source.Kind)
	assert.Equal(t, "widgets/profile", b.Source.Key)
}

func TestFromBytes_Defaults(t *testing.T) {
	b, err := FromBytes([]byte(`{}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, DefaultBoundary(), *b)
}

func TestBoundary_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Boundary)
		wantErr string
	}{
		{"ok", func(*Boundary) {}, ""},
		{"negative retries", func(b *Boundary) { b.Retries = -1 }, "retries"},
		{"negative delay", func(b *Boundary) { b.RetryDelay = -time.Second }, "retry_delay"},
		{"bad format", func(b *Boundary) { b.Log.Format = "xml" }, "log.format"},
		{"unknown kind", func(b *Boundary) { b.Source.Kind = "ftp" }, "unknown source.kind"},
		{"file without path", func(b *Boundary) { b.Source.Kind = SourceFile }, "source.path"},
		{"http without url", func(b *Boundary) { b.Source.Kind = SourceHTTP }, "source.url"},
		{"redis without key", func(b *Boundary) {
			b.Source = Source{Kind: SourceRedis, Addr: "x"}
		}, "source.key"},
		{"etcd without endpoints", func(b *Boundary) {
			b.Source = Source{Kind: SourceEtcd, Key: "k"}
		}, "source.endpoints"},
		{"mongo partial", func(b *Boundary) {
			b.Source = Source{Kind: SourceMongo, URI: "mongodb://x"}
		}, "uri/database/collection/id"},
		{"configmap partial", func(b *Boundary) {
			b.Source = Source{Kind: SourceConfigMap, Name: "cm"}
		}, "name/key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := DefaultBoundary()
			tt.mutate(&b)
			err := b.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "b.yaml", "retries: -2\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}
