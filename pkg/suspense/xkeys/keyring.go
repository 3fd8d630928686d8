package xkeys

import (
	"errors"
	"sync"

	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

// ErrClosed 表示 Keyring 已关闭。
var ErrClosed = errors.New("xkeys: keyring closed")

// Generations 两把钥匙的当前值，均从 0 开始单调递增。
type Generations struct {
	Loader uint64
	Mount  uint64
}

// Factory 为指定加载器代际构造加载实例。
type Factory[T any] func(loaderGen uint64) *xloader.Instance[T]

// Keyring 持有当前加载实例与代际，并发安全。
//
// 任一时刻每个加载器代际只有一个存活实例。
type Keyring[T any] struct {
	mu      sync.Mutex
	factory Factory[T]
	gens    Generations
	current *xloader.Instance[T]
	closed  bool
}

// NewKeyring 创建 Keyring 并立即构造第 0 代实例（首次挂载）。
func NewKeyring[T any](factory Factory[T]) *Keyring[T] {
	return &Keyring[T]{
		factory: factory,
		current: factory(0),
	}
}

// Current 返回当前加载实例。
func (k *Keyring[T]) Current() *xloader.Instance[T] {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current
}

// Generations 返回当前代际。
func (k *Keyring[T]) Generations() Generations {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.gens
}

// Snapshot 在同一把锁内读取代际与当前实例，二者总是对应同一次重置。
func (k *Keyring[T]) Snapshot() (Generations, *xloader.Instance[T]) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.gens, k.current
}

// AdvanceLoader 拆除当前实例、推进加载器代际并构造新实例。
func (k *Keyring[T]) AdvanceLoader() (Generations, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return k.gens, ErrClosed
	}
	k.advanceLoaderLocked()
	return k.gens, nil
}

// AdvanceMount 推进挂载代际。
func (k *Keyring[T]) AdvanceMount() (Generations, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return k.gens, ErrClosed
	}
	k.gens.Mount++
	return k.gens, nil
}

// Rekey 在同一把锁内先推进加载器代际，再推进挂载代际。
func (k *Keyring[T]) Rekey() (Generations, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return k.gens, ErrClosed
	}
	k.advanceLoaderLocked()
	k.gens.Mount++
	return k.gens, nil
}

// SetFactory 替换实例构造函数，只作用于之后的加载器代际。
func (k *Keyring[T]) SetFactory(f Factory[T]) {
	if f == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.factory = f
}

func (k *Keyring[T]) advanceLoaderLocked() {
	// 先拆除再构造，同一时刻不会有两个存活实例
	k.current.Teardown()
	k.gens.Loader++
	k.current = k.factory(k.gens.Loader)
}

// Close 拆除当前实例（宿主卸载），幂等。
func (k *Keyring[T]) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	k.current.Teardown()
	return nil
}

// Closed 报告 Keyring 是否已关闭。
func (k *Keyring[T]) Closed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.closed
}
