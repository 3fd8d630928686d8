package xkeys

import "sync"

// Mount 按挂载代际缓存消费方子树的状态。
//
// 代际变化时丢弃旧状态并调用 build 重建；同一代际内复用。
type Mount[S any] struct {
	mu    sync.Mutex
	build func(mountGen uint64) S
	gen   uint64
	state S
	built bool
}

// NewMount 创建 Mount，build 为 nil 时状态为零值。
func NewMount[S any](build func(mountGen uint64) S) *Mount[S] {
	return &Mount[S]{build: build}
}

// Get 返回 gen 代的子树状态，必要时重建。
func (m *Mount[S]) Get(gen uint64) S {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.built && m.gen == gen {
		return m.state
	}
	var state S
	if m.build != nil {
		state = m.build(gen)
	}
	m.state = state
	m.gen = gen
	m.built = true
	return state
}

// Generation 返回最近一次构建所用的挂载代际，尚未构建时 ok 为 false。
func (m *Mount[S]) Generation() (gen uint64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, m.built
}
