package xview

import (
	"fmt"
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoSize 每个解析器记忆的工厂结果上限。
const DefaultMemoSize = 64

type memoKey struct {
	version uint64
	props   any
}

// Resolver 按覆盖标签解析视图，并发安全。
type Resolver[P any] struct {
	mu       sync.Mutex
	override Override[P]
	version  uint64
	fallback func(P) View
	key      func(P) any
	memo     *lru.Cache[memoKey, View]
}

// NewResolver 创建解析器。
//
// fallback 在覆盖为 Unset 时构建默认视图；key 把参数映射为记忆键，
// nil 时所有参数共享同一个键。
func NewResolver[P any](o Override[P], fallback func(P) View, key func(P) any) *Resolver[P] {
	memo, err := lru.New[memoKey, View](DefaultMemoSize)
	if err != nil {
		// 只有 size ≤ 0 才会失败
		panic(fmt.Sprintf("xview: %v", err))
	}
	if key == nil {
		key = func(P) any { return struct{}{} }
	}
	return &Resolver[P]{
		override: o,
		fallback: fallback,
		key:      key,
		memo:     memo,
	}
}

// Set 替换覆盖，身份随之改变，旧的记忆结果作废。
func (r *Resolver[P]) Set(o Override[P]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = o
	r.version++
	r.memo.Purge()
}

// Override 返回当前覆盖。
func (r *Resolver[P]) Override() Override[P] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.override
}

// Resolve 返回 props 对应的视图。
//
// 工厂在锁外执行，可以回调解析器；并发的首次解析可能各自构建一次，
// 先写入记忆的结果胜出，所有调用方拿到同一个视图。
func (r *Resolver[P]) Resolve(props P) View {
	r.mu.Lock()
	o, version, fallback := r.override, r.version, r.fallback
	r.mu.Unlock()

	switch o.kind {
	case KindInstance:
		return o.view
	case KindFactory:
		return r.memoized(version, props, o.factory)
	default:
		if fallback == nil {
			return Text("")
		}
		return r.memoized(version, props, fallback)
	}
}

func (r *Resolver[P]) memoized(version uint64, props P, build func(P) View) View {
	k := memoKey{version: version, props: comparableKey(r.key(props))}
	if v, ok := r.memo.Get(k); ok {
		return v
	}
	v := build(props)
	if v == nil {
		v = Text("")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// 构建期间覆盖已被替换，结果只用于本次渲染
	if r.version != version {
		return v
	}
	if prev, ok := r.memo.Get(k); ok {
		return prev
	}
	r.memo.Add(k, v)
	return v
}

// comparableKey 保证记忆键可比较，不可比较的值退化为其类型与格式化文本。
func comparableKey(v any) any {
	if v == nil {
		return nil
	}
	if reflect.TypeOf(v).Comparable() {
		return v
	}
	return fmt.Sprintf("%T:%v", v, v)
}
