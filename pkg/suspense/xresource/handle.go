package xresource

import (
	"context"
	"strconv"
	"sync"
)

// State 句柄状态。
type State int

const (
	// StatePending 尚未结算。
	StatePending State = iota
	// StateResolved 已成功结算。
	StateResolved
	// StateRejected 已失败结算。
	StateRejected
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateRejected:
		return "rejected"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Handle 一次性结算的异步资源句柄，并发安全。
type Handle[T any] struct {
	mu    sync.Mutex
	state State
	value T
	err   error
	done  chan struct{}
}

// Settler 句柄的结算能力，只应由创建者持有。
type Settler[T any] struct {
	h *Handle[T]
}

// New 创建 Pending 状态的句柄及其结算能力。
func New[T any]() (*Handle[T], Settler[T]) {
	h := &Handle[T]{done: make(chan struct{})}
	return h, Settler[T]{h: h}
}

// Resolved 返回已以 v 结算的句柄。
func Resolved[T any](v T) *Handle[T] {
	h, s := New[T]()
	s.Resolve(v)
	return h
}

// Rejected 返回已以 err 结算的句柄。
func Rejected[T any](err error) *Handle[T] {
	h, s := New[T]()
	s.Reject(err)
	return h
}

// Resolve 以 v 结算句柄，已结算时返回 false。
func (s Settler[T]) Resolve(v T) bool {
	return s.h.settle(StateResolved, v, nil)
}

// Reject 以 err 结算句柄，已结算时返回 false。
// nil err 会被替换为 ErrNilRejection。
func (s Settler[T]) Reject(err error) bool {
	if err == nil {
		err = ErrNilRejection
	}
	var zero T
	return s.h.settle(StateRejected, zero, err)
}

func (h *Handle[T]) settle(state State, v T, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StatePending {
		return false
	}
	h.state = state
	h.value = v
	h.err = err
	close(h.done)
	return true
}

// State 返回当前状态。
func (h *Handle[T]) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done 返回句柄结算后关闭的通道。
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Read 按挂起协议读取资源。
//
// Pending 返回 *SuspendedError；Resolved 返回值；Rejected 返回结算错误。
func (h *Handle[T]) Read() (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.state {
	case StateResolved:
		return h.value, nil
	case StateRejected:
		var zero T
		return zero, h.err
	default:
		var zero T
		return zero, &SuspendedError{Done: h.done}
	}
}

// Wait 阻塞到句柄结算或 ctx 结束。
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.Read()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
