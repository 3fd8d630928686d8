// Package schedtest 提供手动推进的定时设施，用于确定性地测试重试时序。
package schedtest

import (
	"sort"
	"sync"
	"time"

	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

var _ xloader.Scheduler = (*Scheduler)(nil)

// Scheduler 手动时钟。AfterFunc 只登记任务并记录延迟，
// 任务在 Advance 越过其到期时间或 FireAll 时执行。
type Scheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*Timer
	delays  []time.Duration
}

// New 创建手动时钟。
func New() *Scheduler {
	return &Scheduler{}
}

// Timer 手动时钟上的任务。
type Timer struct {
	s       *Scheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// AfterFunc 实现 xloader.Scheduler。
func (s *Scheduler) AfterFunc(d time.Duration, f func()) xloader.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &Timer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.pending = append(s.pending, t)
	s.delays = append(s.delays, d)
	return t
}

// Stop 实现 xloader.Timer。
func (t *Timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.s.removeLocked(t)
	return true
}

func (s *Scheduler) removeLocked(t *Timer) {
	for idx, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
			return
		}
	}
}

// Advance 推进时钟 d，按到期顺序执行到期任务。
// 任务在不持有时钟锁的情况下执行，任务内注册的新任务也参与本次推进。
func (s *Scheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	fired := 0
	for {
		t := s.popDue(target)
		if t == nil {
			break
		}
		t.f()
		fired++
	}

	s.mu.Lock()
	if s.now < target {
		s.now = target
	}
	s.mu.Unlock()
	return fired
}

// FireAll 立即执行当前全部待执行任务（不包括执行期间新注册的任务）。
func (s *Scheduler) FireAll() int {
	s.mu.Lock()
	due := append([]*Timer(nil), s.pending...)
	s.mu.Unlock()

	fired := 0
	for _, t := range due {
		s.mu.Lock()
		if t.stopped || t.fired {
			s.mu.Unlock()
			continue
		}
		t.fired = true
		s.removeLocked(t)
		if s.now < t.at {
			s.now = t.at
		}
		s.mu.Unlock()
		t.f()
		fired++
	}
	return fired
}

func (s *Scheduler) popDue(target time.Duration) *Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.pending, func(a, b int) bool {
		if s.pending[a].at != s.pending[b].at {
			return s.pending[a].at < s.pending[b].at
		}
		return s.pending[a].seq < s.pending[b].seq
	})
	if len(s.pending) == 0 || s.pending[0].at > target {
		return nil
	}
	t := s.pending[0]
	s.pending = s.pending[1:]
	t.fired = true
	s.now = t.at
	return t
}

// Delays 返回按注册顺序记录的全部延迟。
func (s *Scheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// Pending 返回待执行任务数。
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Now 返回手动时钟的当前时间（相对起点）。
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
