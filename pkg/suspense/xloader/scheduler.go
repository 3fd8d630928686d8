package xloader

import "time"

// Timer 已注册的定时任务。
type Timer interface {
	// Stop 取消尚未触发的任务，已触发或已取消时返回 false。
	Stop() bool
}

// Scheduler 宿主的定时设施。
//
// 实现不得在 AfterFunc 内同步调用 f：实例在持锁状态下注册定时器。
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler 基于进程时钟（time.AfterFunc）的默认实现。
type SystemScheduler struct{}

// AfterFunc 实现 Scheduler。
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
