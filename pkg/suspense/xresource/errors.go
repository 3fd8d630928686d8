package xresource

import "errors"

var (
	// ErrSuspended 表示资源尚未结算。
	ErrSuspended = errors.New("xresource: suspended")

	// ErrNilRejection 表示以 nil 错误拒绝句柄，句柄会以此错误结算。
	ErrNilRejection = errors.New("xresource: rejected with nil error")
)

// SuspendedError 由 Pending 状态的 Read 返回，Done 在句柄结算后关闭。
type SuspendedError struct {
	Done <-chan struct{}
}

func (e *SuspendedError) Error() string {
	return ErrSuspended.Error()
}

// Unwrap 使 errors.Is(err, ErrSuspended) 成立。
func (e *SuspendedError) Unwrap() error {
	return ErrSuspended
}

// IsSuspended 报告 err 是否表示资源挂起。
func IsSuspended(err error) bool {
	return errors.Is(err, ErrSuspended)
}
