package xloader

import (
	"errors"
	"fmt"
)

// ErrNilLoader 表示加载函数为 nil，实例会立即以此错误拒绝。
var ErrNilLoader = errors.New("xloader: nil loader")

// PanicError 加载函数 panic 时的失败原因，按一次失败的尝试处理。
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("xloader: loader panicked: %v", e.Value)
}

// Unwrap 在 panic 值本身是 error 时返回它。
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
