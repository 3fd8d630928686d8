package xlazy

import "errors"

var (
	// ErrNilLoader 表示加载函数为 nil。
	ErrNilLoader = errors.New("xlazy: nil loader")

	// ErrNilConsumer 表示消费函数为 nil。
	ErrNilConsumer = errors.New("xlazy: nil consumer")

	// ErrClosed 表示边界已关闭（宿主已卸载）。
	ErrClosed = errors.New("xlazy: boundary closed")
)
