package xrun

import (
	"context"
	"os"
	"syscall"
)

// DefaultSignals 返回默认监听的终止信号。
func DefaultSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}
}

// 测试通过 context 注入信号，避免向进程发送真实信号。
type testSigChanKey struct{}

func testSigChan(ctx context.Context) <-chan os.Signal {
	c, _ := ctx.Value(testSigChanKey{}).(<-chan os.Signal)
	return c
}

func withTestSigChan(ctx context.Context, c <-chan os.Signal) context.Context {
	return context.WithValue(ctx, testSigChanKey{}, c)
}

// OnDone 返回一个服务函数：阻塞到 ctx 取消后执行 fn 并返回其错误。
//
// 用于把没有 ctx 参数的关闭动作（停止配置监视、关闭加载边界）
// 挂到 Group 的统一关闭流程上。
func OnDone(fn func() error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if fn == nil {
			return ErrNilFunc
		}
		<-ctx.Done()
		return fn()
	}
}

// Blocking 把阻塞式的 start 与对应的 stop 组合为服务函数。
//
// ctx 取消时调用 stop，start 返回后服务结束。
// 适用于 xconf.Watcher.Start / Stop 这类成对接口。
func Blocking(start func(), stop func() error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if start == nil || stop == nil {
			return ErrNilFunc
		}
		done := make(chan struct{})
		go func() {
			defer close(done)
			start()
		}()
		select {
		case <-ctx.Done():
			err := stop()
			<-done
			return err
		case <-done:
			return nil
		}
	}
}
