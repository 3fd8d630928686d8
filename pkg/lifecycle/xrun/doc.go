// Package xrun 管理进程内多个服务的并发运行与协调关闭。
//
// 基于 golang.org/x/sync/errgroup：任一服务出错或收到终止信号时，
// 所有服务的 context 被取消，[Group.Wait] 返回第一个错误或显式取消原因。
//
//	err := xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithLogger(logger)},
//	    xrun.HTTPServer(server, 5*time.Second),
//	    xrun.Blocking(watcher.Start, watcher.Stop),
//	    xrun.OnDone(boundary.Close),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常退出
//	}
package xrun
