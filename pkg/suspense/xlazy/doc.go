// Package xlazy 组装延迟加载边界：异步加载、自动重试、失败恢复。
//
// Boundary 把 xloader（重试状态机）、xkeys（两把身份钥匙）、
// xrecover（失败捕获与重置）和 xview（加载/错误视图）组合成宿主可直接渲染的单元。
//
// 基本用法：
//
//	b, err := xlazy.New(loader, func(ctx context.Context, w io.Writer, v Widget, m xlazy.Mount) error {
//	    return v.Render(ctx, w)
//	}, xlazy.WithRetries(3), xlazy.WithRetryDelay(time.Second))
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	status, err := b.Render(ctx, w)
//
// Render 的结果：
//   - StatusLoading: 资源未就绪，已输出加载视图
//   - StatusReady: 已输出消费方渲染结果
//   - StatusFailed: 重试耗尽或消费失败，已输出错误视图
//
// 错误视图中的重置入口调用 Boundary.Reset：拆除当前加载实例、
// 推进加载器代际与挂载代际，从第 1 次尝试重新开始。
//
// 没有挂起协议的宿主（CLI、批处理）可使用 Load 同步加载，重试语义相同。
package xlazy
