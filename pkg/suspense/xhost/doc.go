// Package xhost 把延迟加载边界挂到 HTTP 上。
//
// 每个 GET 渲染一次边界，状态码反映视图类别：
//   - 200: 资源就绪，输出消费方渲染结果
//   - 202: 资源加载中，输出加载视图
//   - 500: 重试耗尽或消费失败，输出错误视图
//
// POST <path>/reset 调用 Boundary.Reset，随后 303 重定向回 <path>。
// 默认错误视图中的重试按钮提交到同一地址：
//
//	b, _ := xlazy.New(loader, consume, xlazy.WithResetPath(xhost.ResetPath("/widgets/profile")))
//	mux.Handle("/widgets/profile/", xhost.New(b, xhost.WithPath("/widgets/profile")))
package xhost
