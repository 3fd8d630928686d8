// Package xresource 提供一次性结算的异步资源句柄。
//
// [Handle] 有三种状态：Pending、Resolved(v)、Rejected(err)。
// 第一次结算生效，之后的结算为空操作。结算能力 [Settler] 只交给创建者，
// 消费方只持有只读的 *Handle。
//
// # 挂起协议
//
// [Handle.Read] 在 Pending 时返回 *[SuspendedError]（errors.Is 匹配 [ErrSuspended]），
// 其中携带 Done 通道；宿主据此渲染加载视图并在通道关闭后重新读取。
// 没有挂起机制的宿主可直接使用 [Handle.Wait] 阻塞等待。
package xresource
