// Package xrecover 把宿主的失败捕获协议接到加载边界的重建机制上。
//
// [Bridge] 实现 [Boundary]：
//
//   - Capture 先无条件调用 OnError，再记录失败状态，返回包含重置入口的 [Decision]
//   - 不做任何自动重置；重置只由显式的外部动作触发
//   - Reset 清除失败状态、调用 Rekeyer.Rekey（先加载器代际、后挂载代际），
//     然后调用 OnRetry
//
// 失败分两类：[PhaseLoad] 是重试耗尽后的加载失败，[PhaseConsume] 是已加载
// 资源在消费（渲染）时的失败，后者不会被重试。
package xrecover
