// Package suspense 提供延迟加载边界及其组成部分。
//
// 子包列表：
//   - xresource: 三态资源句柄，挂起协议的读取端
//   - xloader: 单代加载实例的重试与拆除状态机
//   - xkeys: 加载器代际与挂载代际两把身份钥匙
//   - xrecover: 失败捕获与重置
//   - xview: 加载视图与错误视图的覆盖和解析
//   - xlazy: 组装以上部分的边界
//   - xsource: 常见资源位置的加载函数
//   - xhost: HTTP 宿主
package suspense
