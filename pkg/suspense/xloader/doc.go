// Package xloader 实现单个加载实例的重试与取消状态机。
//
// 一个 [Instance] 对应一代加载器（loader generation），负责：
//
//   - 顺序发起加载尝试，每次尝试在独立 goroutine 中执行
//   - 第 n 次失败后通过 [Scheduler] 注册 BaseDelay × n 的定时器再发起下一次
//   - 尝试次数耗尽或遇到 xretry.PermanentError 时以最后一个错误拒绝句柄
//   - [Instance.Teardown] 同步拆除：置取消标记、停止全部定时器、取消加载 context
//
// 拆除之后到达的尝试结果被静默丢弃：不结算句柄、不注册定时器、不输出日志。
//
// 设计决策: 宿主是多 goroutine 的，实例状态（取消标记、计数器、定时器集合、结算）
// 由实例自身的互斥锁保护，等价于单一控制线程内的顺序执行。
package xloader
