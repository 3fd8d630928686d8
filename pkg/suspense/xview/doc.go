// Package xview 解析加载视图与错误视图。
//
// 视图覆盖用显式的标签变体 [Override] 表示：Unset（使用内置默认视图）、
// Instance（预构建的视图）或 Factory（由参数构建视图的工厂）。解析按标签分派，
// 不在运行时检查值的类型。
//
// 工厂结果按（覆盖身份，参数键）记忆：同一覆盖在参数不变时不会被重复调用，
// 只有通过 Set 替换覆盖才会改变身份。记忆表是有界 LRU（golang-lru）。
//
// 默认视图基于 html/template，错误视图包含一个提交到 ResetPath 的重试表单。
package xview
