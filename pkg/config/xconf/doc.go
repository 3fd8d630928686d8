// Package xconf 提供懒加载边界的配置加载、校验与热重载，基于 koanf 实现。
//
// # 两层接口
//
//   - [Config]：通用的文件/字节配置（YAML、JSON），[Config.Client] 暴露 koanf 实例
//   - [Boundary]：边界的领域配置（重试次数、基础延迟、日志、数据源），
//     通过 [Load]、[FromBytes] 在默认值之上解码并 [Boundary.Validate]
//
// # 重载与指纹
//
// [Config.Reload] 用 xxhash 计算文件内容指纹，内容不变时跳过解析。
// [Watch] 基于 fsnotify 监视配置文件所在目录，内置防抖；
// 只有内容真正变化（或重载失败）才会触发回调。
//
// 新配置只作用于下一代加载实例：正在运行的实例的重试策略在创建时固定。
//
// # 时长字段
//
// retry_delay、source.timeout 使用 Go duration 字符串，例如 "1s"、"1500ms"。
package xconf
