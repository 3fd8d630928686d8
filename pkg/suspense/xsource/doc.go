// Package xsource 提供常见资源位置的加载函数。
//
// 每个构造函数返回 xloader.Loader[[]byte]：一次调用只做一次读取，
// 失败按一次失败的尝试交给边界的重试策略处理，这里不做任何重试。
//
//   - File: 本地文件
//   - HTTP: 单次 GET，非 2xx 视为失败，4xx（408/429 除外）标记为永久错误
//   - Redis: go-redis/v9 GET
//   - Etcd: etcd client/v3 Get
//   - Mongo: 按 _id 读取文档的一个字段
//   - ConfigMap: Kubernetes ConfigMap 的一个键
//   - Breaker: 用 gobreaker 熔断器包装任意加载函数，熔断期间快速失败
//
// 键不存在统一返回包装了 ErrNotFound 的错误。
//
// 按配置构建：
//
//	loader, closer, err := xsource.FromConfig(cfg.Source)
//	if err != nil {
//	    return err
//	}
//	defer closer()
package xsource
