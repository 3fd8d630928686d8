// Package xkeys 维护加载边界的两把身份钥匙：加载器代际与挂载代际。
//
// 加载器代际变化时，[Keyring] 同步拆除当前加载实例并以相同的加载函数与策略
// 重建一个全新实例（尝试计数归零）；挂载代际变化时，消费方子树的状态通过
// [Mount] 重建，与句柄状态无关。[Keyring.Rekey] 以固定顺序先推进加载器代际、
// 再推进挂载代际，重建的子树不会观察到旧实例。
package xkeys
