package xview

import "strconv"

// Kind 覆盖的标签。
type Kind int

const (
	// KindUnset 未设置，使用默认视图。
	KindUnset Kind = iota
	// KindInstance 预构建的视图。
	KindInstance
	// KindFactory 由参数构建视图的工厂。
	KindFactory
)

func (k Kind) String() string {
	switch k {
	case KindUnset:
		return "unset"
	case KindInstance:
		return "instance"
	case KindFactory:
		return "factory"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Override 视图覆盖，P 为工厂参数类型。零值为 Unset。
type Override[P any] struct {
	kind    Kind
	view    View
	factory func(P) View
}

// Unset 返回未设置的覆盖。
func Unset[P any]() Override[P] {
	return Override[P]{}
}

// Instance 返回预构建视图的覆盖，nil 视图等价于 Unset。
func Instance[P any](v View) Override[P] {
	if v == nil {
		return Override[P]{}
	}
	return Override[P]{kind: KindInstance, view: v}
}

// Factory 返回工厂覆盖，nil 工厂等价于 Unset。
func Factory[P any](f func(P) View) Override[P] {
	if f == nil {
		return Override[P]{}
	}
	return Override[P]{kind: KindFactory, factory: f}
}

// Kind 返回覆盖的标签。
func (o Override[P]) Kind() Kind {
	return o.kind
}
