package xview

// ErrorProps 错误视图的参数。
type ErrorProps struct {
	Err error
	// Phase 失败阶段（load / consume）。
	Phase string
	// Reset 重置入口，调用后进入边界的重置流程。
	Reset func()
	// ResetPath 宿主暴露的重置地址，非空时默认视图渲染重试表单。
	ResetPath string
}

type errorKey struct {
	err   any
	phase string
	path  string
}

// LoadingResolver 加载视图解析器，解析不需要参数。
type LoadingResolver struct {
	r *Resolver[struct{}]
}

// NewLoadingResolver 创建加载视图解析器，Unset 时使用 DefaultLoading。
func NewLoadingResolver(o Override[struct{}]) *LoadingResolver {
	return &LoadingResolver{r: NewResolver(o, func(struct{}) View { return DefaultLoading() }, nil)}
}

// Resolve 返回加载视图。
func (l *LoadingResolver) Resolve() View {
	return l.r.Resolve(struct{}{})
}

// Set 替换覆盖。
func (l *LoadingResolver) Set(o Override[struct{}]) {
	l.r.Set(o)
}

// ErrorResolver 错误视图解析器。
type ErrorResolver struct {
	r *Resolver[ErrorProps]
}

// NewErrorResolver 创建错误视图解析器，Unset 时使用 DefaultError。
// 记忆键为（错误，阶段，重置地址），Reset 函数不参与。
func NewErrorResolver(o Override[ErrorProps]) *ErrorResolver {
	key := func(p ErrorProps) any {
		return errorKey{err: comparableKey(p.Err), phase: p.Phase, path: p.ResetPath}
	}
	return &ErrorResolver{r: NewResolver(o, DefaultError, key)}
}

// Resolve 返回错误视图。
func (e *ErrorResolver) Resolve(p ErrorProps) View {
	return e.r.Resolve(p)
}

// Set 替换覆盖。
func (e *ErrorResolver) Set(o Override[ErrorProps]) {
	e.r.Set(o)
}

// LoadingOverride 是加载视图覆盖的类型别名，便于调用方书写。
type LoadingOverride = Override[struct{}]

// ErrorOverride 是错误视图覆盖的类型别名。
type ErrorOverride = Override[ErrorProps]

// LoadingView 用预构建视图覆盖加载视图。
func LoadingView(v View) LoadingOverride {
	return Instance[struct{}](v)
}

// LoadingFactory 用工厂覆盖加载视图。
func LoadingFactory(f func() View) LoadingOverride {
	if f == nil {
		return Unset[struct{}]()
	}
	return Factory(func(struct{}) View { return f() })
}

// ErrorView 用预构建视图覆盖错误视图。
func ErrorView(v View) ErrorOverride {
	return Instance[ErrorProps](v)
}

// ErrorFactory 用工厂覆盖错误视图。
func ErrorFactory(f func(ErrorProps) View) ErrorOverride {
	return Factory(f)
}
