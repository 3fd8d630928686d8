package xview_test

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xlazy/pkg/suspense/xview"
)

func render(t *testing.T, v xview.View) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, v.Render(context.Background(), &buf))
	return buf.String()
}

func TestOverride_Tags(t *testing.T) {
	assert.Equal(t, xview.KindUnset, xview.Unset[int]().Kind())
	assert.Equal(t, xview.KindUnset, xview.Instance[int](nil).Kind())
	assert.Equal(t, xview.KindUnset, xview.Factory[int](nil).Kind())
	assert.Equal(t, xview.KindInstance, xview.Instance[int](xview.Text("x")).Kind())
	assert.Equal(t, xview.KindFactory, xview.Factory(func(int) xview.View { return nil }).Kind())
	assert.Equal(t, "factory", xview.KindFactory.String())
	assert.Equal(t, "Kind(5)", xview.Kind(5).String())

	var zero xview.Override[int]
	assert.Equal(t, xview.KindUnset, zero.Kind())
}

func TestLoadingResolver(t *testing.T) {
	l := xview.NewLoadingResolver(xview.Unset[struct{}]())
	assert.Contains(t, render(t, l.Resolve()), `class="xlazy-loading"`)

	l.Set(xview.LoadingView(xview.Text("spinner")))
	assert.Equal(t, "spinner", render(t, l.Resolve()))

	var calls atomic.Int32
	l.Set(xview.LoadingFactory(func() xview.View {
		calls.Add(1)
		return xview.Text("built")
	}))
	for range 5 {
		assert.Equal(t, "built", render(t, l.Resolve()))
	}
	assert.Equal(t, int32(1), calls.Load(), "factory invoked once per override identity")

	// 替换覆盖改变身份
	l.Set(xview.LoadingFactory(func() xview.View {
		calls.Add(1)
		return xview.Text("again")
	}))
	assert.Equal(t, "again", render(t, l.Resolve()))
	assert.Equal(t, int32(2), calls.Load())

	l.Set(xview.LoadingFactory(nil))
	assert.Contains(t, render(t, l.Resolve()), "Loading")
}

func TestErrorResolver_DefaultView(t *testing.T) {
	e := xview.NewErrorResolver(xview.Unset[xview.ErrorProps]())
	out := render(t, e.Resolve(xview.ErrorProps{
		Err:       errors.New("<db> down"),
		ResetPath: "/widgets/profile/reset",
	}))
	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "&lt;db&gt; down", "message is escaped")
	assert.Contains(t, out, `action="/widgets/profile/reset"`)

	out = render(t, e.Resolve(xview.ErrorProps{}))
	assert.Contains(t, out, "Something went wrong.")
	assert.NotContains(t, out, "<form")
}

func TestErrorResolver_FactoryMemoizedPerProps(t *testing.T) {
	var calls atomic.Int32
	var resets atomic.Int32
	e := xview.NewErrorResolver(xview.ErrorFactory(func(p xview.ErrorProps) xview.View {
		calls.Add(1)
		// 工厂拿到的重置入口路由到边界
		p.Reset()
		return xview.Text("failed: " + p.Err.Error())
	}))

	first := errors.New("first")
	reset := func() { resets.Add(1) }
	for range 3 {
		assert.Equal(t, "failed: first", render(t, e.Resolve(xview.ErrorProps{Err: first, Reset: reset})))
	}
	assert.Equal(t, int32(1), calls.Load())

	second := errors.New("second")
	assert.Equal(t, "failed: second", render(t, e.Resolve(xview.ErrorProps{Err: second, Reset: reset})))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(2), resets.Load())

	e.Set(xview.ErrorView(xview.Text("static")))
	assert.Equal(t, "static", render(t, e.Resolve(xview.ErrorProps{Err: first})))
}

// sliceErr 不可比较的错误类型
type sliceErr struct{ parts []string }

func (e sliceErr) Error() string { return "slice" }

func TestErrorResolver_NonComparableError(t *testing.T) {
	var calls atomic.Int32
	e := xview.NewErrorResolver(xview.ErrorFactory(func(xview.ErrorProps) xview.View {
		calls.Add(1)
		return xview.Text("x")
	}))
	err := sliceErr{parts: []string{"a"}}
	assert.NotPanics(t, func() {
		e.Resolve(xview.ErrorProps{Err: err})
		e.Resolve(xview.ErrorProps{Err: err})
	})
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolver_NilResults(t *testing.T) {
	r := xview.NewResolver(xview.Factory(func(int) xview.View { return nil }), nil, nil)
	assert.Empty(t, render(t, r.Resolve(1)))
	assert.Equal(t, xview.KindFactory, r.Override().Kind())

	r = xview.NewResolver(xview.Unset[int](), nil, nil)
	assert.Empty(t, render(t, r.Resolve(1)))
}

func TestResolver_FactoryRunsOutsideLock(t *testing.T) {
	var r *xview.Resolver[int]
	release := make(chan struct{})
	r = xview.NewResolver(xview.Factory(func(n int) xview.View {
		// 工厂回调解析器
		_ = r.Override()
		if n == 1 {
			<-release
		}
		return xview.Text("ok")
	}), nil, func(n int) any { return n })

	slow := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_ = r.Resolve(1).Render(context.Background(), &buf)
		slow <- buf.String()
	}()

	// 慢工厂构建期间，其他参数的解析不被阻塞
	fast := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_ = r.Resolve(2).Render(context.Background(), &buf)
		fast <- buf.String()
	}()
	select {
	case out := <-fast:
		assert.Equal(t, "ok", out)
	case <-time.After(5 * time.Second):
		t.Fatal("resolve blocked behind a slow factory")
	}

	close(release)
	assert.Equal(t, "ok", <-slow)
}

func TestResolver_SetDuringBuildNotMemoized(t *testing.T) {
	var r *xview.Resolver[int]
	var calls atomic.Int32
	r = xview.NewResolver(xview.Factory(func(int) xview.View {
		if calls.Add(1) == 1 {
			r.Set(xview.Factory(func(int) xview.View { return xview.Text("new") }))
		}
		return xview.Text("old")
	}), nil, nil)

	assert.Equal(t, "old", render(t, r.Resolve(0)), "the in-flight render keeps its build")
	assert.Equal(t, "new", render(t, r.Resolve(0)), "stale build is never memoized")
}

func TestHTML(t *testing.T) {
	tmpl := template.Must(template.New("t").Parse(`<b>{{.}}</b>`))
	assert.Equal(t, "<b>&lt;i&gt;</b>", render(t, xview.HTML(tmpl, "<i>")))
}
