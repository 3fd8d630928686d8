package xview

import (
	"context"
	"html/template"
	"io"
)

// View 可渲染的视图。
type View interface {
	Render(ctx context.Context, w io.Writer) error
}

// ViewFunc 将函数适配为 View。
type ViewFunc func(ctx context.Context, w io.Writer) error

// Render 实现 View。
func (f ViewFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// Text 返回输出固定文本的视图。
func Text(s string) View {
	return ViewFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// HTML 返回以 data 执行模板的视图。
func HTML(t *template.Template, data any) View {
	return ViewFunc(func(_ context.Context, w io.Writer) error {
		return t.Execute(w, data)
	})
}

var (
	loadingTemplate = template.Must(template.New("loading").Parse(
		`<div class="xlazy-loading" role="status" aria-busy="true">{{.}}</div>`))

	errorTemplate = template.Must(template.New("error").Parse(
		`<div class="xlazy-error" role="alert">` +
			`<p>{{.Message}}</p>` +
			`{{if .ResetPath}}<form method="post" action="{{.ResetPath}}">` +
			`<button type="submit">Retry</button></form>{{end}}` +
			`</div>`))
)

// DefaultLoading 内置加载视图。
func DefaultLoading() View {
	return HTML(loadingTemplate, "Loading…")
}

// DefaultError 内置错误视图。
func DefaultError(p ErrorProps) View {
	msg := "Something went wrong."
	if p.Err != nil {
		msg = p.Err.Error()
	}
	return HTML(errorTemplate, struct {
		Message   string
		ResetPath string
	}{msg, p.ResetPath})
}
