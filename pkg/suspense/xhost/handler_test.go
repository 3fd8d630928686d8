package xhost_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xlazy/internal/schedtest"
	"github.com/omeyang/xlazy/pkg/suspense/xhost"
	"github.com/omeyang/xlazy/pkg/suspense/xlazy"
	"github.com/omeyang/xlazy/pkg/suspense/xresource"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func consume(_ context.Context, w io.Writer, v string, _ xlazy.Mount) error {
	_, err := io.WriteString(w, "<p>"+v+"</p>")
	return err
}

func waitSettled(t *testing.T, s *schedtest.Scheduler, b *xlazy.Boundary[string]) {
	t.Helper()
	require.Eventually(t, func() bool {
		if s.Pending() > 0 {
			s.FireAll()
		}
		return b.State() != xresource.StatePending
	}, 5*time.Second, time.Millisecond)
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHandler_Lifecycle(t *testing.T) {
	s := schedtest.New()
	var calls atomic.Int32
	gate := make(chan struct{})
	b, err := xlazy.New(func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			select {
			case <-gate:
			case <-ctx.Done():
			}
			return "", errors.New("origin down")
		}
		return "profile", nil
	}, consume,
		xlazy.WithRetries(1),
		xlazy.WithScheduler(s),
		xlazy.WithName("profile"),
		xlazy.WithResetPath(xhost.ResetPath("/widgets/profile")),
	)
	require.NoError(t, err)
	defer b.Close()
	h := xhost.New(b, xhost.WithPath("/widgets/profile/"))

	rec := do(h, http.MethodGet, "/widgets/profile")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "xlazy-loading")
	assert.NotEmpty(t, rec.Header().Get(xhost.HeaderRequestID))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	close(gate)
	waitSettled(t, s, b)

	rec = do(h, http.MethodGet, "/widgets/profile/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "origin down")
	assert.Contains(t, rec.Body.String(), `action="/widgets/profile/reset"`)

	rec = do(h, http.MethodPost, "/widgets/profile/reset")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/widgets/profile", rec.Header().Get("Location"))

	waitSettled(t, s, b)
	rec = do(h, http.MethodGet, "/widgets/profile")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>profile</p>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = do(h, http.MethodHead, "/widgets/profile")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandler_Routing(t *testing.T) {
	b, err := xlazy.New(func(context.Context) (string, error) { return "x", nil }, consume)
	require.NoError(t, err)
	defer b.Close()
	h := xhost.New(b)

	rec := do(h, http.MethodPost, "/")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))

	rec = do(h, http.MethodGet, "/reset")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(h, http.MethodGet, "/elsewhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(xhost.HeaderRequestID, "req-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "req-1", rr.Header().Get(xhost.HeaderRequestID))
}

func TestHandler_ClosedBoundary(t *testing.T) {
	b, err := xlazy.New(func(context.Context) (string, error) { return "x", nil }, consume)
	require.NoError(t, err)
	require.NoError(t, b.Close())

	rec := do(xhost.New(b), http.MethodGet, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestResetPath(t *testing.T) {
	assert.Equal(t, "/reset", xhost.ResetPath("/"))
	assert.Equal(t, "/reset", xhost.ResetPath(""))
	assert.Equal(t, "/a/b/reset", xhost.ResetPath("a/b/"))
	assert.True(t, strings.HasSuffix(xhost.ResetPath("/w"), "/reset"))
}
