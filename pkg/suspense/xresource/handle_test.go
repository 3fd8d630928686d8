package xresource_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xlazy/pkg/suspense/xresource"
)

func TestHandle_PendingSuspends(t *testing.T) {
	h, _ := xresource.New[string]()
	assert.Equal(t, xresource.StatePending, h.State())

	_, err := h.Read()
	require.ErrorIs(t, err, xresource.ErrSuspended)
	assert.True(t, xresource.IsSuspended(err))

	var susp *xresource.SuspendedError
	require.ErrorAs(t, err, &susp)
	assert.Equal(t, h.Done(), susp.Done)
	assert.Equal(t, "xresource: suspended", susp.Error())
}

func TestHandle_SettleOnce(t *testing.T) {
	h, s := xresource.New[int]()
	assert.True(t, s.Resolve(1))
	assert.False(t, s.Resolve(2))
	assert.False(t, s.Reject(errors.New("late")))

	v, err := h.Read()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, xresource.StateResolved, h.State())

	select {
	case <-h.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestHandle_Reject(t *testing.T) {
	boom := errors.New("boom")
	h := xresource.Rejected[int](boom)
	_, err := h.Read()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "rejected", h.State().String())

	h = xresource.Rejected[int](nil)
	_, err = h.Read()
	assert.ErrorIs(t, err, xresource.ErrNilRejection)
}

func TestHandle_ConcurrentSettle(t *testing.T) {
	h, s := xresource.New[int]()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Resolve(i) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, xresource.StateResolved, h.State())
}

func TestHandle_Wait(t *testing.T) {
	h, s := xresource.New[string]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Resolve("ok")
	}()
	v, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	pending, _ := xresource.New[string]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = pending.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, "resolved", xresource.Resolved(1).State().String())
	assert.Equal(t, "State(7)", xresource.State(7).String())
}
