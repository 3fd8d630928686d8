package xkeys_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xlazy/internal/schedtest"
	"github.com/omeyang/xlazy/pkg/resilience/xretry"
	"github.com/omeyang/xlazy/pkg/suspense/xkeys"
	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	sched   *schedtest.Scheduler
	calls   atomic.Int32
	mu      sync.Mutex
	built   []*xloader.Instance[string]
	keyring *xkeys.Keyring[string]
}

func newHarness(loader xloader.Loader[string]) *harness {
	h := &harness{sched: schedtest.New()}
	h.keyring = xkeys.NewKeyring(func(gen uint64) *xloader.Instance[string] {
		inst := xloader.Start(gen, func(ctx context.Context) (string, error) {
			h.calls.Add(1)
			return loader(ctx)
		}, xretry.NewPolicy(3, time.Second), xloader.WithScheduler(h.sched))
		h.mu.Lock()
		h.built = append(h.built, inst)
		h.mu.Unlock()
		return inst
	})
	return h
}

func (h *harness) live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, inst := range h.built {
		if !inst.Cancelled() {
			n++
		}
	}
	return n
}

func failing(context.Context) (string, error) { return "", errors.New("down") }

func TestKeyring_FirstMount(t *testing.T) {
	h := newHarness(failing)
	defer func() { _ = h.keyring.Close() }()

	assert.Equal(t, xkeys.Generations{}, h.keyring.Generations())
	assert.Equal(t, uint64(0), h.keyring.Current().Generation())
	assert.Equal(t, 1, h.live())
}

func TestKeyring_RekeyOrderAndTeardown(t *testing.T) {
	h := newHarness(failing)
	defer func() { _ = h.keyring.Close() }()

	first := h.keyring.Current()
	require.Eventually(t, func() bool { return first.PendingTimers() == 1 }, time.Second, time.Millisecond)

	gens, err := h.keyring.Rekey()
	require.NoError(t, err)
	assert.Equal(t, xkeys.Generations{Loader: 1, Mount: 1}, gens)

	assert.True(t, first.Cancelled())
	assert.Zero(t, first.PendingTimers())

	second := h.keyring.Current()
	assert.NotSame(t, first, second)
	assert.Equal(t, uint64(1), second.Generation())
	assert.Equal(t, 1, h.live())
}

func TestKeyring_IndependentAdvance(t *testing.T) {
	h := newHarness(func(context.Context) (string, error) { return "ok", nil })
	defer func() { _ = h.keyring.Close() }()

	gens, err := h.keyring.AdvanceMount()
	require.NoError(t, err)
	assert.Equal(t, xkeys.Generations{Loader: 0, Mount: 1}, gens)
	assert.Equal(t, uint64(0), h.keyring.Current().Generation())

	gens, err = h.keyring.AdvanceLoader()
	require.NoError(t, err)
	assert.Equal(t, xkeys.Generations{Loader: 1, Mount: 1}, gens)
	assert.Equal(t, 1, h.live())
}

func TestKeyring_RapidRekeyKeepsOneLiveInstance(t *testing.T) {
	h := newHarness(failing)
	defer func() { _ = h.keyring.Close() }()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.keyring.Rekey()
		}()
	}
	wg.Wait()

	assert.Equal(t, xkeys.Generations{Loader: 8, Mount: 8}, h.keyring.Generations())
	assert.Equal(t, 1, h.live())
}

func TestKeyring_Close(t *testing.T) {
	h := newHarness(failing)
	require.NoError(t, h.keyring.Close())
	require.NoError(t, h.keyring.Close())
	assert.True(t, h.keyring.Closed())
	assert.Zero(t, h.live())

	_, err := h.keyring.Rekey()
	assert.ErrorIs(t, err, xkeys.ErrClosed)
	_, err = h.keyring.AdvanceLoader()
	assert.ErrorIs(t, err, xkeys.ErrClosed)
	_, err = h.keyring.AdvanceMount()
	assert.ErrorIs(t, err, xkeys.ErrClosed)
}

func TestKeyring_SetFactoryAppliesToNextGeneration(t *testing.T) {
	h := newHarness(failing)
	defer func() { _ = h.keyring.Close() }()

	h.keyring.SetFactory(nil)
	h.keyring.SetFactory(func(gen uint64) *xloader.Instance[string] {
		return xloader.Start(gen, failing, xretry.NewPolicy(7, time.Second), xloader.WithScheduler(h.sched))
	})
	assert.Equal(t, 3, h.keyring.Current().Policy().MaxAttempts)

	_, err := h.keyring.AdvanceLoader()
	require.NoError(t, err)
	assert.Equal(t, 7, h.keyring.Current().Policy().MaxAttempts)
}

func TestMount_RebuildsPerGeneration(t *testing.T) {
	var builds atomic.Int32
	m := xkeys.NewMount(func(gen uint64) []uint64 {
		builds.Add(1)
		return []uint64{gen}
	})

	_, ok := m.Generation()
	assert.False(t, ok)

	assert.Equal(t, []uint64{0}, m.Get(0))
	assert.Equal(t, []uint64{0}, m.Get(0))
	assert.Equal(t, int32(1), builds.Load())

	assert.Equal(t, []uint64{3}, m.Get(3))
	assert.Equal(t, int32(2), builds.Load())
	gen, ok := m.Generation()
	assert.True(t, ok)
	assert.Equal(t, uint64(3), gen)

	assert.Zero(t, xkeys.NewMount[int](nil).Get(1))
}
