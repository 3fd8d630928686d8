package xretry

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinearBackoff(t *testing.T) {
	t.Run("Basic", func(t *testing.T) {
		b := NewLinearBackoff(100*time.Millisecond, 50*time.Millisecond, time.Second)

		assert.Equal(t, 100*time.Millisecond, b.NextDelay(1))
		assert.Equal(t, 150*time.Millisecond, b.NextDelay(2))
		assert.Equal(t, 200*time.Millisecond, b.NextDelay(3))
	})

	t.Run("BaseTimesAttempt", func(t *testing.T) {
		b := NewLinearBackoff(time.Second, time.Second, time.Minute)

		assert.Equal(t, 1*time.Second, b.NextDelay(1))
		assert.Equal(t, 2*time.Second, b.NextDelay(2))
		assert.Equal(t, 5*time.Second, b.NextDelay(5))
	})

	t.Run("MaxDelayLimit", func(t *testing.T) {
		b := NewLinearBackoff(100*time.Millisecond, 100*time.Millisecond, 250*time.Millisecond)
		assert.Equal(t, 250*time.Millisecond, b.NextDelay(10))
	})

	t.Run("AttemptBelowOne", func(t *testing.T) {
		b := NewLinearBackoff(100*time.Millisecond, 100*time.Millisecond, time.Second)
		assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
		assert.Equal(t, 100*time.Millisecond, b.NextDelay(-3))
	})

	t.Run("NegativeInputs", func(t *testing.T) {
		b := NewLinearBackoff(-time.Second, -time.Second, -time.Second)
		assert.Equal(t, time.Duration(0), b.NextDelay(1))
		assert.Equal(t, time.Duration(0), b.NextDelay(7))
	})

	t.Run("NoOverflow", func(t *testing.T) {
		b := NewLinearBackoff(time.Hour, time.Hour, time.Duration(math.MaxInt64))
		assert.Equal(t, time.Duration(math.MaxInt64), b.NextDelay(math.MaxInt))
	})
}

func TestNoBackoff(t *testing.T) {
	b := NewNoBackoff()
	assert.Equal(t, time.Duration(0), b.NextDelay(1))
	assert.Equal(t, time.Duration(0), b.NextDelay(100))
}
