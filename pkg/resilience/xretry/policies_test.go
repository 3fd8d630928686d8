package xretry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRetryPolicy(t *testing.T) {
	t.Run("MinimumOne", func(t *testing.T) {
		assert.Equal(t, 1, NewFixedRetry(0).MaxAttempts())
		assert.Equal(t, 1, NewFixedRetry(-1).MaxAttempts())
	})

	t.Run("PermanentErrorStops", func(t *testing.T) {
		p := NewFixedRetry(5)
		err := NewPermanentError(errors.New("bad input"))
		assert.False(t, p.ShouldRetry(context.Background(), 1, err))
	})

	t.Run("CanceledContextStops", func(t *testing.T) {
		p := NewFixedRetry(5)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, p.ShouldRetry(ctx, 1, errors.New("x")))
	})
}

func TestNeverRetryPolicy(t *testing.T) {
	p := NewNeverRetry()
	assert.Equal(t, 1, p.MaxAttempts())
	assert.False(t, p.ShouldRetry(context.Background(), 1, errors.New("x")))
}
