package xretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryer_Do(t *testing.T) {
	t.Run("SuccessOnFirstAttempt", func(t *testing.T) {
		r := NewRetryer()
		var attempts int

		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("SuccessAfterRetry", func(t *testing.T) {
		r := NewRetryer(
			WithRetryPolicy(NewFixedRetry(3)),
			WithBackoffPolicy(NewNoBackoff()),
		)
		var attempts int

		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("temporary error")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("FailAfterMaxAttempts", func(t *testing.T) {
		r := NewRetryer(
			WithRetryPolicy(NewFixedRetry(4)),
			WithBackoffPolicy(NewNoBackoff()),
		)
		var attempts int
		last := errors.New("persistent error")

		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return last
		})

		assert.ErrorIs(t, err, last)
		assert.Equal(t, 4, attempts)
	})

	t.Run("PermanentErrorNoRetry", func(t *testing.T) {
		r := NewRetryer(
			WithRetryPolicy(NewFixedRetry(5)),
			WithBackoffPolicy(NewNoBackoff()),
		)
		var attempts int

		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return NewPermanentError(errors.New("permanent"))
		})

		assert.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("NilGuards", func(t *testing.T) {
		var nilRetryer *Retryer
		assert.ErrorIs(t, nilRetryer.Do(context.Background(), func(context.Context) error { return nil }), ErrNilRetryer)
		assert.ErrorIs(t, NewRetryer().Do(context.Background(), nil), ErrNilFunc)
		//nolint:staticcheck // 验证 nil context 防御
		assert.ErrorIs(t, NewRetryer().Do(nil, func(context.Context) error { return nil }), ErrNilContext)
	})
}

func TestNewPolicyRetryer(t *testing.T) {
	t.Run("AlwaysFailingInvokesLimitTimes", func(t *testing.T) {
		for _, n := range []int{1, 2, 5} {
			r := NewPolicyRetryer(NewPolicy(n, 0))
			var attempts int
			_, err := DoWithResult(context.Background(), r, func(context.Context) (string, error) {
				attempts++
				return "", errors.New("down")
			})
			require.Error(t, err)
			assert.Equal(t, n, attempts)
		}
	})

	t.Run("ZeroAttemptsMeansSingleTry", func(t *testing.T) {
		r := NewPolicyRetryer(NewPolicy(0, 0))
		var attempts int
		err := r.Do(context.Background(), func(context.Context) error {
			attempts++
			return errors.New("down")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("OnRetryReportsLinearDelays", func(t *testing.T) {
		var delays []time.Duration
		var attemptsSeen []int
		r := NewPolicyRetryer(NewPolicy(3, time.Millisecond),
			WithOnRetry(func(attempt int, delay time.Duration, _ error) {
				attemptsSeen = append(attemptsSeen, attempt)
				delays = append(delays, delay)
			}),
		)

		var calls int
		got, err := DoWithResult(context.Background(), r, func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("flaky")
			}
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, []int{1, 2}, attemptsSeen)
		assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, delays)
	})
}

func TestRetryer_Accessors(t *testing.T) {
	var nilRetryer *Retryer
	assert.Nil(t, nilRetryer.RetryPolicy())
	assert.Nil(t, nilRetryer.BackoffPolicy())

	r := NewPolicyRetryer(NewPolicy(2, time.Second))
	assert.Equal(t, 2, r.RetryPolicy().MaxAttempts())
	assert.Equal(t, 2*time.Second, r.BackoffPolicy().NextDelay(2))
}

func TestToDelayType_Nil(t *testing.T) {
	fn := ToDelayType(nil)
	assert.Equal(t, time.Duration(0), fn(3, nil, nil))
}
