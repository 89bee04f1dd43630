package guest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestWaiter(probe func(ctx context.Context) bool) (*Waiter, *[]time.Duration) {
	var sleeps []time.Duration
	w := &Waiter{
		Interval: 2 * time.Second,
		Probe:    probe,
		Sleep:    func(d time.Duration) { sleeps = append(sleeps, d) },
	}
	return w, &sleeps
}

func TestWaitImmediateSuccessDoesNotSleep(t *testing.T) {
	attempts := 0
	w, sleeps := newTestWaiter(func(context.Context) bool {
		attempts++
		return true
	})

	ok := w.Wait(context.Background(), 120*time.Second)
	assert.True(t, ok)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *sleeps)
}

func TestWaitTimeoutAttemptCount(t *testing.T) {
	cases := []struct {
		timeout      time.Duration
		wantAttempts int
	}{
		{6 * time.Second, 3},
		{5 * time.Second, 3},
		{120 * time.Second, 60},
		{1 * time.Second, 1},
	}

	for _, tc := range cases {
		attempts := 0
		w, sleeps := newTestWaiter(func(context.Context) bool {
			attempts++
			return false
		})

		ok := w.Wait(context.Background(), tc.timeout)
		assert.False(t, ok)
		assert.Equal(t, tc.wantAttempts, attempts, "timeout %v", tc.timeout)

		var elapsed time.Duration
		for _, d := range *sleeps {
			elapsed += d
		}
		assert.GreaterOrEqual(t, elapsed, tc.timeout, "accumulated wait must cover the deadline")
	}
}

func TestWaitLateSuccess(t *testing.T) {
	attempts := 0
	w, sleeps := newTestWaiter(func(context.Context) bool {
		attempts++
		return attempts == 2
	})

	ok := w.Wait(context.Background(), 120*time.Second)
	assert.True(t, ok)
	assert.Equal(t, 2, attempts)
	assert.Len(t, *sleeps, 1, "one failed attempt means one interval slept")
}
