package guest

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is the spacing between readiness probe attempts.
const DefaultPollInterval = 2 * time.Second

// Waiter polls a readiness probe until the guest answers or the deadline
// elapses. The probe and the sleep are injectable so tests run without a
// network and without real time.
type Waiter struct {
	Interval time.Duration
	Probe    func(ctx context.Context) bool
	Sleep    func(d time.Duration)

	logger *slog.Logger
}

// NewWaiter builds a Waiter probing the given channel at the default
// interval.
func NewWaiter(ch *Channel, logger *slog.Logger) *Waiter {
	return &Waiter{
		Interval: DefaultPollInterval,
		Probe: func(ctx context.Context) bool {
			return ch.Probe(ctx).Ok()
		},
		Sleep:  time.Sleep,
		logger: logger,
	}
}

// Wait blocks until the probe succeeds or the accumulated wait reaches
// timeout. Returns true as soon as a probe succeeds; a first-attempt success
// never sleeps. Each attempt carries its own connection timeout, so a single
// hung attempt cannot stall the wait beyond one interval.
func (w *Waiter) Wait(ctx context.Context, timeout time.Duration) bool {
	attempts := 0
	for waited := time.Duration(0); waited < timeout; waited += w.Interval {
		attempts++
		if w.Probe(ctx) {
			if w.logger != nil {
				w.logger.Info("guest ready", "attempts", attempts)
			}
			return true
		}
		w.Sleep(w.Interval)
	}
	if w.logger != nil {
		w.logger.Warn("guest not ready before deadline", "attempts", attempts, "timeout", timeout)
	}
	return false
}
