package transcription

import (
	"context"
	"time"
)

// Default polling budget: 60 attempts 5 seconds apart. No wait follows the
// final attempt, so the loop sleeps at most 59 intervals (4m55s).
const (
	DefaultPollInterval    = 5 * time.Second
	DefaultMaxPollAttempts = 60
)

// PollPolicy bounds how a pending transcript is polled.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollPolicy returns the standard polling budget.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Interval: DefaultPollInterval, MaxAttempts: DefaultMaxPollAttempts}
}

func (p PollPolicy) normalized() PollPolicy {
	if p.Interval <= 0 {
		p.Interval = DefaultPollInterval
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxPollAttempts
	}
	return p
}

// Budget is the longest a poll loop can sleep in total: one interval between
// each pair of attempts.
func (p PollPolicy) Budget() time.Duration {
	p = p.normalized()
	return p.Interval * time.Duration(p.MaxAttempts-1)
}

// Waiter pauses between poll attempts. It must return early with the
// context's error when ctx is cancelled.
type Waiter func(ctx context.Context, d time.Duration) error

func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
