package delay

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Pacer waits between page visits
type Pacer interface {
	// Pause blocks for the next delay or until ctx is done
	Pause(ctx context.Context) error
}

// SleepFunc sleeps for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Random pauses for a uniformly chosen whole number of seconds in [Min, Max]
type Random struct {
	Min int
	Max int

	mu    sync.Mutex
	rng   *rand.Rand
	sleep SleepFunc
}

// NewRandom creates a Random pacer. Bounds given in the wrong order are swapped.
func NewRandom(minSeconds, maxSeconds int) *Random {
	if minSeconds > maxSeconds {
		minSeconds, maxSeconds = maxSeconds, minSeconds
	}
	return &Random{
		Min:   minSeconds,
		Max:   maxSeconds,
		rng:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		sleep: Sleep,
	}
}

// WithSource replaces the random source
func (r *Random) WithSource(src rand.Source) *Random {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng = rand.New(src)
	return r
}

// WithSleep replaces the sleep function
func (r *Random) WithSleep(fn SleepFunc) *Random {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleep = fn
	return r
}

// Next returns the next delay without sleeping
func (r *Random) Next() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	lo, hi := r.Min, r.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		hi = lo
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}

	seconds := lo + r.rng.IntN(hi-lo+1)
	return time.Duration(seconds) * time.Second
}

// Pause sleeps for Next()
func (r *Random) Pause(ctx context.Context) error {
	d := r.Next()

	r.mu.Lock()
	sleep := r.sleep
	r.mu.Unlock()
	if sleep == nil {
		sleep = Sleep
	}

	return sleep(ctx, d)
}

// Sleep waits for d, returning ctx.Err() if ctx finishes first
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// None is a Pacer that never waits
type None struct{}

// Pause returns immediately unless ctx is already done
func (None) Pause(ctx context.Context) error {
	return ctx.Err()
}
