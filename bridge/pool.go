package bridge

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultPoolSize bounds concurrent application calls when no size is
// configured.
const DefaultPoolSize = 64

// PoolConfig holds configuration for worker pool creation.
type PoolConfig struct {
	// Size is the maximum number of application calls in flight.
	// Values <= 0 mean DefaultPoolSize.
	Size int

	// RatePerSecond optionally throttles request admission with a token
	// bucket. 0 disables throttling.
	RatePerSecond float64

	// Burst is the token bucket depth; only meaningful with
	// RatePerSecond. Values <= 0 mean 1.
	Burst int
}

// Pool runs blocking application calls on a bounded set of workers. One
// Pool is typically shared by every request of a runtime instance; it is
// safe for concurrent use.
type Pool struct {
	slots   chan struct{}
	limiter *rate.Limiter
}

// NewPool creates a worker pool from cfg.
func NewPool(cfg PoolConfig) *Pool {
	size := cfg.Size
	if size <= 0 {
		size = DefaultPoolSize
	}
	p := &Pool{slots: make(chan struct{}, size)}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return p
}

// Run executes fn on a worker slot and returns after fn completes. It
// blocks while waiting for rate admission and a free slot, honoring ctx
// during the wait only: once fn starts it runs to completion, observing
// cancellation through its own channel operations.
func (p *Pool) Run(ctx context.Context, fn func()) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { <-p.slots }()
		fn()
	}()
	<-done
	return nil
}

// InFlight returns the number of occupied worker slots.
func (p *Pool) InFlight() int {
	return len(p.slots)
}
