package core

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// RateLimiter gates trial starts so an agent endpoint is not hammered.
// Workers call Wait before dispatching each trial.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// TokenBucket is a RateLimiter refilled at a fixed cadence. Dispatch may
// burst up to the bucket capacity after an idle stretch.
type TokenBucket struct {
	tokens chan struct{}
	quit   chan struct{}
	once   sync.Once
}

// NewRateLimiter starts a bucket that admits perSecond trial starts per
// second with the given burst capacity. Stop must be called to release
// the refill goroutine.
func NewRateLimiter(perSecond float64, burst int) (*TokenBucket, error) {
	if perSecond <= 0 {
		return nil, errors.New("rate limiter: trials per second must be > 0")
	}
	if burst <= 0 {
		burst = 1
	}

	interval := time.Duration(math.Round(float64(time.Second) / perSecond))
	if interval <= 0 {
		interval = time.Nanosecond
	}

	tb := &TokenBucket{
		tokens: make(chan struct{}, burst),
		quit:   make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		tb.tokens <- struct{}{}
	}

	go tb.refill(interval)
	return tb, nil
}

func (t *TokenBucket) refill(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.quit:
			return
		case <-ticker.C:
			select {
			case t.tokens <- struct{}{}:
			default:
			}
		}
	}
}

// Wait blocks until a token is available or ctx is done.
func (t *TokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.tokens:
		return nil
	}
}

// Stop halts the refill goroutine. Safe to call more than once.
func (t *TokenBucket) Stop() {
	t.once.Do(func() { close(t.quit) })
}
