package notify

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig tunes outgoing Telegram traffic.
type RateLimiterConfig struct {
	Rate      float64 // messages per second
	Burst     int
	JitterMin time.Duration
	JitterMax time.Duration
}

// DefaultRateLimiterConfig stays under Telegram's 30 msg/s bot limit.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:      20,
		Burst:     30,
		JitterMin: 50 * time.Millisecond,
		JitterMax: 150 * time.Millisecond,
	}
}

// RateLimiter is a token bucket with a small random delay before each send.
type RateLimiter struct {
	limiter *rate.Limiter
	cfg     RateLimiterConfig
	mu      sync.Mutex
	rng     *rand.Rand
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if jitter := r.jitter(); jitter > 0 {
		timer := time.NewTimer(jitter)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return r.limiter.Wait(ctx)
}

// TryAcquire takes a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	return r.limiter.Allow()
}

func (r *RateLimiter) jitter() time.Duration {
	if r.cfg.JitterMax <= r.cfg.JitterMin {
		return r.cfg.JitterMin
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.JitterMin + time.Duration(r.rng.Int63n(int64(r.cfg.JitterMax-r.cfg.JitterMin)))
}
