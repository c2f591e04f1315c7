package ratelimiter

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// OperationLimiters holds one token bucket per named operation. Buckets are
// created on first use so callers need not declare operations up front.
// Burst equals the rate: no saved-up capacity above the per-second maximum.
type OperationLimiters struct {
	mu       sync.Mutex
	r        rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// New creates limiters allowing ratePerSec calls per second per operation.
// A non-positive rate disables limiting.
func New(ratePerSec int) *OperationLimiters {
	r := rate.Limit(ratePerSec)
	if ratePerSec <= 0 {
		r = rate.Inf
	}
	return &OperationLimiters{
		r:        r,
		burst:    max(ratePerSec, 1),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the operation's limiter grants a token.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (ol *OperationLimiters) Wait(ctx context.Context, operation string) error {
	return ol.limiter(operation).Wait(ctx)
}

func (ol *OperationLimiters) limiter(operation string) *rate.Limiter {
	ol.mu.Lock()
	defer ol.mu.Unlock()
	l, ok := ol.limiters[operation]
	if !ok {
		l = rate.NewLimiter(ol.r, ol.burst)
		ol.limiters[operation] = l
	}
	return l
}
