package ratelimit

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const maxTrackedIPs = 10_000

// IPThrottle is a token bucket per client IP allowing limit requests per period.
// The least recently seen IPs are forgotten once maxTrackedIPs is reached.
type IPThrottle struct {
	mu       sync.Mutex
	visitors *lru.Cache[string, *rate.Limiter]
	every    rate.Limit
	burst    int
	now      func() time.Time
}

func NewIPThrottle(limit int, period time.Duration) *IPThrottle {
	visitors, err := lru.New[string, *rate.Limiter](maxTrackedIPs)
	if err != nil {
		panic(err)
	}

	return &IPThrottle{
		visitors: visitors,
		every:    rate.Every(period / time.Duration(limit)),
		burst:    limit,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (t *IPThrottle) WithClock(now func() time.Time) *IPThrottle {
	t.now = now
	return t
}

// Allow consumes one token for ip. When the bucket is empty it returns false and
// the time until the next token.
func (t *IPThrottle) Allow(ip string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	limiter, ok := t.visitors.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(t.every, t.burst)
		t.visitors.Add(ip, limiter)
	}

	r := limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}
