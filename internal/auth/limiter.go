package auth

import (
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const defaultLimiterSize = 10000

// attemptLimiter is a token bucket per email address. Buckets live in an LRU
// so a flood of distinct addresses can not grow memory without bound.
type attemptLimiter struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
	every   rate.Limit
	burst   int
}

func newAttemptLimiter(perMinute, burst, size int) (*attemptLimiter, error) {
	if size <= 0 {
		size = defaultLimiterSize
	}

	buckets, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	every := rate.Inf
	if perMinute > 0 {
		every = rate.Every(time.Minute / time.Duration(perMinute))
	}

	return &attemptLimiter{buckets: buckets, every: every, burst: max(burst, 1)}, nil
}

func (l *attemptLimiter) allow(email string, now time.Time) bool {
	key := strings.ToLower(strings.TrimSpace(email))

	l.mu.Lock()

	bucket, ok := l.buckets.Get(key)
	if !ok {
		bucket = rate.NewLimiter(l.every, l.burst)
		l.buckets.Add(key, bucket)
	}

	l.mu.Unlock()

	return bucket.AllowN(now, 1)
}
