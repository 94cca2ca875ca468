package ratelimit

import (
    "sync"
    "time"
)

type bucket struct {
    tokens float64
    last   time.Time
}

// Limiter is a per-key token bucket. A capacity of zero disables limiting.
type Limiter struct {
    mu           sync.Mutex
    m            map[string]*bucket
    capacity     float64
    refillPerSec float64
    now          func() time.Time
}

func New(capacity, refillPerSec float64) *Limiter {
    return &Limiter{
        m:            make(map[string]*bucket),
        capacity:     capacity,
        refillPerSec: refillPerSec,
        now:          time.Now,
    }
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
    if l.capacity <= 0 {
        return true
    }
    l.mu.Lock()
    defer l.mu.Unlock()

    now := l.now()
    b, ok := l.m[key]
    if !ok {
        b = &bucket{tokens: l.capacity, last: now}
        l.m[key] = b
    }
    // refill
    elapsed := now.Sub(b.last).Seconds()
    if elapsed > 0 {
        b.tokens += elapsed * l.refillPerSec
        if b.tokens > l.capacity { b.tokens = l.capacity }
        b.last = now
    }
    if b.tokens >= 1 {
        b.tokens -= 1
        return true
    }
    return false
}

// Sweep drops buckets that have been idle longer than idle; a full bucket
// carries no state worth keeping.
func (l *Limiter) Sweep(idle time.Duration) int {
    l.mu.Lock()
    defer l.mu.Unlock()

    cutoff := l.now().Add(-idle)
    n := 0
    for k, b := range l.m {
        if b.last.Before(cutoff) {
            delete(l.m, k)
            n++
        }
    }
    return n
}
