package transport

import (
	"math/rand/v2"
	"time"
)

// backoffDelay returns the delay before the n-th retry (n >= 1):
// min(base * 2^n + uniform_random(0,1)s, max). jitter returns a value in
// [0, 1) and is injectable for tests.
func backoffDelay(n int, base, max time.Duration, jitter func() float64) time.Duration {
	if jitter == nil {
		jitter = rand.Float64
	}
	if n > 30 {
		n = 30 // avoid shift overflow; the cap below dominates anyway
	}
	d := base << uint(n)
	if d <= 0 || d > max {
		return max
	}
	d += time.Duration(jitter() * float64(time.Second))
	if d > max {
		d = max
	}
	return d
}
