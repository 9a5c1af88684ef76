// Package backoff centralizes retry delay calculation.
package backoff

import (
	"math/rand"
	"time"
)

// Exponential computes the delay before retry n (1-based):
// min(initial * 2^(n-1), max), with an optional uniform jitter fraction
// added on top. The capped value is never exceeded.
func Exponential(retry int, initial, max time.Duration, jitter float64) time.Duration {
	if retry < 1 {
		retry = 1
	}
	// Prevent overflow by limiting the exponent
	if retry > 31 {
		retry = 31
	}

	d := time.Duration(float64(initial) * Pow(2.0, retry-1))
	if d < 0 || d > max {
		d = max
	}

	jitter = clampJitter(jitter)
	if jitter > 0 {
		amount := time.Duration(float64(d) * jitter * rand.Float64())
		if d+amount > max {
			d = max
		} else {
			d += amount
		}
	}
	return d
}

// Pow is an integer-exponent power avoiding math.Pow on the hot path.
func Pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}

func clampJitter(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
