package platform

import "golang.org/x/time/rate"

// NewBWLimiter creates a rate.Limiter that caps extraction write throughput
// to bytesPerSec. The burst is set to 1 MB to allow natural chunk sizes
// through without unnecessary blocking. Returns nil for bytesPerSec <= 0.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	burst := 1 << 20 // 1 MB
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}
