// rate_limiter.go
// ----------------
// RateLimiter remembers the budget the portal API advertises in its response
// headers. When the server reports zero remaining requests and a reset time in
// the future, the next attempt waits for that reset before going out.
//
// This only delays attempts; it never changes retry counts or classification.
package portalbridge

import (
	"sync"
	"time"
)

type RateLimiter struct {
	mu   sync.Mutex
	info *NormalizedRateLimitInfo
	now  func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{now: time.Now}
}

// UpdateRateLimits stores the latest advertised limits. A nil info is ignored.
func (r *RateLimiter) UpdateRateLimits(info *NormalizedRateLimitInfo) {
	if info == nil || (info.MaxRequests == nil && info.RemainingRequests == nil && info.ResetRequestsAt == nil) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = info
}

// delayBeforeNextRequest returns how long to wait before the next attempt.
func (r *RateLimiter) delayBeforeNextRequest() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := r.info
	if info == nil || info.RemainingRequests == nil || *info.RemainingRequests > 0 || info.ResetRequestsAt == nil {
		return 0
	}
	nowMs := r.now().UnixMilli()
	if nowMs >= *info.ResetRequestsAt {
		return 0
	}
	return time.Duration(*info.ResetRequestsAt-nowMs) * time.Millisecond
}

// GetRateLimitInfo returns a copy of the last advertised limits, or nil.
func (r *RateLimiter) GetRateLimitInfo() *NormalizedRateLimitInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.info == nil {
		return nil
	}
	copyInfo := *r.info
	return &copyInfo
}
