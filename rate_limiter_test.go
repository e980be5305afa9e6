package portalbridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int       { return &i }
func int64Ptr(i int64) *int64 { return &i }

func TestRateLimiter(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	rl := NewRateLimiter()
	rl.now = func() time.Time { return now }

	assert.Zero(t, rl.delayBeforeNextRequest(), "no info yet")
	assert.Nil(t, rl.GetRateLimitInfo())

	rl.UpdateRateLimits(nil)
	rl.UpdateRateLimits(&NormalizedRateLimitInfo{})
	assert.Nil(t, rl.GetRateLimitInfo(), "empty info ignored")

	rl.UpdateRateLimits(&NormalizedRateLimitInfo{
		MaxRequests:       intPtr(100),
		RemainingRequests: intPtr(3),
		ResetRequestsAt:   int64Ptr(now.UnixMilli() + 5000),
	})
	assert.Zero(t, rl.delayBeforeNextRequest())

	rl.UpdateRateLimits(&NormalizedRateLimitInfo{
		RemainingRequests: intPtr(0),
		ResetRequestsAt:   int64Ptr(now.UnixMilli() + 5000),
	})
	assert.Equal(t, 5*time.Second, rl.delayBeforeNextRequest())

	now = now.Add(6 * time.Second)
	assert.Zero(t, rl.delayBeforeNextRequest(), "reset passed")

	info := rl.GetRateLimitInfo()
	require.NotNil(t, info)
	assert.Equal(t, 0, *info.RemainingRequests)
}

func TestRateLimiter_ExhaustedWithoutResetDoesNotBlock(t *testing.T) {
	rl := NewRateLimiter()
	rl.UpdateRateLimits(&NormalizedRateLimitInfo{RemainingRequests: intPtr(0)})
	assert.Zero(t, rl.delayBeforeNextRequest())
}
