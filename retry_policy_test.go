package portalbridge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRetryDelay_Sequence(t *testing.T) {
	p := NewRetryPolicy(0, 0)

	got := []time.Duration{p.RetryDelay(0), p.RetryDelay(1), p.RetryDelay(2), p.RetryDelay(3), p.RetryDelay(4), p.RetryDelay(60)}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	assert.Equal(t, want, got)
}

func TestRetryDelay_NonDecreasingAndCapped(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := time.Duration(rapid.Int64Range(1, 5000).Draw(rt, "base_ms")) * time.Millisecond
		max := base + time.Duration(rapid.Int64Range(0, 60000).Draw(rt, "extra_ms"))*time.Millisecond
		p := NewRetryPolicy(base, max)

		attempt := rapid.IntRange(0, 200).Draw(rt, "attempt")
		d := p.RetryDelay(attempt)
		next := p.RetryDelay(attempt + 1)

		if d > max || next > max {
			rt.Fatalf("delay above cap: %v / %v > %v", d, next, max)
		}
		if next < d {
			rt.Fatalf("delay decreased: attempt %d %v -> %v", attempt, d, next)
		}
		if d < base {
			rt.Fatalf("delay %v below base %v", d, base)
		}
	})
}

func TestRetryCondition(t *testing.T) {
	p := NewRetryPolicy(0, 0)

	tests := []struct {
		name    string
		failure Failure
		want    bool
	}{
		{"no response", Failure{Err: errors.New("connection reset")}, true},
		{"500", Failure{Response: &NormalizedResponse{StatusCode: 500}}, true},
		{"503", Failure{Response: &NormalizedResponse{StatusCode: 503}}, true},
		{"599", Failure{Response: &NormalizedResponse{StatusCode: 599}}, true},
		{"400", Failure{Response: &NormalizedResponse{StatusCode: 400}}, false},
		{"404", Failure{Response: &NormalizedResponse{StatusCode: 404}}, false},
		{"429", Failure{Response: &NormalizedResponse{StatusCode: 429}}, false},
		{"not sent", Failure{Err: ErrRequestNotSent, NotSent: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.RetryCondition(tt.failure))
		})
	}
}

func TestIsEligible_RespectsBudget(t *testing.T) {
	p := NewRetryPolicy(0, 0)
	f := Failure{Response: &NormalizedResponse{StatusCode: 502}}

	req := NewRequestContext("GET", "/claims", nil)
	req.Metadata.MaxRetries = 3
	for i := 0; i < 3; i++ {
		req.Metadata.RetryCount = i
		assert.True(t, p.IsEligible(req, f), "retry %d", i)
	}
	req.Metadata.RetryCount = 3
	assert.False(t, p.IsEligible(req, f))
}

func TestDelayFor_Override(t *testing.T) {
	p := NewRetryPolicy(0, 0)
	req := NewRequestContext("GET", "/claims", nil)
	req.Metadata.RetryCount = 2

	assert.Equal(t, 4*time.Second, p.delayFor(req))
	req.Metadata.RetryDelayOverride = 250 * time.Millisecond
	assert.Equal(t, 250*time.Millisecond, p.delayFor(req))
}
