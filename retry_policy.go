package portalbridge

import "time"

const (
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = time.Second
	DefaultRetryMaxDelay  = 10 * time.Second
)

// RetryPolicy decides whether a failed attempt is resubmitted and after how long.
type RetryPolicy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func NewRetryPolicy(base, max time.Duration) *RetryPolicy {
	if base <= 0 {
		base = DefaultRetryBaseDelay
	}
	if max <= 0 {
		max = DefaultRetryMaxDelay
	}
	return &RetryPolicy{BaseDelay: base, MaxDelay: max}
}

// RetryCondition is true when nothing came back or the server answered 5xx.
func (p *RetryPolicy) RetryCondition(f Failure) bool {
	if f.NotSent {
		return false
	}
	if f.Response == nil {
		return true
	}
	return f.Response.StatusCode >= 500
}

// RetryDelay returns min(base * 2^attempt, max).
func (p *RetryPolicy) RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	backoff := p.BaseDelay
	for i := 0; i < attempt; i++ {
		if backoff >= p.MaxDelay/2 {
			return p.MaxDelay
		}
		backoff *= 2
	}
	if backoff > p.MaxDelay {
		backoff = p.MaxDelay
	}
	return backoff
}

// IsEligible combines the condition with the request's remaining budget.
func (p *RetryPolicy) IsEligible(req *RequestContext, f Failure) bool {
	return p.RetryCondition(f) && req.Metadata.RetryCount < req.Metadata.MaxRetries
}

// delayFor honours a per-request override.
func (p *RetryPolicy) delayFor(req *RequestContext) time.Duration {
	if req.Metadata.RetryDelayOverride > 0 {
		return req.Metadata.RetryDelayOverride
	}
	return p.RetryDelay(req.Metadata.RetryCount)
}
