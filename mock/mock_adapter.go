package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	portalbridge "github.com/opengovern/portal-bridge"
)

// ErrNoConnectivity simulates a request that got no answer.
var ErrNoConnectivity = errors.New("dial tcp: connection refused")

// Step is one scripted transport outcome.
type Step struct {
	Status  int
	Body    string
	Headers map[string]string
	Err     error
}

// OK returns a 200 step with body.
func OK(body string) Step { return Step{Status: 200, Body: body} }

// Status returns a step answering with status and body.
func Status(status int, body string) Step { return Step{Status: status, Body: body} }

// NoResponse returns a step where nothing comes back.
func NoResponse() Step { return Step{Err: ErrNoConnectivity} }

// NotSent returns a step failing before the request reaches the wire.
func NotSent(reason string) Step {
	return Step{Err: fmt.Errorf("%w: %s", portalbridge.ErrRequestNotSent, reason)}
}

// Attempt is what the adapter saw on one call.
type Attempt struct {
	Method     string
	Endpoint   string
	Headers    map[string]string
	Body       []byte
	Query      map[string][]string
	RetryCount int
}

// MockAdapter replays scripted steps in order; once they run out the last step
// repeats. It is safe for concurrent use.
type MockAdapter struct {
	mu       sync.Mutex
	steps    []Step
	next     int
	attempts []Attempt

	// RateLimit, when set, is returned from ParseRateLimitInfo.
	RateLimit *portalbridge.NormalizedRateLimitInfo
}

func NewMockAdapter(steps ...Step) *MockAdapter {
	return &MockAdapter{steps: steps}
}

func (m *MockAdapter) ExecuteRequest(ctx context.Context, req *portalbridge.RequestContext) (*portalbridge.NormalizedResponse, error) {
	m.mu.Lock()
	m.attempts = append(m.attempts, snapshot(req))
	step := Step{Status: 200, Body: `{"success":true}`}
	if len(m.steps) > 0 {
		idx := m.next
		if idx >= len(m.steps) {
			idx = len(m.steps) - 1
		} else {
			m.next++
		}
		step = m.steps[idx]
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Progress != nil && len(req.Body) > 0 {
		total := int64(len(req.Body))
		req.Progress(total/2, total)
		req.Progress(total, total)
	}
	if step.Err != nil {
		return nil, step.Err
	}
	headers := map[string]string{}
	for k, v := range step.Headers {
		headers[k] = v
	}
	return &portalbridge.NormalizedResponse{
		StatusCode: step.Status,
		Headers:    headers,
		Data:       []byte(step.Body),
	}, nil
}

func (m *MockAdapter) ParseRateLimitInfo(resp *portalbridge.NormalizedResponse) (*portalbridge.NormalizedRateLimitInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RateLimit, nil
}

// Attempts returns a copy of every call seen so far.
func (m *MockAdapter) Attempts() []Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Attempt(nil), m.attempts...)
}

func (m *MockAdapter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}

func snapshot(req *portalbridge.RequestContext) Attempt {
	headers := make(map[string]string, len(req.Headers))
	for k, v := range req.Headers {
		headers[k] = v
	}
	query := make(map[string][]string, len(req.Query))
	for k, v := range req.Query {
		query[k] = append([]string(nil), v...)
	}
	return Attempt{
		Method:     req.Method,
		Endpoint:   req.Endpoint,
		Headers:    headers,
		Body:       append([]byte(nil), req.Body...),
		Query:      query,
		RetryCount: req.Metadata.RetryCount,
	}
}
