package portalbridge

import (
	"net/http"
	"net/url"
	"time"
)

// RequestFlags carries per-call switches that alter the pipeline.
type RequestFlags struct {
	// SkipAuth disables credential injection and forced logout on 401.
	SkipAuth bool
}

// RequestMetadata is bookkeeping owned by the dispatcher.
type RequestMetadata struct {
	StartTime          time.Time
	RetryCount         int
	MaxRetries         int           // 0 means the bridge default, negative disables retries
	RetryDelayOverride time.Duration // used instead of the backoff when > 0
	RequestID          string
}

// RequestContext describes one logical call. The pipeline mutates it in place:
// headers are added and RetryCount grows across attempts.
type RequestContext struct {
	Method   string
	Endpoint string
	Headers  map[string]string
	Body     []byte
	Query    url.Values

	Flags    RequestFlags
	Metadata RequestMetadata

	// Progress, when set, is told how many body bytes the transport has read.
	Progress func(sent, total int64)
}

// NewRequestContext returns a context with JSON default headers.
func NewRequestContext(method, endpoint string, body []byte) *RequestContext {
	return &RequestContext{
		Method:   method,
		Endpoint: endpoint,
		Headers:  make(map[string]string),
		Body:     body,
		Query:    url.Values{},
	}
}

// SetHeader stores a header under its canonical name so keys stay unique.
func (r *RequestContext) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[http.CanonicalHeaderKey(key)] = value
}

// Header returns the value stored for key, if any.
func (r *RequestContext) Header(key string) (string, bool) {
	v, ok := r.Headers[http.CanonicalHeaderKey(key)]
	return v, ok
}

// NormalizedResponse is the raw outcome of one round-trip.
type NormalizedResponse struct {
	StatusCode int
	Headers    map[string]string // lower-cased keys
	Data       []byte
}

// IsSuccess reports a 2xx status.
func (r *NormalizedResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type NormalizedRateLimitInfo struct {
	MaxRequests       *int
	RemainingRequests *int
	ResetRequestsAt   *int64 // unix ms
}

// ResponseEnvelope is the uniform JSON wrapper every endpoint returns.
type ResponseEnvelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// PaginatedEnvelope is returned by collection endpoints.
type PaginatedEnvelope[T any] struct {
	Success bool   `json:"success"`
	Data    []T    `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`

	TotalCount  int  `json:"totalCount"`
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}
