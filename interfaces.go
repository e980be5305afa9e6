package portalbridge

import "context"

// Transport performs one round-trip. It returns a response for any status the
// server answered with, and an error only when nothing usable came back. Errors
// raised before the request reached the wire must wrap ErrRequestNotSent.
type Transport interface {
	ExecuteRequest(ctx context.Context, req *RequestContext) (*NormalizedResponse, error)

	// ParseRateLimitInfo reads server-advertised limits; nil info means none.
	ParseRateLimitInfo(resp *NormalizedResponse) (*NormalizedRateLimitInfo, error)
}

// RequestInterceptor runs before the first attempt. It may mutate req in place
// or return a replacement. An error stops the call with UNKNOWN_ERROR.
type RequestInterceptor func(ctx context.Context, req *RequestContext) (*RequestContext, error)

// ResponseInterceptor runs on each successful response.
type ResponseInterceptor func(ctx context.Context, req *RequestContext, resp *NormalizedResponse) (*NormalizedResponse, error)
