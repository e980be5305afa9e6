package portalbridge

import (
	"context"

	"github.com/google/uuid"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderClientVersion = "X-Client-Version"

	headerAuthorization = "Authorization"
)

// defaultHeadersInterceptor copies the bridge defaults onto req without
// overriding headers the caller already set. A default Authorization is not
// copied onto SkipAuth calls.
func (sdk *PortalBridge) defaultHeadersInterceptor() RequestInterceptor {
	return func(_ context.Context, req *RequestContext) (*RequestContext, error) {
		for k, v := range sdk.DefaultHeaders() {
			if req.Flags.SkipAuth && k == headerAuthorization {
				continue
			}
			if _, ok := req.Header(k); !ok {
				req.SetHeader(k, v)
			}
		}
		return req, nil
	}
}

// requestIDInterceptor tags every call so server logs can be correlated.
func requestIDInterceptor(_ context.Context, req *RequestContext) (*RequestContext, error) {
	if req.Metadata.RequestID == "" {
		req.Metadata.RequestID = uuid.NewString()
	}
	req.SetHeader(HeaderRequestID, req.Metadata.RequestID)
	return req, nil
}

// HeaderInterceptor sets a fixed header on every call.
func HeaderInterceptor(key, value string) RequestInterceptor {
	return func(_ context.Context, req *RequestContext) (*RequestContext, error) {
		req.SetHeader(key, value)
		return req, nil
	}
}

// requestChain is the ordered pipeline applied before the first attempt.
func (sdk *PortalBridge) requestChain() []RequestInterceptor {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()

	chain := make([]RequestInterceptor, 0, 3+len(sdk.requestInterceptors))
	chain = append(chain, sdk.defaultHeadersInterceptor(), requestIDInterceptor, sdk.injector.Interceptor())
	return append(chain, sdk.requestInterceptors...)
}

func (sdk *PortalBridge) responseChain() []ResponseInterceptor {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()
	return append([]ResponseInterceptor(nil), sdk.responseInterceptors...)
}
