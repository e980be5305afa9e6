// sdk.go
// ------
// PortalBridge is the single entry point for every call to the portal API.
//
// Key functionalities include:
// - Initializing with NewPortalBridge(config, transport, options...)
// - Dispatching calls via Dispatch(), which injects the credential, retries
//   transient failures and normalizes every failure into a *NormalizedError
// - Forced logout on 401: the TokenStore is cleared and the login hook fires
// - Default headers shared by all calls
//
// The bridge relies on a RequestExecutor for the retry loop, a RetryPolicy for
// retry decisions and a RateLimiter for server-advertised limits.
package portalbridge

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type PortalBridge struct {
	mu             sync.Mutex
	config         *Config
	transport      Transport
	tokens         TokenStore
	injector       *AuthTokenInjector
	retryPolicy    *RetryPolicy
	rateLimiter    *RateLimiter
	executor       *RequestExecutor
	metrics        *Metrics
	logger         zerolog.Logger
	defaultHeaders map[string]string
	onUnauthorized func()

	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor

	wait func(ctx context.Context, d time.Duration) error
}

type Option func(*PortalBridge)

// WithTokenStore replaces the in-memory credential holder.
func WithTokenStore(store TokenStore) Option {
	return func(sdk *PortalBridge) { sdk.tokens = store }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(sdk *PortalBridge) { sdk.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(sdk *PortalBridge) { sdk.metrics = m }
}

// WithLoginRedirect registers the side effect fired after a forced logout.
func WithLoginRedirect(fn func()) Option {
	return func(sdk *PortalBridge) { sdk.onUnauthorized = fn }
}

// WithRequestInterceptor appends a step after the built-in request pipeline.
func WithRequestInterceptor(ic RequestInterceptor) Option {
	return func(sdk *PortalBridge) { sdk.requestInterceptors = append(sdk.requestInterceptors, ic) }
}

func WithResponseInterceptor(ic ResponseInterceptor) Option {
	return func(sdk *PortalBridge) { sdk.responseInterceptors = append(sdk.responseInterceptors, ic) }
}

// WithWaitFunc replaces the timer used for retry and rate-limit delays.
func WithWaitFunc(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(sdk *PortalBridge) { sdk.wait = fn }
}

func NewPortalBridge(config *Config, transport Transport, opts ...Option) *PortalBridge {
	if config == nil {
		config = DefaultConfig("")
	}
	sdk := &PortalBridge{
		config:      config,
		transport:   transport,
		tokens:      NewMemoryTokenStore(),
		retryPolicy: NewRetryPolicy(config.RetryBaseDelay, config.RetryMaxDelay),
		rateLimiter: NewRateLimiter(),
		logger:      NewLogger(config.Mode, config.LogLevel),
		defaultHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		wait: sleepContext,
	}
	if config.Version != "" {
		sdk.defaultHeaders[HeaderClientVersion] = config.Version
	}
	for _, opt := range opts {
		opt(sdk)
	}
	if sdk.metrics == nil {
		sdk.metrics = NewMetrics()
	}
	sdk.injector = NewAuthTokenInjector(sdk.tokens)
	sdk.executor = NewRequestExecutor(sdk)
	return sdk
}

// Dispatch sends req and returns the 2xx response unchanged. Every failure is
// a *NormalizedError.
func (sdk *PortalBridge) Dispatch(ctx context.Context, req *RequestContext) (*NormalizedResponse, error) {
	return sdk.executor.Execute(ctx, req)
}

func (sdk *PortalBridge) Config() *Config {
	return sdk.config
}

func (sdk *PortalBridge) TokenStore() TokenStore {
	return sdk.tokens
}

func (sdk *PortalBridge) Metrics() *Metrics {
	return sdk.metrics
}

func (sdk *PortalBridge) Logger() zerolog.Logger {
	return sdk.logger
}

func (sdk *PortalBridge) RetryPolicy() *RetryPolicy {
	return sdk.retryPolicy
}

// GetRateLimitInfo returns the last limits advertised by the server.
func (sdk *PortalBridge) GetRateLimitInfo() *NormalizedRateLimitInfo {
	return sdk.rateLimiter.GetRateLimitInfo()
}

// SetDefaultHeader sets a header sent with every call.
func (sdk *PortalBridge) SetDefaultHeader(key, value string) {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()
	sdk.defaultHeaders[http.CanonicalHeaderKey(key)] = value
}

func (sdk *PortalBridge) RemoveDefaultHeader(key string) {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()
	delete(sdk.defaultHeaders, http.CanonicalHeaderKey(key))
}

// DefaultHeaders returns a copy of the headers sent with every call.
func (sdk *PortalBridge) DefaultHeaders() map[string]string {
	sdk.mu.Lock()
	defer sdk.mu.Unlock()
	out := make(map[string]string, len(sdk.defaultHeaders))
	for k, v := range sdk.defaultHeaders {
		out[k] = v
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
