package portalbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// CallOption adjusts a RequestContext before dispatch.
type CallOption func(*RequestContext)

// SkipAuth sends the call without a credential; a 401 is then a plain error.
func SkipAuth() CallOption {
	return func(r *RequestContext) { r.Flags.SkipAuth = true }
}

func WithQuery(q url.Values) CallOption {
	return func(r *RequestContext) {
		for k, vs := range q {
			for _, v := range vs {
				r.Query.Add(k, v)
			}
		}
	}
}

func WithHeader(key, value string) CallOption {
	return func(r *RequestContext) { r.SetHeader(key, value) }
}

// WithMaxRetries overrides the retry budget; a negative value disables retries.
func WithMaxRetries(n int) CallOption {
	return func(r *RequestContext) {
		if n == 0 {
			n = -1
		}
		r.Metadata.MaxRetries = n
	}
}

// WithRetryDelay replaces the backoff with a fixed delay.
func WithRetryDelay(d time.Duration) CallOption {
	return func(r *RequestContext) { r.Metadata.RetryDelayOverride = d }
}

func newCall(method, path string, body any, opts []CallOption) (*RequestContext, error) {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return nil, unknownError(fmt.Errorf("encode request body: %w", err))
		}
	}
	req := NewRequestContext(method, path, data)
	for _, opt := range opts {
		opt(req)
	}
	return req, nil
}

// Do dispatches req and decodes the envelope.
func Do[T any](ctx context.Context, sdk *PortalBridge, req *RequestContext) (*ResponseEnvelope[T], error) {
	resp, err := sdk.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	return DecodeEnvelope[T](resp)
}

// DecodeEnvelope reads a 2xx body. An empty body is a bare success.
func DecodeEnvelope[T any](resp *NormalizedResponse) (*ResponseEnvelope[T], error) {
	env := &ResponseEnvelope[T]{}
	if len(resp.Data) == 0 {
		env.Success = true
		return env, nil
	}
	if err := json.Unmarshal(resp.Data, env); err != nil {
		return nil, unknownError(fmt.Errorf("decode response envelope: %w", err))
	}
	return env, nil
}

func call[T any](ctx context.Context, sdk *PortalBridge, method, path string, body any, opts []CallOption) (*ResponseEnvelope[T], error) {
	req, err := newCall(method, path, body, opts)
	if err != nil {
		return nil, err
	}
	return Do[T](ctx, sdk, req)
}

func Get[T any](ctx context.Context, sdk *PortalBridge, path string, opts ...CallOption) (*ResponseEnvelope[T], error) {
	return call[T](ctx, sdk, http.MethodGet, path, nil, opts)
}

func Post[T any](ctx context.Context, sdk *PortalBridge, path string, body any, opts ...CallOption) (*ResponseEnvelope[T], error) {
	return call[T](ctx, sdk, http.MethodPost, path, body, opts)
}

func Put[T any](ctx context.Context, sdk *PortalBridge, path string, body any, opts ...CallOption) (*ResponseEnvelope[T], error) {
	return call[T](ctx, sdk, http.MethodPut, path, body, opts)
}

func Patch[T any](ctx context.Context, sdk *PortalBridge, path string, body any, opts ...CallOption) (*ResponseEnvelope[T], error) {
	return call[T](ctx, sdk, http.MethodPatch, path, body, opts)
}

func Delete[T any](ctx context.Context, sdk *PortalBridge, path string, opts ...CallOption) (*ResponseEnvelope[T], error) {
	return call[T](ctx, sdk, http.MethodDelete, path, nil, opts)
}

// PageParams selects a page of a collection. Zero fields take the defaults
// (page 1, limit 20). Filters are sent as extra query parameters.
type PageParams struct {
	Page    int
	Limit   int
	Filters map[string]string
}

// Query renders the params merged over the defaults.
func (p PageParams) Query() url.Values {
	page, limit := p.Page, p.Limit
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	q := url.Values{}
	for k, v := range p.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// GetPaginated fetches one page of a collection endpoint. Limits above
// MaxPageLimit are passed through; the server clamps them.
func GetPaginated[T any](ctx context.Context, sdk *PortalBridge, path string, params *PageParams, opts ...CallOption) (*PaginatedEnvelope[T], error) {
	var p PageParams
	if params != nil {
		p = *params
	}
	if p.Limit > MaxPageLimit {
		sdk.logger.Debug().Str("endpoint", path).Int("limit", p.Limit).Int("max", MaxPageLimit).Msg("page limit above documented maximum")
	}

	req, err := newCall(http.MethodGet, path, nil, append([]CallOption{WithQuery(p.Query())}, opts...))
	if err != nil {
		return nil, err
	}
	resp, err := sdk.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	env := &PaginatedEnvelope[T]{}
	if len(resp.Data) == 0 {
		env.Success = true
		return env, nil
	}
	if err := json.Unmarshal(resp.Data, env); err != nil {
		return nil, unknownError(fmt.Errorf("decode paginated envelope: %w", err))
	}
	return env, nil
}
