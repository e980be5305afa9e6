// portal_adapter.go
// -----------------
// PortalAdapter is the net/http Transport for the portal API. It turns a
// RequestContext into an *http.Request against the configured base URL, sends
// it through an otelhttp-instrumented client, and returns the raw status,
// lower-cased headers and body. It never interprets status codes: retries,
// credential handling and error normalization belong to the bridge.
//
// Key Points:
// - Failures before the request hits the wire (bad URL, bad method) wrap
//   portalbridge.ErrRequestNotSent so the bridge reports UNKNOWN_ERROR.
// - Any other client error means nothing came back (NETWORK_ERROR).
// - Upload progress is reported from a counting reader around the body.
// - x-ratelimit-limit / x-ratelimit-remaining / x-ratelimit-reset and
//   retry-after are parsed into NormalizedRateLimitInfo.

package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	portalbridge "github.com/opengovern/portal-bridge"
	"github.com/opengovern/portal-bridge/internal"
)

const PortalDefaultTimeout = 30 * time.Second

type PortalAdapter struct {
	BaseURL string
	Client  *http.Client

	now func() time.Time
}

// NewPortalAdapter builds an adapter with an instrumented client.
func NewPortalAdapter(baseURL string, timeout time.Duration) *PortalAdapter {
	if timeout <= 0 {
		timeout = PortalDefaultTimeout
	}
	return &PortalAdapter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
}

// NewPortalAdapterFromConfig wires the adapter from the bridge configuration.
func NewPortalAdapterFromConfig(cfg *portalbridge.Config) *PortalAdapter {
	return NewPortalAdapter(cfg.BaseURL, cfg.Timeout)
}

func (p *PortalAdapter) ExecuteRequest(ctx context.Context, req *portalbridge.RequestContext) (*portalbridge.NormalizedResponse, error) {
	httpReq, err := p.buildRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", portalbridge.ErrRequestNotSent, err)
	}

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		// Status arrived but the body was cut off; treat it as lost.
		return nil, fmt.Errorf("read response body: %w", err)
	}
	headers := make(map[string]string)
	for k, vals := range resp.Header {
		if len(vals) > 0 {
			headers[strings.ToLower(k)] = vals[0]
		}
	}

	return &portalbridge.NormalizedResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Data:       data,
	}, nil
}

func (p *PortalAdapter) buildRequest(ctx context.Context, req *portalbridge.RequestContext) (*http.Request, error) {
	if req.Method == "" {
		return nil, fmt.Errorf("missing method")
	}
	fullURL, err := p.resolveURL(req.Endpoint, req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
		if req.Progress != nil {
			body = &countingReader{r: body, total: int64(len(req.Body)), report: req.Progress}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, err
	}
	if len(req.Body) > 0 {
		httpReq.ContentLength = int64(len(req.Body))
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if len(req.Body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

func (p *PortalAdapter) resolveURL(endpoint string, query url.Values) (string, error) {
	if p.BaseURL == "" {
		return "", fmt.Errorf("base URL not configured")
	}
	u, err := url.Parse(p.BaseURL + "/" + strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (p *PortalAdapter) ParseRateLimitInfo(resp *portalbridge.NormalizedResponse) (*portalbridge.NormalizedRateLimitInfo, error) {
	h := resp.Headers
	parseInt := func(key string) *int {
		if val, ok := h[key]; ok {
			if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				return &i
			}
		}
		return nil
	}
	parseReset := func(key string) *int64 {
		if val, ok := h[key]; ok {
			if ms, ok := internal.ParseResetHeader(val); ok {
				return &ms
			}
		}
		return nil
	}

	info := &portalbridge.NormalizedRateLimitInfo{
		MaxRequests:       parseInt("x-ratelimit-limit"),
		RemainingRequests: parseInt("x-ratelimit-remaining"),
		ResetRequestsAt:   parseReset("x-ratelimit-reset"),
	}

	// retry-after usually accompanies a 429 and wins when it is later.
	if val, ok := h["retry-after"]; ok {
		now := p.clock()
		if future, ok := internal.ParseRetryAfter(val, now); ok && internal.IsInFuture(future, now) {
			if info.ResetRequestsAt == nil || future > *info.ResetRequestsAt {
				info.ResetRequestsAt = &future
			}
			if info.RemainingRequests == nil {
				zero := 0
				info.RemainingRequests = &zero
			}
		}
	}

	if info.MaxRequests == nil && info.RemainingRequests == nil && info.ResetRequestsAt == nil {
		return nil, nil
	}
	return info, nil
}

func (p *PortalAdapter) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

// countingReader reports how much of the body the client has consumed.
type countingReader struct {
	r      io.Reader
	total  int64
	read   atomic.Int64
	report func(sent, total int64)
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	if n > 0 {
		c.report(c.read.Add(int64(n)), c.total)
	}
	return n, err
}
