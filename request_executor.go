package portalbridge

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/opengovern/portal-bridge/utils"
)

const tracerName = "github.com/opengovern/portal-bridge"

// RequestExecutor runs the attempt loop for one call: pipeline, transport,
// retry decisions, forced logout and normalization.
type RequestExecutor struct {
	sdk    *PortalBridge
	tracer trace.Tracer
}

func NewRequestExecutor(sdk *PortalBridge) *RequestExecutor {
	return &RequestExecutor{sdk: sdk, tracer: otel.Tracer(tracerName)}
}

func (re *RequestExecutor) Execute(ctx context.Context, req *RequestContext) (*NormalizedResponse, error) {
	sdk := re.sdk
	req.Metadata.StartTime = time.Now()
	req.Metadata.RetryCount = 0
	switch {
	case req.Metadata.MaxRetries == 0:
		req.Metadata.MaxRetries = sdk.config.MaxRetries
	case req.Metadata.MaxRetries < 0:
		req.Metadata.MaxRetries = 0
	}

	ctx, span := re.tracer.Start(ctx, "portalbridge.Dispatch", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Endpoint),
		))
	defer span.End()

	for _, ic := range sdk.requestChain() {
		next, err := ic(ctx, req)
		if err != nil {
			return nil, re.reject(ctx, span, req, unknownError(fmt.Errorf("prepare request: %w", err)))
		}
		if next != nil {
			req = next
		}
	}

	log := sdk.logger.With().
		Str("request_id", req.Metadata.RequestID).
		Str("method", req.Method).
		Str("endpoint", req.Endpoint).
		Logger()

	for {
		if delay := sdk.rateLimiter.delayBeforeNextRequest(); delay > 0 {
			log.Debug().Dur("delay", delay).Msg("rate limit exhausted, waiting for reset")
			if err := sdk.wait(ctx, delay); err != nil {
				return nil, re.reject(ctx, span, req, Normalize(Failure{Err: err}))
			}
		}

		log.Debug().Int("attempt", req.Metadata.RetryCount+1).Msg("sending request")
		resp, err := sdk.transport.ExecuteRequest(ctx, req)

		if err == nil && resp != nil {
			if info, parseErr := sdk.transport.ParseRateLimitInfo(resp); parseErr == nil {
				sdk.rateLimiter.UpdateRateLimits(info)
			}
			if resp.IsSuccess() {
				return re.succeed(ctx, span, req, resp, log)
			}
		}

		failure := newFailure(resp, err)

		if failure.HasResponse() && failure.Status() == http.StatusUnauthorized && !req.Flags.SkipAuth {
			return nil, re.forceLogout(ctx, span, req, failure, log)
		}

		if !sdk.retryPolicy.IsEligible(req, failure) {
			return nil, re.reject(ctx, span, req, Normalize(failure))
		}

		wait := sdk.retryPolicy.delayFor(req)
		req.Metadata.RetryCount++
		sdk.metrics.recordRetry(failure.Status())
		log.Warn().
			Err(failure.Err).
			Int("status", failure.Status()).
			Dur("delay", wait).
			Int("retry", req.Metadata.RetryCount).
			Int("max_retries", req.Metadata.MaxRetries).
			Msg("transient failure, retrying")

		if err := sdk.wait(ctx, wait); err != nil {
			log.Debug().Err(err).Msg("retry wait interrupted")
			return nil, re.reject(ctx, span, req, Normalize(failure))
		}
	}
}

func (re *RequestExecutor) succeed(ctx context.Context, span trace.Span, req *RequestContext, resp *NormalizedResponse, log zerolog.Logger) (*NormalizedResponse, error) {
	for _, ic := range re.sdk.responseChain() {
		next, err := ic(ctx, req, resp)
		if err != nil {
			return nil, re.reject(ctx, span, req, unknownError(fmt.Errorf("process response: %w", err)))
		}
		if next != nil {
			resp = next
		}
	}

	elapsed := time.Since(req.Metadata.StartTime)
	re.sdk.metrics.recordResult(req.Method, "OK", elapsed)
	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Int("portal.retry_count", req.Metadata.RetryCount),
	)
	log.Debug().Int("status", resp.StatusCode).Int("retries", req.Metadata.RetryCount).Dur("elapsed", elapsed).Msg("request succeeded")
	return resp, nil
}

// forceLogout handles a 401 on an authenticated call. It is never retried.
func (re *RequestExecutor) forceLogout(ctx context.Context, span trace.Span, req *RequestContext, failure Failure, log zerolog.Logger) error {
	sdk := re.sdk

	if token, ok := sdk.tokens.Token(); ok {
		log = log.With().Str("credential_fp", utils.Fingerprint(token)).Logger()
	}
	if err := sdk.tokens.ClearToken(); err != nil {
		log.Error().Err(err).Msg("failed to clear credential")
	}
	sdk.RemoveDefaultHeader(headerAuthorization)
	sdk.metrics.recordForcedLogout()
	log.Warn().Msg("credential rejected, forcing logout")

	if sdk.onUnauthorized != nil {
		sdk.onUnauthorized()
	}
	return re.reject(ctx, span, req, unauthorizedError(failure))
}

func (re *RequestExecutor) reject(_ context.Context, span trace.Span, req *RequestContext, ne *NormalizedError) error {
	elapsed := time.Since(req.Metadata.StartTime)
	re.sdk.metrics.recordResult(req.Method, ne.Code, elapsed)

	span.SetAttributes(
		attribute.String("portal.error_code", string(ne.Code)),
		attribute.Int("portal.retry_count", req.Metadata.RetryCount),
	)
	if ne.Status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", ne.Status))
	}
	span.SetStatus(codes.Error, ne.Message)

	var ev *zerolog.Event
	switch {
	case ne.Code == CodeNetworkError || ne.Status >= 500:
		ev = re.sdk.logger.Error()
	default:
		ev = re.sdk.logger.Info()
	}
	ev.Str("request_id", req.Metadata.RequestID).
		Str("method", req.Method).
		Str("endpoint", req.Endpoint).
		Str("code", string(ne.Code)).
		Int("status", ne.Status).
		Int("retries", req.Metadata.RetryCount).
		Dur("elapsed", elapsed).
		Msg(ne.Message)
	return ne
}
