package portalbridge

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedTransport answers with statuses in order; 0 means no response.
type scriptedTransport struct {
	statuses []int
	calls    int
}

func (s *scriptedTransport) ExecuteRequest(_ context.Context, _ *RequestContext) (*NormalizedResponse, error) {
	status := s.statuses[len(s.statuses)-1]
	if s.calls < len(s.statuses) {
		status = s.statuses[s.calls]
	}
	s.calls++
	if status == 0 {
		return nil, errors.New("connection reset by peer")
	}
	return &NormalizedResponse{StatusCode: status, Data: []byte(`{}`)}, nil
}

func (s *scriptedTransport) ParseRateLimitInfo(*NormalizedResponse) (*NormalizedRateLimitInfo, error) {
	return nil, nil
}

func noWait(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func TestMetrics_RecordOutcomes(t *testing.T) {
	m := NewMetrics()
	tr := &scriptedTransport{statuses: []int{503, 0, 200}}
	sdk := NewPortalBridge(DefaultConfig("https://portal.test"), tr,
		WithMetrics(m), WithWaitFunc(noWait), WithLogger(zerolog.Nop()))

	_, err := sdk.Dispatch(context.Background(), NewRequestContext("GET", "/claims", nil))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retriesTotal.WithLabelValues("503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retriesTotal.WithLabelValues("0")))

	tr = &scriptedTransport{statuses: []int{401}}
	sdk = NewPortalBridge(DefaultConfig("https://portal.test"), tr,
		WithMetrics(m), WithWaitFunc(noWait), WithLogger(zerolog.Nop()))
	_, err = sdk.Dispatch(context.Background(), NewRequestContext("GET", "/auth/me", nil))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.forcedLogouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", string(CodeUnauthorized))))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestMetrics_RegistryExposition(t *testing.T) {
	m := NewMetrics()
	m.recordResult("POST", HTTPCode(422), 10*time.Millisecond)

	expected := `
# HELP portal_bridge_requests_total Dispatched calls by method and final outcome code
# TYPE portal_bridge_requests_total counter
portal_bridge_requests_total{code="HTTP_422",method="POST"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "portal_bridge_requests_total"))
}

func TestLogger_ModeAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, ModeProduction, "")
	log.Debug().Msg("hidden")
	log.Info().Str("request_id", "r-1").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"request_id":"r-1"`)
	assert.Contains(t, out, `"component":"portal-bridge"`)

	buf.Reset()
	log = newLogger(&buf, ModeDevelopment, "")
	log.Debug().Msg("dev detail")
	assert.Contains(t, buf.String(), "dev detail")

	buf.Reset()
	log = newLogger(&buf, ModeDevelopment, "error")
	log.Warn().Msg("quiet")
	assert.Empty(t, buf.String())
}
