package portalbridge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func responseFailure(status int, body string) Failure {
	return Failure{Response: &NormalizedResponse{StatusCode: status, Data: []byte(body)}}
}

func TestNormalize_ResponseReceived(t *testing.T) {
	tests := []struct {
		name string
		f    Failure
		want NormalizedError
	}{
		{
			name: "error field wins",
			f:    responseFailure(400, `{"error":"Bad input","message":"ignored"}`),
			want: NormalizedError{Message: "Bad input", Status: 400, Code: "HTTP_400"},
		},
		{
			name: "message fallback",
			f:    responseFailure(404, `{"success":false,"message":"Claim not found"}`),
			want: NormalizedError{Message: "Claim not found", Status: 404, Code: "HTTP_404"},
		},
		{
			name: "server code",
			f:    responseFailure(422, `{"message":"Invalid","code":"VALIDATION_FAILED"}`),
			want: NormalizedError{Message: "Invalid", Status: 422, Code: "VALIDATION_FAILED"},
		},
		{
			name: "empty body",
			f:    responseFailure(502, ``),
			want: NormalizedError{Message: "Request failed", Status: 502, Code: "HTTP_502"},
		},
		{
			name: "html body",
			f:    responseFailure(503, `<html>Service Unavailable</html>`),
			want: NormalizedError{Message: "Request failed", Status: 503, Code: "HTTP_503"},
		},
		{
			name: "numeric code keeps message",
			f:    responseFailure(422, `{"message":"Policy number is invalid","code":1001}`),
			want: NormalizedError{Message: "Policy number is invalid", Status: 422, Code: "1001"},
		},
		{
			name: "boolean code falls back",
			f:    responseFailure(409, `{"error":"Duplicate claim","code":true}`),
			want: NormalizedError{Message: "Duplicate claim", Status: 409, Code: "HTTP_409"},
		},
		{
			name: "object error falls through to message",
			f:    responseFailure(400, `{"error":{"field":"email"},"message":"Validation failed"}`),
			want: NormalizedError{Message: "Validation failed", Status: 400, Code: "HTTP_400"},
		},
		{
			name: "object error without message",
			f:    responseFailure(400, `{"error":{"field":"email"}}`),
			want: NormalizedError{Message: "Request failed", Status: 400, Code: "HTTP_400"},
		},
		{
			name: "null error is absent",
			f:    responseFailure(404, `{"error":null,"message":"Claim not found","code":null}`),
			want: NormalizedError{Message: "Claim not found", Status: 404, Code: "HTTP_404"},
		},
		{
			name: "json array body",
			f:    responseFailure(500, `["unexpected"]`),
			want: NormalizedError{Message: "Request failed", Status: 500, Code: "HTTP_500"},
		},
		{
			name: "empty error string is kept",
			f:    responseFailure(400, `{"error":"","message":"unused"}`),
			want: NormalizedError{Message: "", Status: 400, Code: "HTTP_400"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.f)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNormalize_Details(t *testing.T) {
	got := Normalize(responseFailure(400, `{"error":"Invalid","details":{"field":"email"}}`))
	assert.Equal(t, map[string]any{"field": "email"}, got.Details)
}

func TestNormalize_MistypedFieldKeepsTheRest(t *testing.T) {
	got := Normalize(responseFailure(422, `{"message":"Policy number is invalid","code":1001,"details":{"field":"policyNumber"}}`))
	assert.Equal(t, "Policy number is invalid", got.Message)
	assert.Equal(t, Code("1001"), got.Code)
	assert.Equal(t, map[string]any{"field": "policyNumber"}, got.Details)
}

func TestNormalize_NoResponse(t *testing.T) {
	got := Normalize(Failure{Err: errors.New("dial tcp: i/o timeout")})
	assert.Equal(t, NormalizedError{Message: "Network error - please check your connection", Status: 0, Code: CodeNetworkError}, *got)
}

func TestNormalize_NotSent(t *testing.T) {
	got := Normalize(Failure{Err: fmt.Errorf("%w: missing method", ErrRequestNotSent), NotSent: true})
	assert.Equal(t, 500, got.Status)
	assert.Equal(t, CodeUnknownError, got.Code)
	assert.Equal(t, "request not sent: missing method", got.Message)

	got = Normalize(Failure{NotSent: true})
	assert.Equal(t, "An unexpected error occurred", got.Message)
}

func TestNormalize_Pure(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kind := rapid.IntRange(0, 2).Draw(rt, "kind")
		var f func() Failure
		switch kind {
		case 0:
			status := rapid.IntRange(300, 599).Draw(rt, "status")
			msg := rapid.String().Draw(rt, "message")
			body := fmt.Sprintf(`{"message":%q,"details":[1,2]}`, msg)
			f = func() Failure { return responseFailure(status, body) }
		case 1:
			msg := rapid.String().Draw(rt, "err")
			f = func() Failure { return Failure{Err: errors.New(msg)} }
		default:
			msg := rapid.String().Draw(rt, "err")
			f = func() Failure { return Failure{Err: errors.New(msg), NotSent: true} }
		}
		a, b := Normalize(f()), Normalize(f())
		if !assert.ObjectsAreEqual(a, b) {
			rt.Fatalf("not pure: %+v vs %+v", a, b)
		}
	})
}

func TestUnauthorizedError(t *testing.T) {
	got := unauthorizedError(responseFailure(401, `{"error":"Token expired"}`))
	assert.Equal(t, NormalizedError{Message: "Token expired", Status: 401, Code: CodeUnauthorized}, *got)

	got = unauthorizedError(responseFailure(401, ``))
	assert.Equal(t, "Session expired - please log in again", got.Message)
}

func TestAsNormalizedError(t *testing.T) {
	ne := &NormalizedError{Status: 404, Code: "HTTP_404", Message: "missing"}
	wrapped := fmt.Errorf("load claim: %w", ne)

	got, ok := AsNormalizedError(wrapped)
	require.True(t, ok)
	assert.Same(t, ne, got)

	_, ok = AsNormalizedError(errors.New("plain"))
	assert.False(t, ok)
}
