// errors.go
// ---------
// Every failure leaving the bridge is a *NormalizedError. Transports report raw
// failures (an error, a non-2xx response, or both); Normalize folds them into a
// closed set of codes:
//
//   - UNAUTHORIZED   401 on an authenticated call, never retried
//   - NETWORK_ERROR  nothing came back, retried within budget
//   - HTTP_<status>  any other non-2xx, retried only for 5xx
//   - UNKNOWN_ERROR  the request never left, never retried
//
// Servers may supply their own code in the error body, which replaces HTTP_<status>.
package portalbridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNetworkError Code = "NETWORK_ERROR"
	CodeUnknownError Code = "UNKNOWN_ERROR"
)

// HTTPCode returns the fallback code for a status without a server-supplied code.
func HTTPCode(status int) Code {
	return Code("HTTP_" + strconv.Itoa(status))
}

const (
	msgRequestFailed = "Request failed"
	msgNetworkError  = "Network error - please check your connection"
	msgUnknownError  = "An unexpected error occurred"
	msgUnauthorized  = "Session expired - please log in again"
)

// ErrRequestNotSent marks transport errors raised before anything reached the wire.
var ErrRequestNotSent = errors.New("request not sent")

// NormalizedError is the only error shape surfaced to callers.
type NormalizedError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Code    Code   `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *NormalizedError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
}

// IsUnauthorized reports whether the call ended in a forced logout.
func (e *NormalizedError) IsUnauthorized() bool {
	return e.Code == CodeUnauthorized
}

// AsNormalizedError extracts a *NormalizedError from err.
func AsNormalizedError(err error) (*NormalizedError, bool) {
	var ne *NormalizedError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// Failure is the raw outcome of an attempt that did not succeed.
type Failure struct {
	// Response is nil when nothing came back.
	Response *NormalizedResponse
	Err      error
	// NotSent is true when the request failed before reaching the transport.
	NotSent bool
}

// newFailure classifies what a transport returned.
func newFailure(resp *NormalizedResponse, err error) Failure {
	if err != nil && errors.Is(err, ErrRequestNotSent) {
		return Failure{Err: err, NotSent: true}
	}
	if err != nil {
		return Failure{Response: resp, Err: err}
	}
	return Failure{Response: resp}
}

// Status is the response status, or 0 when nothing came back.
func (f Failure) Status() int {
	if f.Response == nil {
		return 0
	}
	return f.Response.StatusCode
}

// HasResponse reports whether the server answered.
func (f Failure) HasResponse() bool {
	return !f.NotSent && f.Response != nil
}

// Normalize maps any failure to a NormalizedError. It is pure.
func Normalize(f Failure) *NormalizedError {
	switch {
	case f.NotSent:
		msg := msgUnknownError
		if f.Err != nil && f.Err.Error() != "" {
			msg = f.Err.Error()
		}
		return &NormalizedError{Message: msg, Status: http.StatusInternalServerError, Code: CodeUnknownError}
	case f.Response == nil:
		return &NormalizedError{Message: msgNetworkError, Status: 0, Code: CodeNetworkError}
	}

	status := f.Response.StatusCode
	out := &NormalizedError{Message: msgRequestFailed, Status: status, Code: HTTPCode(status)}

	// Fields are read one by one so a single oddly typed field does not
	// discard the others.
	var body map[string]json.RawMessage
	if len(f.Response.Data) == 0 || json.Unmarshal(f.Response.Data, &body) != nil {
		return out
	}
	if msg, ok := stringField(body, "error"); ok {
		out.Message = msg
	} else if msg, ok := stringField(body, "message"); ok {
		out.Message = msg
	}
	if code, ok := codeField(body); ok {
		out.Code = code
	}
	if raw, ok := body["details"]; ok && !isNull(raw) {
		var details any
		if json.Unmarshal(raw, &details) == nil {
			out.Details = details
		}
	}
	return out
}

// stringField returns body[key] when it is a JSON string. Empty strings count.
func stringField(body map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := body[key]
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// codeField accepts a string code or a numeric one, kept as its literal text.
func codeField(body map[string]json.RawMessage) (Code, bool) {
	if s, ok := stringField(body, "code"); ok && s != "" {
		return Code(s), true
	}
	raw, ok := body["code"]
	if !ok || isNull(raw) {
		return "", false
	}
	var n json.Number
	if json.Unmarshal(raw, &n) != nil || n == "" {
		return "", false
	}
	return Code(n.String()), true
}

// isNull treats a JSON null like an absent field.
func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// unauthorizedError is the rejection for a forced logout.
func unauthorizedError(f Failure) *NormalizedError {
	ne := Normalize(f)
	ne.Status = http.StatusUnauthorized
	ne.Code = CodeUnauthorized
	if ne.Message == msgRequestFailed {
		ne.Message = msgUnauthorized
	}
	return ne
}

// unknownError is the rejection for a pipeline step that failed outside the transport.
func unknownError(err error) *NormalizedError {
	return Normalize(Failure{Err: err, NotSent: true})
}
