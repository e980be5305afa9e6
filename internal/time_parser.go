// internal/time_parser.go
// ------------------------
// Helpers for the time formats found in rate-limit headers.
//
// Functions:
// - ParseRetryAfter: "120" (seconds) or an HTTP date into an absolute unix ms.
// - ParseResetHeader: a unix timestamp in seconds or milliseconds into unix ms.
// - UnixToMs: seconds to milliseconds.
// - IsInFuture: whether a unix ms timestamp is ahead of now.
package internal

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ParseRetryAfter converts a Retry-After value into an absolute unix ms.
func ParseRetryAfter(s string, now time.Time) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if sec, err := strconv.Atoi(s); err == nil {
		if sec < 0 {
			return 0, false
		}
		return now.UnixMilli() + int64(sec)*1000, true
	}
	if t, err := http.ParseTime(s); err == nil {
		return t.UnixMilli(), true
	}
	return 0, false
}

// ParseResetHeader accepts seconds or milliseconds since the epoch.
func ParseResetHeader(s string) (int64, bool) {
	ts, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || ts <= 0 {
		return 0, false
	}
	// Anything below 1e12 cannot be a millisecond timestamp after 2001.
	if ts < 1_000_000_000_000 {
		return UnixToMs(ts), true
	}
	return ts, true
}

// UnixToMs converts a UNIX timestamp in seconds to milliseconds.
func UnixToMs(timestamp int64) int64 {
	return timestamp * 1000
}

// IsInFuture checks if a timestamp (in ms) is in the future relative to now.
func IsInFuture(ms int64, now time.Time) bool {
	return ms > now.UnixMilli()
}
