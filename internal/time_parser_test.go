package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ms, ok := ParseRetryAfter("120", now)
	assert.True(t, ok)
	assert.Equal(t, now.Add(2*time.Minute).UnixMilli(), ms)

	ms, ok = ParseRetryAfter("Wed, 01 May 2024 12:00:30 GMT", now)
	assert.True(t, ok)
	assert.Equal(t, now.Add(30*time.Second).UnixMilli(), ms)

	for _, bad := range []string{"", "-5", "soon"} {
		_, ok = ParseRetryAfter(bad, now)
		assert.False(t, ok, bad)
	}
}

func TestParseResetHeader(t *testing.T) {
	ms, ok := ParseResetHeader("1700000000")
	assert.True(t, ok)
	assert.Equal(t, int64(1_700_000_000_000), ms)

	ms, ok = ParseResetHeader(" 1700000000123 ")
	assert.True(t, ok)
	assert.Equal(t, int64(1_700_000_000_123), ms)

	_, ok = ParseResetHeader("0")
	assert.False(t, ok)
	_, ok = ParseResetHeader("abc")
	assert.False(t, ok)
}

func TestIsInFuture(t *testing.T) {
	now := time.UnixMilli(1000)
	assert.True(t, IsInFuture(1001, now))
	assert.False(t, IsInFuture(1000, now))
}
