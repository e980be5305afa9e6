package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialClaims(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-7",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	got, ok := CredentialExpiry(raw)
	assert.True(t, ok)
	assert.True(t, got.Equal(exp))

	sub, err := CredentialSubject(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-7", sub)
}

func TestCredentialExpiry_Opaque(t *testing.T) {
	_, ok := CredentialExpiry("")
	assert.False(t, ok)
	_, ok = CredentialExpiry("not-a-jwt")
	assert.False(t, ok)

	_, err := CredentialSubject("not-a-jwt")
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	assert.Empty(t, Fingerprint(""))
	fp := Fingerprint("secret-token")
	assert.Len(t, fp, 12)
	assert.Equal(t, fp, Fingerprint("secret-token"))
	assert.NotEqual(t, fp, Fingerprint("other-token"))
	assert.NotContains(t, fp, "secret")
}
