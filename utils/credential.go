// utils/credential.go
package utils

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/blake2b"
)

// CredentialExpiry returns the exp claim of a JWT credential.
// The signature is not checked: the portal server is the only verifier, the client
// only needs a hint for logging and oauth2.Token.Expiry.
func CredentialExpiry(credential string) (time.Time, bool) {
	if credential == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return time.Time{}, false
	}
	exp, ok := claims["exp"]
	if !ok {
		return time.Time{}, false
	}
	switch v := exp.(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	}
	return time.Time{}, false
}

// CredentialSubject returns the sub claim of a JWT credential, if any.
func CredentialSubject(credential string) (string, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &claims); err != nil {
		return "", fmt.Errorf("failed to parse credential: %w", err)
	}
	return claims.Subject, nil
}

// Fingerprint is a short log-safe identifier for a credential.
func Fingerprint(credential string) string {
	if credential == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:6])
}
