package portalbridge

import (
	"errors"
	"sync/atomic"

	"golang.org/x/oauth2"

	"github.com/opengovern/portal-bridge/utils"
)

// CredentialKey is the key the credential is persisted under.
const CredentialKey = "authToken"

// TokenStore holds the current bearer credential. Implementations must be safe
// for concurrent use: a reader sees either the old or the new credential.
type TokenStore interface {
	// Token returns the credential, or "" and false when absent.
	Token() (string, bool)
	SetToken(token string) error
	ClearToken() error
}

// MemoryTokenStore keeps the credential in an atomic cell.
type MemoryTokenStore struct {
	token atomic.Pointer[string]
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Token() (string, bool) {
	p := m.token.Load()
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

func (m *MemoryTokenStore) SetToken(token string) error {
	if token == "" {
		return m.ClearToken()
	}
	m.token.Store(&token)
	return nil
}

func (m *MemoryTokenStore) ClearToken() error {
	m.token.Store(nil)
	return nil
}

// ErrNoCredential is returned by a TokenSource when the store is empty.
var ErrNoCredential = errors.New("no credential stored")

// storeTokenSource exposes a TokenStore as an oauth2.TokenSource.
type storeTokenSource struct {
	store TokenStore
}

// TokenSource adapts store to oauth2. Expiry is filled in for JWT credentials.
func TokenSource(store TokenStore) oauth2.TokenSource {
	return &storeTokenSource{store: store}
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	raw, ok := s.store.Token()
	if !ok {
		return nil, ErrNoCredential
	}
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if exp, ok := utils.CredentialExpiry(raw); ok {
		tok.Expiry = exp
	}
	return tok, nil
}
