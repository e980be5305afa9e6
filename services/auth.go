package services

import (
	"context"
	"fmt"

	portalbridge "github.com/opengovern/portal-bridge"
	"github.com/opengovern/portal-bridge/utils"
)

const authPrefix = "/auth"

type AuthService struct {
	sdk *portalbridge.PortalBridge
}

// Login authenticates without a credential and stores the returned token.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*portalbridge.ResponseEnvelope[AuthResult], error) {
	env, err := portalbridge.Post[AuthResult](ctx, s.sdk, authPrefix+"/login", creds, portalbridge.SkipAuth())
	if err != nil {
		return nil, err
	}
	if err := s.storeCredential(env); err != nil {
		return nil, err
	}
	return env, nil
}

// Register creates an account and stores the returned token.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*portalbridge.ResponseEnvelope[AuthResult], error) {
	env, err := portalbridge.Post[AuthResult](ctx, s.sdk, authPrefix+"/register", reg, portalbridge.SkipAuth())
	if err != nil {
		return nil, err
	}
	if err := s.storeCredential(env); err != nil {
		return nil, err
	}
	return env, nil
}

// Logout tells the server and always clears the local credential. The server
// call's error is returned only when clearing succeeded.
func (s *AuthService) Logout(ctx context.Context) error {
	_, callErr := portalbridge.Post[struct{}](ctx, s.sdk, authPrefix+"/logout", nil, portalbridge.WithMaxRetries(-1))
	if err := s.sdk.TokenStore().ClearToken(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	s.sdk.RemoveDefaultHeader("Authorization")
	if ne, ok := portalbridge.AsNormalizedError(callErr); ok && ne.IsUnauthorized() {
		// Already logged out server-side.
		return nil
	}
	return callErr
}

func (s *AuthService) Me(ctx context.Context) (*portalbridge.ResponseEnvelope[User], error) {
	return portalbridge.Get[User](ctx, s.sdk, authPrefix+"/me")
}

func (s *AuthService) ChangePassword(ctx context.Context, change PasswordChange) (*portalbridge.ResponseEnvelope[struct{}], error) {
	return portalbridge.Post[struct{}](ctx, s.sdk, authPrefix+"/change-password", change)
}

// IsAuthenticated reports whether a credential is held.
func (s *AuthService) IsAuthenticated() bool {
	_, ok := s.sdk.TokenStore().Token()
	return ok
}

func (s *AuthService) storeCredential(env *portalbridge.ResponseEnvelope[AuthResult]) error {
	if !env.Success || env.Data == nil || env.Data.Token == "" {
		return nil
	}
	token := env.Data.Token
	if err := s.sdk.TokenStore().SetToken(token); err != nil {
		return portalbridge.Normalize(portalbridge.Failure{
			Err:     fmt.Errorf("store credential: %w", err),
			NotSent: true,
		})
	}

	log := s.sdk.Logger()
	ev := log.Info().Str("credential_fp", utils.Fingerprint(token))
	if exp, ok := utils.CredentialExpiry(token); ok {
		ev = ev.Time("expires_at", exp)
	}
	ev.Msg("credential stored")
	return nil
}
