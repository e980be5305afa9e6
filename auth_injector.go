package portalbridge

import (
	"context"

	"golang.org/x/oauth2"
)

// AuthTokenInjector attaches the stored credential to outgoing calls.
type AuthTokenInjector struct {
	source oauth2.TokenSource
}

func NewAuthTokenInjector(store TokenStore) *AuthTokenInjector {
	return &AuthTokenInjector{source: TokenSource(store)}
}

// Inject sets "Authorization: Bearer <credential>" when a credential exists and
// leaves the request untouched otherwise. Expired credentials are still sent;
// the server decides. It never fails.
func (a *AuthTokenInjector) Inject(req *RequestContext) {
	if req.Flags.SkipAuth {
		return
	}
	tok, err := a.source.Token()
	if err != nil || tok.AccessToken == "" {
		return
	}
	req.SetHeader(headerAuthorization, tok.Type()+" "+tok.AccessToken)
}

// Interceptor returns the injector as a pipeline step.
func (a *AuthTokenInjector) Interceptor() RequestInterceptor {
	return func(_ context.Context, req *RequestContext) (*RequestContext, error) {
		a.Inject(req)
		return req, nil
	}
}
