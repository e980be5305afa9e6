// Package services holds thin per-resource wrappers over the portal bridge.
// Each method expands a fixed path template, dispatches through the bridge and
// returns the server envelope unchanged.
package services

import (
	"net/url"

	portalbridge "github.com/opengovern/portal-bridge"
)

type Services struct {
	Auth     *AuthService
	Users    *UsersService
	Policies *PoliciesService
	Claims   *ClaimsService
}

func New(sdk *portalbridge.PortalBridge) *Services {
	return &Services{
		Auth:     &AuthService{sdk: sdk},
		Users:    &UsersService{sdk: sdk},
		Policies: &PoliciesService{sdk: sdk},
		Claims:   &ClaimsService{sdk: sdk},
	}
}

// path joins a resource prefix with escaped segments.
func path(prefix string, segments ...string) string {
	p := prefix
	for _, s := range segments {
		p += "/" + url.PathEscape(s)
	}
	return p
}
