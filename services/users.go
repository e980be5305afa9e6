package services

import (
	"context"

	portalbridge "github.com/opengovern/portal-bridge"
)

const usersPrefix = "/users"

type UsersService struct {
	sdk *portalbridge.PortalBridge
}

func (s *UsersService) List(ctx context.Context, page *portalbridge.PageParams) (*portalbridge.PaginatedEnvelope[User], error) {
	return portalbridge.GetPaginated[User](ctx, s.sdk, usersPrefix, page)
}

func (s *UsersService) Get(ctx context.Context, id string) (*portalbridge.ResponseEnvelope[User], error) {
	return portalbridge.Get[User](ctx, s.sdk, path(usersPrefix, id))
}

func (s *UsersService) Update(ctx context.Context, id string, update UserUpdate) (*portalbridge.ResponseEnvelope[User], error) {
	return portalbridge.Put[User](ctx, s.sdk, path(usersPrefix, id), update)
}
