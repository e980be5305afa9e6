package services

import (
	"context"

	portalbridge "github.com/opengovern/portal-bridge"
)

const policiesPrefix = "/policies"

type PoliciesService struct {
	sdk *portalbridge.PortalBridge
}

// List returns one page of policies. Filter values are sent as query parameters.
func (s *PoliciesService) List(ctx context.Context, page *portalbridge.PageParams, filter *PolicyFilter) (*portalbridge.PaginatedEnvelope[Policy], error) {
	params := withFilters(page, func(f map[string]string) {
		if filter == nil {
			return
		}
		f["status"] = string(filter.Status)
		f["type"] = filter.Type
		f["search"] = filter.Search
	})
	return portalbridge.GetPaginated[Policy](ctx, s.sdk, policiesPrefix, params)
}

func (s *PoliciesService) Get(ctx context.Context, id string) (*portalbridge.ResponseEnvelope[Policy], error) {
	return portalbridge.Get[Policy](ctx, s.sdk, path(policiesPrefix, id))
}

func (s *PoliciesService) Create(ctx context.Context, in PolicyInput) (*portalbridge.ResponseEnvelope[Policy], error) {
	return portalbridge.Post[Policy](ctx, s.sdk, policiesPrefix, in)
}

func (s *PoliciesService) Update(ctx context.Context, id string, in PolicyInput) (*portalbridge.ResponseEnvelope[Policy], error) {
	return portalbridge.Put[Policy](ctx, s.sdk, path(policiesPrefix, id), in)
}

func (s *PoliciesService) Renew(ctx context.Context, id string) (*portalbridge.ResponseEnvelope[Policy], error) {
	return portalbridge.Post[Policy](ctx, s.sdk, path(policiesPrefix, id, "renew"), nil)
}

func (s *PoliciesService) Cancel(ctx context.Context, id, reason string) (*portalbridge.ResponseEnvelope[Policy], error) {
	body := map[string]string{"reason": reason}
	return portalbridge.Post[Policy](ctx, s.sdk, path(policiesPrefix, id, "cancel"), body)
}

// withFilters copies page and lets fill add filter values.
func withFilters(page *portalbridge.PageParams, fill func(map[string]string)) *portalbridge.PageParams {
	out := portalbridge.PageParams{}
	if page != nil {
		out = *page
	}
	filters := make(map[string]string, len(out.Filters))
	for k, v := range out.Filters {
		filters[k] = v
	}
	fill(filters)
	out.Filters = filters
	return &out
}
