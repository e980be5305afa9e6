package services

import (
	"context"
	"io"

	portalbridge "github.com/opengovern/portal-bridge"
)

const claimsPrefix = "/claims"

type ClaimsService struct {
	sdk *portalbridge.PortalBridge
}

func (s *ClaimsService) List(ctx context.Context, page *portalbridge.PageParams, filter *ClaimFilter) (*portalbridge.PaginatedEnvelope[Claim], error) {
	params := withFilters(page, func(f map[string]string) {
		if filter == nil {
			return
		}
		f["status"] = string(filter.Status)
		f["policyId"] = filter.PolicyID
	})
	return portalbridge.GetPaginated[Claim](ctx, s.sdk, claimsPrefix, params)
}

func (s *ClaimsService) Get(ctx context.Context, id string) (*portalbridge.ResponseEnvelope[Claim], error) {
	return portalbridge.Get[Claim](ctx, s.sdk, path(claimsPrefix, id))
}

// Create submits a new claim. A retried submission is resent as-is; the
// server has no idempotency key to deduplicate it.
func (s *ClaimsService) Create(ctx context.Context, in ClaimInput) (*portalbridge.ResponseEnvelope[Claim], error) {
	return portalbridge.Post[Claim](ctx, s.sdk, claimsPrefix, in)
}

func (s *ClaimsService) Update(ctx context.Context, id string, update ClaimUpdate) (*portalbridge.ResponseEnvelope[Claim], error) {
	return portalbridge.Patch[Claim](ctx, s.sdk, path(claimsPrefix, id), update)
}

// UploadDocument attaches a file to a claim, reporting percent progress.
func (s *ClaimsService) UploadDocument(ctx context.Context, claimID, fileName string, content io.Reader, onProgress func(percent int)) (*portalbridge.ResponseEnvelope[Document], error) {
	return portalbridge.Upload[Document](ctx, s.sdk, path(claimsPrefix, claimID, "documents"), fileName, content, onProgress)
}

// GetMany fetches several claims concurrently. Every fetch runs to completion;
// the error is the first failure in ids order.
func (s *ClaimsService) GetMany(ctx context.Context, ids []string) ([]*portalbridge.ResponseEnvelope[Claim], error) {
	calls := make([]portalbridge.BatchCall[*portalbridge.ResponseEnvelope[Claim]], len(ids))
	for i, id := range ids {
		calls[i] = func(ctx context.Context) (*portalbridge.ResponseEnvelope[Claim], error) {
			return s.Get(ctx, id)
		}
	}
	return portalbridge.Batch(ctx, calls...)
}
