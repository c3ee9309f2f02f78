package domain

import "context"

type OrganizationRepository interface {
	AddOrganization(ctx context.Context, org Organization) error
	// GetOrganization retrieves an organization by id, nil when absent.
	GetOrganization(ctx context.Context, id string) (*Organization, error)
	// GetOrganizationByAPIKey resolves an API credential, nil when unknown.
	GetOrganizationByAPIKey(ctx context.Context, apiKey string) (*Organization, error)
	// UpdateOrganization applies updateFn to the stored record and persists
	// the result.
	UpdateOrganization(
		ctx context.Context, id string, updateFn func(*Organization) (*Organization, error),
	) error
	Close()
}
