package domain

import "context"

type ChainRepository interface {
	// AddChain persists a newly created chain.
	AddChain(ctx context.Context, chain Chain) error
	// GetChain retrieves a chain by id, nil when absent.
	GetChain(ctx context.Context, id string) (*Chain, error)
	// GetChainsByOrg retrieves all chains owned by an organization, most
	// recent first.
	GetChainsByOrg(ctx context.Context, orgID string) ([]Chain, error)
	// UpdateChain applies updateFn to the stored chain and persists the
	// result as a single read-modify-write. Callers serialize conflicting
	// updates through the per-chain lock.
	UpdateChain(ctx context.Context, id string, updateFn func(*Chain) (*Chain, error)) error
	Close()
}
