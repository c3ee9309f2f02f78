package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const chainStoreDir = "chains"

type chainRepository struct {
	store *badgerhold.Store
}

func NewChainRepository(config ...interface{}) (domain.ChainRepository, error) {
	baseDir, logger, ok := repoConfig(config...)
	if !ok {
		return nil, fmt.Errorf("invalid config")
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, chainStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open chain store: %s", err)
	}

	return &chainRepository{store}, nil
}

func (r *chainRepository) AddChain(ctx context.Context, chain domain.Chain) error {
	if err := r.store.Insert(chain.ID, chain); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("chain %s already exists", chain.ID)
		}
		return err
	}
	return nil
}

func (r *chainRepository) GetChain(ctx context.Context, id string) (*domain.Chain, error) {
	var chain domain.Chain
	err := r.store.Get(id, &chain)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chain: %w", err)
	}
	return &chain, nil
}

func (r *chainRepository) GetChainsByOrg(
	ctx context.Context, orgID string,
) ([]domain.Chain, error) {
	var chains []domain.Chain
	query := badgerhold.Where("OrgID").Eq(orgID).SortBy("CreatedAt").Reverse()
	if err := r.store.Find(&chains, query); err != nil {
		return nil, fmt.Errorf("failed to list chains: %w", err)
	}
	return chains, nil
}

func (r *chainRepository) UpdateChain(
	ctx context.Context, id string, updateFn func(*domain.Chain) (*domain.Chain, error),
) error {
	chain, err := r.GetChain(ctx, id)
	if err != nil {
		return err
	}
	if chain == nil {
		return domain.ErrChainNotFound
	}

	updated, err := updateFn(chain)
	if err != nil {
		return err
	}

	if err := r.store.Update(id, *updated); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Update(id, *updated)
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *chainRepository) Close() {
	// nolint:all
	r.store.Close()
}
