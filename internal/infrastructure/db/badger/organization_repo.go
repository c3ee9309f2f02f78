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

const organizationStoreDir = "organizations"

type organizationRepository struct {
	store *badgerhold.Store
}

func NewOrganizationRepository(config ...interface{}) (domain.OrganizationRepository, error) {
	baseDir, logger, ok := repoConfig(config...)
	if !ok {
		return nil, fmt.Errorf("invalid config")
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, organizationStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open organization store: %s", err)
	}

	return &organizationRepository{store}, nil
}

func (r *organizationRepository) AddOrganization(
	ctx context.Context, org domain.Organization,
) error {
	if err := r.store.Insert(org.ID, org); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("organization %s already exists", org.ID)
		}
		return err
	}
	return nil
}

func (r *organizationRepository) GetOrganization(
	ctx context.Context, id string,
) (*domain.Organization, error) {
	var org domain.Organization
	err := r.store.Get(id, &org)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

func (r *organizationRepository) GetOrganizationByAPIKey(
	ctx context.Context, apiKey string,
) (*domain.Organization, error) {
	var orgs []domain.Organization
	if err := r.store.Find(&orgs, badgerhold.Where("APIKey").Eq(apiKey)); err != nil {
		return nil, fmt.Errorf("failed to look up organization by api key: %w", err)
	}
	if len(orgs) == 0 {
		return nil, nil
	}
	return &orgs[0], nil
}

func (r *organizationRepository) UpdateOrganization(
	ctx context.Context, id string,
	updateFn func(*domain.Organization) (*domain.Organization, error),
) error {
	org, err := r.GetOrganization(ctx, id)
	if err != nil {
		return err
	}
	if org == nil {
		return fmt.Errorf("organization %s not found", id)
	}

	updated, err := updateFn(org)
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

func (r *organizationRepository) Close() {
	// nolint:all
	r.store.Close()
}
