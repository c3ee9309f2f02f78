package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const scanStoreDir = "scans"

type scanRepository struct {
	store *badgerhold.Store
}

func NewScanRepository(config ...interface{}) (domain.ScanRepository, error) {
	baseDir, logger, ok := repoConfig(config...)
	if !ok {
		return nil, fmt.Errorf("invalid config")
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, scanStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan store: %s", err)
	}

	return &scanRepository{store}, nil
}

func (r *scanRepository) AddScan(ctx context.Context, scan domain.ScanAttempt) error {
	if err := r.store.Insert(scan.ID, scan); err != nil {
		return fmt.Errorf("failed to append scan record: %w", err)
	}
	return nil
}

func (r *scanRepository) GetScansByChain(
	ctx context.Context, chainID string, limit int,
) ([]domain.ScanAttempt, error) {
	var scans []domain.ScanAttempt
	query := badgerhold.Where("ChainID").Eq(chainID).SortBy("ScannedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := r.store.Find(&scans, query); err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return scans, nil
}

func (r *scanRepository) GetStats(
	ctx context.Context, chainID string,
) (*domain.ScanStats, error) {
	total, err := r.store.Count(
		domain.ScanAttempt{}, badgerhold.Where("ChainID").Eq(chainID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}
	accepted, err := r.store.Count(
		domain.ScanAttempt{}, badgerhold.Where("ChainID").Eq(chainID).And("Accepted").Eq(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count accepted scans: %w", err)
	}

	return &domain.ScanStats{
		Total:    int64(total),
		Accepted: int64(accepted),
		Rejected: int64(total - accepted),
	}, nil
}

func (r *scanRepository) Close() {
	// nolint:all
	r.store.Close()
}
