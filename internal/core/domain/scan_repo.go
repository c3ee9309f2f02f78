package domain

import "context"

// ScanStats aggregates a chain's audit trail.
type ScanStats struct {
	Total    int64
	Accepted int64
	Rejected int64
}

type ScanRepository interface {
	// AddScan appends an audit record. The log is append-only: records are
	// never updated or deleted and survive chain deactivation.
	AddScan(ctx context.Context, scan ScanAttempt) error
	// GetScansByChain retrieves up to limit records, most recent first.
	GetScansByChain(ctx context.Context, chainID string, limit int) ([]ScanAttempt, error)
	// GetStats counts a chain's scan records.
	GetStats(ctx context.Context, chainID string) (*ScanStats, error)
	Close()
}
