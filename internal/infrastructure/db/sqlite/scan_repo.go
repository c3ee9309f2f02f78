package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/morphcodes/morphd/internal/core/domain"
)

type scanRepository struct {
	db *sql.DB
}

func NewScanRepository(config ...interface{}) (domain.ScanRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open scan repository: invalid config")
	}
	return &scanRepository{db}, nil
}

func (r *scanRepository) Close() {
	_ = r.db.Close()
}

func (r *scanRepository) AddScan(ctx context.Context, scan domain.ScanAttempt) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO scan (
			id, chain_id, value, position, accepted, reason, ip, user_agent, scanned_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.ChainID, scan.Value, scan.Position, boolToInt(scan.Accepted),
		int(scan.Reason), scan.IP, scan.UserAgent, scan.ScannedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}
	return nil
}

func (r *scanRepository) GetScansByChain(
	ctx context.Context, chainID string, limit int,
) ([]domain.ScanAttempt, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, chain_id, value, position, accepted, reason, ip, user_agent, scanned_at
		FROM scan WHERE chain_id = ? ORDER BY scanned_at DESC LIMIT ?`,
		chainID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	// nolint
	defer rows.Close()

	scans := make([]domain.ScanAttempt, 0)
	for rows.Next() {
		var scan domain.ScanAttempt
		var accepted, reason int
		var scannedAt int64
		if err := rows.Scan(
			&scan.ID, &scan.ChainID, &scan.Value, &scan.Position, &accepted, &reason,
			&scan.IP, &scan.UserAgent, &scannedAt,
		); err != nil {
			return nil, err
		}
		scan.Accepted = accepted != 0
		scan.Reason = domain.RejectionReason(reason)
		scan.ScannedAt = time.UnixMilli(scannedAt)
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

func (r *scanRepository) GetStats(
	ctx context.Context, chainID string,
) (*domain.ScanStats, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COALESCE(SUM(accepted), 0) FROM scan WHERE chain_id = ?`,
		chainID,
	)
	var total, accepted int64
	if err := row.Scan(&total, &accepted); err != nil {
		if err == sql.ErrNoRows {
			return &domain.ScanStats{}, nil
		}
		return nil, err
	}
	return &domain.ScanStats{
		Total:    total,
		Accepted: accepted,
		Rejected: total - accepted,
	}, nil
}
