package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/morphcodes/morphd/internal/core/domain"
)

type chainRepository struct {
	db *sql.DB
}

func NewChainRepository(config ...interface{}) (domain.ChainRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open chain repository: invalid config")
	}
	return &chainRepository{db}, nil
}

func (r *chainRepository) Close() {
	_ = r.db.Close()
}

func (r *chainRepository) AddChain(ctx context.Context, chain domain.Chain) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO chain (
			id, name, description, seed, length, cursor, active, org_id, created_by,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chain.ID, chain.Name, chain.Description, chain.Seed, chain.Length, chain.Cursor,
		boolToInt(chain.Active), chain.OrgID, chain.CreatedBy,
		chain.CreatedAt.UnixMilli(), chain.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chain: %w", err)
	}
	return nil
}

func (r *chainRepository) GetChain(ctx context.Context, id string) (*domain.Chain, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, name, description, seed, length, cursor, active, org_id, created_by,
			created_at, updated_at
		FROM chain WHERE id = ?`,
		id,
	)
	chain, err := scanChainRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return chain, nil
}

func (r *chainRepository) GetChainsByOrg(
	ctx context.Context, orgID string,
) ([]domain.Chain, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, name, description, seed, length, cursor, active, org_id, created_by,
			created_at, updated_at
		FROM chain WHERE org_id = ? ORDER BY created_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chains: %w", err)
	}
	// nolint
	defer rows.Close()

	chains := make([]domain.Chain, 0)
	for rows.Next() {
		chain, err := scanChainRow(rows)
		if err != nil {
			return nil, err
		}
		chains = append(chains, *chain)
	}
	return chains, rows.Err()
}

// UpdateChain runs the read-modify-write inside one transaction so the row
// observed by updateFn is the row being replaced.
func (r *chainRepository) UpdateChain(
	ctx context.Context, id string, updateFn func(*domain.Chain) (*domain.Chain, error),
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	// nolint
	defer tx.Rollback()

	row := tx.QueryRowContext(
		ctx,
		`SELECT id, name, description, seed, length, cursor, active, org_id, created_by,
			created_at, updated_at
		FROM chain WHERE id = ?`,
		id,
	)
	chain, err := scanChainRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrChainNotFound
	}
	if err != nil {
		return err
	}

	updated, err := updateFn(chain)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE chain SET cursor = ?, active = ?, name = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		updated.Cursor, boolToInt(updated.Active), updated.Name, updated.Description,
		updated.UpdatedAt.UnixMilli(), id,
	); err != nil {
		return fmt.Errorf("failed to update chain: %w", err)
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChainRow(row rowScanner) (*domain.Chain, error) {
	var chain domain.Chain
	var active int
	var createdAt, updatedAt int64
	if err := row.Scan(
		&chain.ID, &chain.Name, &chain.Description, &chain.Seed, &chain.Length,
		&chain.Cursor, &active, &chain.OrgID, &chain.CreatedBy, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	chain.Active = active != 0
	chain.CreatedAt = time.UnixMilli(createdAt)
	chain.UpdatedAt = time.UnixMilli(updatedAt)
	return &chain, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
