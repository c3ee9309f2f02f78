package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/morphcodes/morphd/internal/core/domain"
)

type tokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(config ...interface{}) (domain.TokenRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open token repository: invalid config")
	}
	return &tokenRepository{db}, nil
}

func (r *tokenRepository) Close() {
	_ = r.db.Close()
}

func (r *tokenRepository) AddTokens(ctx context.Context, tokens []domain.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	// nolint
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO token (chain_id, position, value, consumed) VALUES (?, ?, ?, 0)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	// nolint
	defer stmt.Close()

	for _, token := range tokens {
		if _, err := stmt.ExecContext(
			ctx, token.ChainID, token.Position, token.Value,
		); err != nil {
			return fmt.Errorf("failed to insert token: %w", err)
		}
	}
	return tx.Commit()
}

func (r *tokenRepository) GetToken(
	ctx context.Context, chainID string, position int,
) (*domain.Token, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT chain_id, position, value, consumed FROM token
		WHERE chain_id = ? AND position = ?`,
		chainID, position,
	)
	token, err := scanTokenRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

// GetTokenByValue prefers the highest unconsumed position when the same value
// appears more than once in a chain, which is the one a descending cursor can
// still accept.
func (r *tokenRepository) GetTokenByValue(
	ctx context.Context, chainID, value string,
) (*domain.Token, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT chain_id, position, value, consumed FROM token
		WHERE chain_id = ? AND value = ?
		ORDER BY consumed ASC, position DESC LIMIT 1`,
		chainID, value,
	)
	token, err := scanTokenRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (r *tokenRepository) MarkConsumed(
	ctx context.Context, chainID string, position int,
) error {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE token SET consumed = 1 WHERE chain_id = ? AND position = ?`,
		chainID, position,
	)
	if err != nil {
		return fmt.Errorf("failed to mark token consumed: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("token %s:%d not found", chainID, position)
	}
	return nil
}

func scanTokenRow(row rowScanner) (*domain.Token, error) {
	var token domain.Token
	var consumed int
	if err := row.Scan(
		&token.ChainID, &token.Position, &token.Value, &consumed,
	); err != nil {
		return nil, err
	}
	token.Consumed = consumed != 0
	return &token, nil
}
