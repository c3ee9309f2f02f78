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

const tokenStoreDir = "tokens"

type tokenRepository struct {
	store *badgerhold.Store
}

func tokenKey(chainID string, position int) string {
	return fmt.Sprintf("%s:%010d", chainID, position)
}

func NewTokenRepository(config ...interface{}) (domain.TokenRepository, error) {
	baseDir, logger, ok := repoConfig(config...)
	if !ok {
		return nil, fmt.Errorf("invalid config")
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, tokenStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %s", err)
	}

	return &tokenRepository{store}, nil
}

// AddTokens writes the whole batch in one transaction: either every token of
// the chain lands or none does. A full chain's tokens fit comfortably within
// badger's transaction limits.
func (r *tokenRepository) AddTokens(ctx context.Context, tokens []domain.Token) error {
	var err error
	for attempts := 0; attempts <= maxRetries; attempts++ {
		err = func() error {
			tx := r.store.Badger().NewTransaction(true)
			defer tx.Discard()

			for _, token := range tokens {
				if err := r.store.TxUpsert(
					tx, tokenKey(token.ChainID, token.Position), token,
				); err != nil {
					return fmt.Errorf("failed to add token at position %d: %w", token.Position, err)
				}
			}
			return tx.Commit()
		}()
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		time.Sleep(100 * time.Millisecond)
	}
	return err
}

func (r *tokenRepository) GetToken(
	ctx context.Context, chainID string, position int,
) (*domain.Token, error) {
	var token domain.Token
	err := r.store.Get(tokenKey(chainID, position), &token)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

func (r *tokenRepository) GetTokenByValue(
	ctx context.Context, chainID, value string,
) (*domain.Token, error) {
	var tokens []domain.Token
	query := badgerhold.Where("ChainID").Eq(chainID).And("Value").Eq(value).
		SortBy("Position").Reverse()
	if err := r.store.Find(&tokens, query); err != nil {
		return nil, fmt.Errorf("failed to look up token by value: %w", err)
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	// Ties on value cannot normally happen; prefer the highest unconsumed
	// position, the only one a descending cursor can still accept.
	for i := range tokens {
		if !tokens[i].Consumed {
			return &tokens[i], nil
		}
	}
	return &tokens[0], nil
}

func (r *tokenRepository) MarkConsumed(
	ctx context.Context, chainID string, position int,
) error {
	token, err := r.GetToken(ctx, chainID, position)
	if err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("token at position %d not found for chain %s", position, chainID)
	}
	token.Consumed = true
	return r.store.Update(tokenKey(chainID, position), *token)
}

func (r *tokenRepository) Close() {
	// nolint:all
	r.store.Close()
}
