package domain

import "context"

type TokenRepository interface {
	// AddTokens persists all tokens of a chain in one batch.
	AddTokens(ctx context.Context, tokens []Token) error
	// GetToken retrieves the token at a given position, nil when absent.
	GetToken(ctx context.Context, chainID string, position int) (*Token, error)
	// GetTokenByValue resolves a claimed value within a chain, nil when the
	// value does not belong to the chain. Should duplicate values ever exist
	// the implementation prefers the highest unconsumed position, which is
	// the one a descending cursor can still accept.
	GetTokenByValue(ctx context.Context, chainID, value string) (*Token, error)
	// MarkConsumed sets the consumed flag of the token at position. Never
	// reset.
	MarkConsumed(ctx context.Context, chainID string, position int) error
	Close()
}
