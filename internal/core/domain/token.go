package domain

// Token is one element of a chain: the artifact a scanning party presents as
// proof of the current step. Tokens are created in bulk with their chain and
// are immutable except for the consumed flag, which is set true exactly once.
type Token struct {
	ChainID string
	// Position in the chain, 0 to Length-1, unique per chain.
	Position int
	// Value is the hash at this position, unique per chain.
	Value    string
	Consumed bool
}
