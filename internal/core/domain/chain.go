package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrChainNotFound  = errors.New("chain not found")
	ErrChainInactive  = errors.New("chain is not active")
	ErrChainExhausted = errors.New("chain is exhausted")
)

type ChainStatus uint8

const (
	ChainStatusFresh ChainStatus = iota
	ChainStatusInProgress
	ChainStatusExhausted
	ChainStatusDeactivated
)

func (s ChainStatus) String() string {
	return []string{
		"Fresh",
		"InProgress",
		"Exhausted",
		"Deactivated",
	}[s]
}

// Chain is a fixed-length sequence of one-way-hash-derived codes plus a
// consumption cursor. The chain is generated forward from the seed but
// consumed back-to-front: the cursor starts at Length-1 and decrements by
// exactly one per accepted scan. Cursor -1 means exhausted.
type Chain struct {
	ID          string
	Name        string
	Description string
	// Seed is the secret root of the chain, never exposed to scanners.
	Seed      string
	Length    int
	Cursor    int
	Active    bool
	OrgID     string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewChain(name, description, seed string, length int, orgID, createdBy string) (*Chain, error) {
	if length < 1 {
		return nil, fmt.Errorf("invalid chain length %d, must be at least 1", length)
	}
	if seed == "" {
		return nil, fmt.Errorf("missing chain seed")
	}
	now := time.Now()
	return &Chain{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Seed:        seed,
		Length:      length,
		Cursor:      length - 1,
		Active:      true,
		OrgID:       orgID,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (c *Chain) Status() ChainStatus {
	switch {
	case c.Cursor < 0:
		return ChainStatusExhausted
	case !c.Active:
		return ChainStatusDeactivated
	case c.Cursor == c.Length-1:
		return ChainStatusFresh
	default:
		return ChainStatusInProgress
	}
}

// Exhausted reports whether the cursor passed position 0.
func (c *Chain) Exhausted() bool {
	return c.Cursor < 0
}

// Advance moves the cursor down by one position. It must be called exactly
// once per accepted scan, under the chain's exclusive lock. When the cursor
// reaches -1 the chain is deactivated in the same step.
func (c *Chain) Advance() error {
	if !c.Active {
		return ErrChainInactive
	}
	if c.Cursor < 0 {
		return ErrChainExhausted
	}
	c.Cursor--
	if c.Cursor < 0 {
		c.Active = false
	}
	c.UpdatedAt = time.Now()
	return nil
}

// Deactivate stops the chain without touching the cursor. Terminal.
func (c *Chain) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
}
