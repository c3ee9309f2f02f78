package domain

import (
	"time"

	"github.com/google/uuid"
)

type RejectionReason uint8

const (
	ReasonNone RejectionReason = iota
	ReasonChainNotFound
	ReasonChainInactive
	ReasonValueNotInChain
	ReasonValueNotCurrent
	ReasonAlreadyConsumed
)

func (r RejectionReason) String() string {
	return []string{
		"None",
		"ChainNotFound",
		"ChainInactive",
		"ValueNotInChain",
		"ValueNotCurrent",
		"AlreadyConsumed",
	}[r]
}

// UnresolvedPosition marks a scan whose claimed value matched no token.
const UnresolvedPosition = -1

// ScanAttempt is one append-only audit record per validation call, accepted
// or not. The validator writes these as a side effect and never reads them
// back: decisions depend only on chain and token state.
type ScanAttempt struct {
	ID      string
	ChainID string
	// Value is the claimed token value as submitted.
	Value string
	// Position is the resolved token position, UnresolvedPosition when the
	// value matched no token.
	Position  int
	Accepted  bool
	Reason    RejectionReason
	IP        string
	UserAgent string
	ScannedAt time.Time
}

func NewScanAttempt(
	chainID, value string, position int, reason RejectionReason, ip, userAgent string,
) ScanAttempt {
	return ScanAttempt{
		ID:        uuid.New().String(),
		ChainID:   chainID,
		Value:     value,
		Position:  position,
		Accepted:  reason == ReasonNone,
		Reason:    reason,
		IP:        ip,
		UserAgent: userAgent,
		ScannedAt: time.Now(),
	}
}
