package domain_test

import (
	"testing"

	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestNewChain(t *testing.T) {
	chain, err := domain.NewChain("event badges", "", "seed", 10, "org-1", "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, chain.ID)
	require.Equal(t, 10, chain.Length)
	require.Equal(t, 9, chain.Cursor)
	require.True(t, chain.Active)
	require.Equal(t, domain.ChainStatusFresh, chain.Status())

	_, err = domain.NewChain("bad", "", "seed", 0, "org-1", "user-1")
	require.Error(t, err)

	_, err = domain.NewChain("bad", "", "", 10, "org-1", "user-1")
	require.Error(t, err)
}

func TestChainAdvance(t *testing.T) {
	chain, err := domain.NewChain("test", "", "seed", 3, "org-1", "user-1")
	require.NoError(t, err)

	// 3 accepted scans walk the cursor 2 -> 1 -> 0 -> -1.
	cursors := []int{1, 0, -1}
	for _, want := range cursors {
		require.NoError(t, chain.Advance())
		require.Equal(t, want, chain.Cursor)
	}

	require.False(t, chain.Active)
	require.True(t, chain.Exhausted())
	require.Equal(t, domain.ChainStatusExhausted, chain.Status())

	// No transition out of exhausted.
	require.ErrorIs(t, chain.Advance(), domain.ErrChainInactive)
	require.Equal(t, -1, chain.Cursor)
}

func TestChainDeactivate(t *testing.T) {
	chain, err := domain.NewChain("test", "", "seed", 5, "org-1", "user-1")
	require.NoError(t, err)

	require.NoError(t, chain.Advance())
	require.Equal(t, domain.ChainStatusInProgress, chain.Status())

	chain.Deactivate()
	require.False(t, chain.Active)
	require.Equal(t, 3, chain.Cursor)
	require.Equal(t, domain.ChainStatusDeactivated, chain.Status())

	// Deactivated is terminal, scans can no longer advance.
	require.ErrorIs(t, chain.Advance(), domain.ErrChainInactive)
	require.Equal(t, 3, chain.Cursor)
}

func TestChainStatus(t *testing.T) {
	tests := []struct {
		name     string
		cursor   int
		length   int
		active   bool
		expected domain.ChainStatus
	}{
		{name: "fresh", cursor: 9, length: 10, active: true, expected: domain.ChainStatusFresh},
		{
			name: "in progress", cursor: 4, length: 10, active: true,
			expected: domain.ChainStatusInProgress,
		},
		{
			name: "exhausted", cursor: -1, length: 10, active: false,
			expected: domain.ChainStatusExhausted,
		},
		{
			name: "deactivated mid-run", cursor: 4, length: 10, active: false,
			expected: domain.ChainStatusDeactivated,
		},
		{
			name: "deactivated while fresh", cursor: 9, length: 10, active: false,
			expected: domain.ChainStatusDeactivated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := domain.Chain{Length: tt.length, Cursor: tt.cursor, Active: tt.active}
			require.Equal(t, tt.expected, chain.Status())
		})
	}
}

func TestRejectionReasonString(t *testing.T) {
	require.Equal(t, "ChainNotFound", domain.ReasonChainNotFound.String())
	require.Equal(t, "AlreadyConsumed", domain.ReasonAlreadyConsumed.String())
	require.Equal(t, "None", domain.ReasonNone.String())
}

func TestNewScanAttempt(t *testing.T) {
	accepted := domain.NewScanAttempt("chain-1", "abc", 4, domain.ReasonNone, "1.2.3.4", "ua")
	require.True(t, accepted.Accepted)
	require.NotEmpty(t, accepted.ID)
	require.False(t, accepted.ScannedAt.IsZero())

	rejected := domain.NewScanAttempt(
		"chain-1", "abc", domain.UnresolvedPosition, domain.ReasonValueNotInChain, "", "",
	)
	require.False(t, rejected.Accepted)
	require.Equal(t, domain.UnresolvedPosition, rejected.Position)
}

func TestPlanLimits(t *testing.T) {
	require.Equal(t, 100, domain.PlanFree.Limits().RequestsPerHour)
	require.Equal(t, 5, domain.PlanFree.Limits().MaxChains)
	require.Equal(t, 1000, domain.PlanStarter.Limits().RequestsPerHour)
	require.Equal(t, -1, domain.PlanProfessional.Limits().MaxChains)
	// Unknown plans fall back to free limits.
	require.Equal(t, 100, domain.Plan("unknown").Limits().RequestsPerHour)
}
