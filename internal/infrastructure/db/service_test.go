package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/morphcodes/morphd/internal/core/ports"
	"github.com/morphcodes/morphd/internal/infrastructure/db"
	"github.com/morphcodes/morphd/pkg/hashchain"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	dbDir := t.TempDir()
	tests := []struct {
		name   string
		config db.ServiceConfig
	}{
		{
			name: "repo_manager_with_badger_stores",
			config: db.ServiceConfig{
				DataStoreType:   "badger",
				DataStoreConfig: []interface{}{"", nil},
			},
		},
		{
			name: "repo_manager_with_sqlite_stores",
			config: db.ServiceConfig{
				DataStoreType:   "sqlite",
				DataStoreConfig: []interface{}{dbDir},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := db.NewService(tt.config)
			require.NoError(t, err)
			require.NotNil(t, svc)

			testChainRepository(t, svc)
			testTokenRepository(t, svc)
			testScanRepository(t, svc)
			testOrganizationRepository(t, svc)

			svc.Close()
		})
	}
}

func testChainRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_chain_repository", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.Chains()

		chain, err := domain.NewChain("badge run", "", "test", 3, "org-1", "admin")
		require.NoError(t, err)

		gotBefore, err := repo.GetChain(ctx, chain.ID)
		require.NoError(t, err)
		require.Nil(t, gotBefore)

		require.NoError(t, repo.AddChain(ctx, *chain))

		got, err := repo.GetChain(ctx, chain.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, chain.ID, got.ID)
		require.Equal(t, chain.Seed, got.Seed)
		require.Equal(t, chain.Length, got.Length)
		require.Equal(t, chain.Length-1, got.Cursor)
		require.True(t, got.Active)

		err = repo.UpdateChain(ctx, chain.ID, func(c *domain.Chain) (*domain.Chain, error) {
			if err := c.Advance(); err != nil {
				return nil, err
			}
			return c, nil
		})
		require.NoError(t, err)

		got, err = repo.GetChain(ctx, chain.ID)
		require.NoError(t, err)
		require.Equal(t, chain.Length-2, got.Cursor)

		err = repo.UpdateChain(ctx, "missing", func(c *domain.Chain) (*domain.Chain, error) {
			return c, nil
		})
		require.ErrorIs(t, err, domain.ErrChainNotFound)

		chains, err := repo.GetChainsByOrg(ctx, "org-1")
		require.NoError(t, err)
		require.Len(t, chains, 1)

		chains, err = repo.GetChainsByOrg(ctx, "org-nope")
		require.NoError(t, err)
		require.Empty(t, chains)
	})
}

func testTokenRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_token_repository", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.Tokens()

		chainID := "chain-tokens"
		values, err := hashchain.Generate("test", 4)
		require.NoError(t, err)

		tokens := make([]domain.Token, 0, len(values))
		for i, v := range values {
			tokens = append(tokens, domain.Token{
				ChainID:  chainID,
				Position: i,
				Value:    v,
			})
		}
		require.NoError(t, repo.AddTokens(ctx, tokens))

		got, err := repo.GetToken(ctx, chainID, 2)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, values[2], got.Value)
		require.False(t, got.Consumed)

		got, err = repo.GetToken(ctx, chainID, 42)
		require.NoError(t, err)
		require.Nil(t, got)

		got, err = repo.GetTokenByValue(ctx, chainID, values[3])
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, 3, got.Position)

		got, err = repo.GetTokenByValue(ctx, chainID, "deadbeef")
		require.NoError(t, err)
		require.Nil(t, got)

		require.NoError(t, repo.MarkConsumed(ctx, chainID, 3))

		got, err = repo.GetToken(ctx, chainID, 3)
		require.NoError(t, err)
		require.True(t, got.Consumed)

		err = repo.MarkConsumed(ctx, chainID, 42)
		require.Error(t, err)
	})

	t.Run("test_token_batch_insert", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.Tokens()

		// A long chain's token set is written as one batch; every position
		// must be readable afterwards, endpoints included.
		chainID := "chain-tokens-bulk"
		length := 2000
		values, err := hashchain.Generate("bulk-seed", length)
		require.NoError(t, err)

		tokens := make([]domain.Token, 0, length)
		for i, v := range values {
			tokens = append(tokens, domain.Token{
				ChainID:  chainID,
				Position: i,
				Value:    v,
			})
		}
		require.NoError(t, repo.AddTokens(ctx, tokens))

		for _, position := range []int{0, 1, length / 2, length - 2, length - 1} {
			got, err := repo.GetToken(ctx, chainID, position)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, values[position], got.Value)
			require.False(t, got.Consumed)
		}

		got, err := repo.GetToken(ctx, chainID, length)
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

func testScanRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_scan_repository", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.Scans()

		chainID := "chain-scans"
		for i := 0; i < 5; i++ {
			reason := domain.ReasonNone
			if i%2 == 1 {
				reason = domain.ReasonAlreadyConsumed
			}
			scan := domain.NewScanAttempt(
				chainID, fmt.Sprintf("value-%d", i), i, reason, "127.0.0.1", "go-test",
			)
			scan.ScannedAt = time.Now().Add(time.Duration(i) * time.Second)
			require.NoError(t, repo.AddScan(ctx, scan))
		}

		scans, err := repo.GetScansByChain(ctx, chainID, 10)
		require.NoError(t, err)
		require.Len(t, scans, 5)
		// newest first
		require.Equal(t, "value-4", scans[0].Value)

		scans, err = repo.GetScansByChain(ctx, chainID, 2)
		require.NoError(t, err)
		require.Len(t, scans, 2)

		stats, err := repo.GetStats(ctx, chainID)
		require.NoError(t, err)
		require.Equal(t, int64(5), stats.Total)
		require.Equal(t, int64(3), stats.Accepted)
		require.Equal(t, int64(2), stats.Rejected)

		stats, err = repo.GetStats(ctx, "chain-empty")
		require.NoError(t, err)
		require.Zero(t, stats.Total)
	})
}

func testOrganizationRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_organization_repository", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.Organizations()

		org, err := domain.NewOrganization("Acme Inc", "acme", "owner-1")
		require.NoError(t, err)
		require.NoError(t, repo.AddOrganization(ctx, *org))

		got, err := repo.GetOrganization(ctx, org.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, org.Slug, got.Slug)
		require.Equal(t, org.OwnerID, got.OwnerID)
		require.Equal(t, domain.PlanFree, got.Plan)
		require.True(t, got.Active)

		got, err = repo.GetOrganizationByAPIKey(ctx, org.APIKey)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, org.ID, got.ID)

		got, err = repo.GetOrganizationByAPIKey(ctx, "mk_nope")
		require.NoError(t, err)
		require.Nil(t, got)

		err = repo.UpdateOrganization(
			ctx, org.ID,
			func(o *domain.Organization) (*domain.Organization, error) {
				o.WebhookURL = "https://hooks.acme.test/scan"
				o.WebhookSecret = "s3cret"
				return o, nil
			},
		)
		require.NoError(t, err)

		got, err = repo.GetOrganization(ctx, org.ID)
		require.NoError(t, err)
		require.Equal(t, "https://hooks.acme.test/scan", got.WebhookURL)
	})
}
