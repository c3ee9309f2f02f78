package hashchain_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/morphcodes/morphd/pkg/hashchain"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("deterministic", func(t *testing.T) {
		first, err := hashchain.Generate("test", 100)
		require.NoError(t, err)
		second, err := hashchain.Generate("test", 100)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("seeded from the seed value", func(t *testing.T) {
		chain, err := hashchain.Generate("test", 1)
		require.NoError(t, err)
		// sha256("test")
		require.Equal(
			t, "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08", chain[0],
		)
	})

	t.Run("link property", func(t *testing.T) {
		chain, err := hashchain.Generate("test", 50)
		require.NoError(t, err)
		require.Len(t, chain, 50)
		for i := 1; i < len(chain); i++ {
			sum := sha256.Sum256([]byte(chain[i-1]))
			require.Equal(t, hex.EncodeToString(sum[:]), chain[i])
			require.True(t, hashchain.VerifyLink(chain[i-1], chain[i]))
		}
	})

	t.Run("fixed-size values", func(t *testing.T) {
		chain, err := hashchain.Generate("another-seed", 10)
		require.NoError(t, err)
		for _, v := range chain {
			require.Len(t, v, hashchain.ValueSize)
		}
	})

	t.Run("invalid length", func(t *testing.T) {
		_, err := hashchain.Generate("test", 0)
		require.Error(t, err)
		_, err = hashchain.Generate("test", -1)
		require.Error(t, err)
	})
}

func TestNewSeed(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 32; i++ {
		seed, err := hashchain.NewSeed()
		require.NoError(t, err)
		require.Len(t, seed, hashchain.SeedSize*2)
		_, err = hex.DecodeString(seed)
		require.NoError(t, err)

		_, dup := seen[seed]
		require.False(t, dup)
		seen[seed] = struct{}{}
	}
}

func TestVerifyLink(t *testing.T) {
	t.Parallel()

	chain, err := hashchain.Generate("test", 3)
	require.NoError(t, err)

	require.True(t, hashchain.VerifyLink("test", chain[0]))
	require.True(t, hashchain.VerifyLink(chain[0], chain[1]))
	require.False(t, hashchain.VerifyLink(chain[1], chain[0]))
	require.False(t, hashchain.VerifyLink(chain[0], chain[2]))
	require.False(t, hashchain.VerifyLink("", chain[0]))
}
