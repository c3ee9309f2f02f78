// Package hashchain implements the one-way hash chain backing morphing codes.
//
// A chain is derived forward from a secret seed (link 0 is the hash of the
// seed, link i the hash of link i-1) and consumed back-to-front: the last
// link is the first code handed out. Each link hashes the lowercase hex
// encoding of the previous one, so the chain is reproducible from the seed
// alone on any platform.
package hashchain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const (
	// SeedSize is the number of random bytes in a generated seed.
	SeedSize = 32
	// ValueSize is the length of a chain link in hex characters.
	ValueSize = sha256.Size * 2
)

// NewSeed returns a fresh chain seed: SeedSize bytes from a CSPRNG,
// hex-encoded.
func NewSeed() (string, error) {
	buf := make([]byte, SeedSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate seed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Generate derives the full chain for the given seed. The result is dense and
// 0-indexed: out[0] = H(seed), out[i] = H(out[i-1]) for i > 0, where H hashes
// the ASCII bytes of its input and returns lowercase hex. Deterministic: the
// same seed and length always produce bit-for-bit the same sequence.
func Generate(seed string, length int) ([]string, error) {
	if length < 1 {
		return nil, fmt.Errorf("invalid chain length %d, must be at least 1", length)
	}

	chain := make([]string, 0, length)
	current := seed
	for i := 0; i < length; i++ {
		sum := sha256.Sum256([]byte(current))
		current = hex.EncodeToString(sum[:])
		chain = append(chain, current)
	}
	return chain, nil
}

// VerifyLink reports whether hashing candidate yields expectedNext, i.e.
// whether candidate is the direct predecessor of expectedNext in a chain.
// The comparison is constant-time.
func VerifyLink(candidate, expectedNext string) bool {
	sum := sha256.Sum256([]byte(candidate))
	computed := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expectedNext)) == 1
}
