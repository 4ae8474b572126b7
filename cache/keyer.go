package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Keyer derives cache keys for font artifacts.
//
// Contract:
// - Determinism: the same font id and artifact key always produce the same
//   cache key.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key from a font id and an artifact key.
	Key(fontID, artifactKey string) string
}

// DefaultKeyer keeps short artifact keys readable and hashes long ones.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key.
// Format: font:<fontID>:<artifactKey> when it fits in MaxKeyLength,
// otherwise font:<fontID>:sha256:<hash> where hash is the first 16 hex
// characters of SHA-256(artifactKey).
func (k *DefaultKeyer) Key(fontID, artifactKey string) string {
	key := fmt.Sprintf("font:%s:%s", fontID, artifactKey)
	if len(key) <= MaxKeyLength {
		return key
	}
	sum := sha256.Sum256([]byte(artifactKey))
	return fmt.Sprintf("font:%s:sha256:%s", fontID, hex.EncodeToString(sum[:8]))
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
