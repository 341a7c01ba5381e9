package dedup

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies a unique content block.
// It is the lowercase hex encoding of a SHA-256 digest, 64 characters long.
type Fingerprint string

// Hash computes the content fingerprint for a byte slice.
// It is pure and deterministic: equal content always yields an equal
// fingerprint, and distinct contents yield distinct fingerprints with
// overwhelming probability (256-bit digest).
func Hash(content []byte) Fingerprint {
	sum := sha256.Sum256(content)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Short returns a truncated form of the fingerprint for log output.
func (f Fingerprint) Short() string {
	if len(f) <= 8 {
		return string(f)
	}
	return string(f[:8])
}
