package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashAlgorithm selects the digest a Hasher produces.
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
)

// Hasher produces hex digests for content identity: job fingerprints
// and inlined image bytes.
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a hasher for the given algorithm. Unknown values
// fall back to SHA-256.
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{
		algorithm: algorithm,
	}
}

// DefaultHasher returns a SHA-256 hasher.
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// Hash computes the hex digest of data.
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case SHA256:
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:])
	default:
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:])
	}
}

// HashString computes the hex digest of s.
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// Fingerprint computes a stable identity for a tuple of fields.
// Fields are NUL-joined so ("a","bc") and ("ab","c") hash differently.
func Fingerprint(fields ...string) string {
	return DefaultHasher().HashString(strings.Join(fields, "\x00"))
}
