package hasher

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"strings"
)

// Algorithm selects the digest used for content identity. The set is closed:
// a fast 128-bit digest for everyday duplicate detection and a stronger
// 256-bit digest for the cautious.
type Algorithm int

const (
	// Fast128 is MD5: 32 hex characters. Collision resistance does not
	// matter for duplicate grouping, throughput does.
	Fast128 Algorithm = iota
	// Strong256 is SHA-256: 64 hex characters.
	Strong256
)

// ParseAlgorithm maps a config or flag value to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "md5", "fast128":
		return Fast128, nil
	case "sha256", "sha-256", "strong256":
		return Strong256, nil
	default:
		return Fast128, fmt.Errorf("unknown hash algorithm %q (want md5 or sha256)", name)
	}
}

// String returns the canonical name, which is also the cache key component.
func (a Algorithm) String() string {
	if a == Strong256 {
		return "sha256"
	}
	return "md5"
}

// New returns a fresh hash state.
func (a Algorithm) New() hash.Hash {
	if a == Strong256 {
		return sha256.New()
	}
	return md5.New()
}

// HexLength returns the digest length in hex characters.
func (a Algorithm) HexLength() int {
	if a == Strong256 {
		return 64
	}
	return 32
}
