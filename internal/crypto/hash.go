package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// Hash computes the BLAKE3-256 digest of content.
// It is deterministic, has no failure mode, and accepts empty input.
func Hash(content []byte) [HashSize]byte {
	return blake3.Sum256(content)
}

// HashMultiple computes the digest of the given pieces as if they were
// concatenated in order. The pieces are fed to the hasher incrementally;
// the concatenation is never materialized.
func HashMultiple(contents ...[]byte) [HashSize]byte {
	h := blake3.New(HashSize, nil)
	for _, content := range contents {
		// Hasher.Write never returns an error
		h.Write(content)
	}

	var digest [HashSize]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// VerifyHash reports whether content hashes to expected.
// The comparison is constant-time; the hash is not a secret, but the
// uniform comparison costs nothing here.
func VerifyHash(content []byte, expected [HashSize]byte) bool {
	computed := Hash(content)
	return subtle.ConstantTimeCompare(computed[:], expected[:]) == 1
}

// ToHex encodes a content hash as a lowercase hex string of 64 characters.
func ToHex(hash [HashSize]byte) string {
	return hex.EncodeToString(hash[:])
}

// FromHex decodes a hex-encoded content hash. The input must be exactly
// 64 hexadecimal characters.
func FromHex(s string) ([HashSize]byte, error) {
	var hash [HashSize]byte

	if len(s) != HashHexSize {
		return hash, fmt.Errorf("%w: got %d characters, want %d", ErrInvalidHashEncoding, len(s), HashHexSize)
	}

	decoded, err := hex.DecodeString(s)
	if err != nil {
		return hash, fmt.Errorf("%w: %v", ErrInvalidHashEncoding, err)
	}

	copy(hash[:], decoded)
	return hash, nil
}
