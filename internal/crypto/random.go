package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// randReader is the random source used by the generators.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

func randomBytes(n int) ([]byte, error) {
	r := randReader
	if r == nil {
		r = rand.Reader
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return buf, nil
}

// GenerateKey produces a fresh 32-byte encryption key from the OS entropy
// source. The key is returned to the caller exactly once and is never
// persisted or logged by this package.
func GenerateKey() ([]byte, error) {
	return randomBytes(KeySize)
}

// GenerateNonce produces a fresh 24-byte nonce. A new nonce is generated
// for every encryption so a (key, nonce) pair is never reused.
func GenerateNonce() ([]byte, error) {
	return randomBytes(NonceSize)
}

// GenerateSalt produces a fresh 32-byte key-derivation salt.
func GenerateSalt() ([]byte, error) {
	return randomBytes(SaltSize)
}

// Zero overwrites b with zeroes. Use it to scrub key material whose
// owning scope has ended.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
