// Package boundary is the external embedding surface of the encryption
// core. It mirrors a C-ABI calling convention for non-Go hosts: callers
// provide output buffers, every entry point validates nil-ness and buffer
// sizes before any delegation, and results are integer status codes
// rather than errors. Nothing past this package ever sees a raw,
// unvalidated buffer.
//
// On any status other than [StatusOK] the output buffer contents are
// undefined and must not be read. When an output buffer is too small,
// the required length is written back through the length pointer so the
// caller can retry with a larger buffer.
package boundary

import (
	"github.com/capsulevault/client-go/internal/crypto"
)

// Status codes returned by every boundary operation.
const (
	// StatusOK indicates success.
	StatusOK = 0
	// StatusNullPointer indicates a required input or output was nil.
	StatusNullPointer = -1
	// StatusSerialization indicates an input had an invalid size or encoding.
	StatusSerialization = -2
	// StatusBufferTooSmall indicates the output buffer cannot hold the
	// result; the required length has been written through outLen.
	StatusBufferTooSmall = -3
	// StatusOperationFailed indicates the underlying operation failed.
	StatusOperationFailed = -4
)

// Encrypt seals content under key into out. On success the ciphertext
// length (len(content) + 16) is written through outLen.
func Encrypt(content, key, out []byte, outLen *int) int {
	if key == nil || out == nil || outLen == nil {
		return StatusNullPointer
	}
	if len(key) != crypto.KeySize {
		return StatusSerialization
	}

	need := len(content) + crypto.TagSize + crypto.NonceSize
	if len(out) < need {
		*outLen = need
		return StatusBufferTooSmall
	}

	result, err := crypto.Encrypt(content, key)
	if err != nil {
		return StatusOperationFailed
	}

	// Layout: nonce (24 bytes) || ciphertext || tag (16 bytes)
	n := copy(out, result.Nonce)
	n += copy(out[n:], result.Ciphertext)
	*outLen = n
	return StatusOK
}

// Decrypt opens ciphertext under nonce and key into out. On success the
// plaintext length is written through outLen.
func Decrypt(ciphertext, nonce, key, out []byte, outLen *int) int {
	if ciphertext == nil || nonce == nil || key == nil || outLen == nil {
		return StatusNullPointer
	}
	if out == nil && len(ciphertext) > crypto.TagSize {
		return StatusNullPointer
	}
	if len(key) != crypto.KeySize || len(nonce) != crypto.NonceSize {
		return StatusSerialization
	}
	if len(ciphertext) < crypto.TagSize {
		return StatusSerialization
	}

	need := len(ciphertext) - crypto.TagSize
	if len(out) < need {
		*outLen = need
		return StatusBufferTooSmall
	}

	plaintext, err := crypto.Decrypt(ciphertext, nonce, key)
	if err != nil {
		return StatusOperationFailed
	}

	*outLen = copy(out, plaintext)
	return StatusOK
}

// Hash writes the 32-byte content hash of content into outHash.
func Hash(content, outHash []byte) int {
	if outHash == nil {
		return StatusNullPointer
	}
	if len(outHash) < crypto.HashSize {
		return StatusBufferTooSmall
	}

	digest := crypto.Hash(content)
	copy(outHash, digest[:])
	return StatusOK
}

// GenerateKey writes a fresh 32-byte key into outKey.
func GenerateKey(outKey []byte) int {
	return generateInto(outKey, crypto.KeySize, crypto.GenerateKey)
}

// GenerateNonce writes a fresh 24-byte nonce into outNonce.
func GenerateNonce(outNonce []byte) int {
	return generateInto(outNonce, crypto.NonceSize, crypto.GenerateNonce)
}

func generateInto(out []byte, size int, gen func() ([]byte, error)) int {
	if out == nil {
		return StatusNullPointer
	}
	if len(out) < size {
		return StatusBufferTooSmall
	}

	buf, err := gen()
	if err != nil {
		return StatusOperationFailed
	}

	copy(out, buf)
	crypto.Zero(buf)
	return StatusOK
}
