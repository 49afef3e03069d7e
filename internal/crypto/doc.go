// Package crypto implements the content-encryption core of the CapsuleVault
// protocol: content hashing, key generation and derivation, and authenticated
// symmetric encryption.
//
// # Algorithm Suite
//
// The package uses the following cryptographic algorithms:
//
//   - XChaCha20-Poly1305: Authenticated encryption with associated data
//     (AEAD) for capsule content. The 24-byte extended nonce makes random
//     nonce generation safe for every encryption call.
//
//   - BLAKE3-256: Content fingerprinting and content addressing. The digest
//     is computed over plaintext, independent of any key, so integrity of
//     decrypted content can be checked without re-encrypting.
//
//   - HKDF-SHA-256 (RFC 5869): Key derivation for wallet-bound capsules,
//     with a fixed info label for domain separation.
//
// # Security Model
//
//   - Confidentiality and integrity come from the AEAD alone. A failed
//     authentication tag is reported as [ErrAuthentication] with no partial
//     plaintext, and deliberately does not distinguish a wrong key, a wrong
//     nonce, or tampered ciphertext.
//
//   - Every call to [Encrypt] generates a fresh random nonce internally.
//     Callers cannot supply a nonce, which makes (key, nonce) reuse
//     structurally impossible.
//
//   - Wallet-derived keys are reproducible from {wallet address, capsule id,
//     unlock time, salt}. None of these inputs is inherently secret once a
//     capsule is announced; the derivation is a capability token and callers
//     must treat the input combination accordingly.
//
// # Key Management
//
// Keys are 32 bytes of caller-owned memory. The package never logs or
// retains key material; use [Zero] to scrub buffers whose scope has ended.
// Randomly generated keys are shown to the caller exactly once, encoded
// with [ToBase64].
//
// Every function in this package is a pure function of its inputs (the
// generators additionally consult the OS entropy source) and is safe for
// concurrent use.
package crypto
