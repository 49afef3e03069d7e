package crypto

import "errors"

var (
	// ErrRandomSource is returned when the OS entropy source cannot be read.
	// No key, nonce, or salt can be safely produced; treat as fatal.
	ErrRandomSource = errors.New("random source unavailable")

	// ErrInvalidKeySize is returned when a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when a nonce is not exactly 24 bytes.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidSaltSize is returned when a salt is not exactly 32 bytes.
	ErrInvalidSaltSize = errors.New("invalid salt size")

	// ErrInvalidAddress is returned when a wallet address is not valid hex
	// after stripping an optional 0x prefix.
	ErrInvalidAddress = errors.New("invalid wallet address encoding")

	// ErrKeyDerivation is returned when HKDF expansion fails. With a fixed
	// 32-byte output this branch should be unreachable.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrEncryption is returned when the cipher cannot be constructed.
	// Unreachable for a valid 32-byte key.
	ErrEncryption = errors.New("encryption failed")

	// ErrAuthentication is returned when the authentication tag does not
	// verify during decryption. It covers a wrong key, a wrong nonce, and
	// tampered or corrupted ciphertext without distinguishing between them.
	ErrAuthentication = errors.New("authentication failed")

	// ErrInvalidHashEncoding is returned when a hex-encoded content hash is
	// not exactly 64 hexadecimal characters.
	ErrInvalidHashEncoding = errors.New("invalid hash encoding")
)
