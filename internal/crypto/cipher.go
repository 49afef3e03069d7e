package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptionResult holds the output of a single encryption call.
// All fields are values; nothing in the result is mutated after creation.
type EncryptionResult struct {
	// Ciphertext is the encrypted content plus the trailing 16-byte
	// authentication tag.
	Ciphertext []byte
	// Nonce is the 24-byte nonce generated for this encryption.
	// It is not secret and is persisted alongside the ciphertext.
	Nonce []byte
	// ContentHash is the BLAKE3-256 digest of the plaintext, computed
	// independently of the encryption key.
	ContentHash [HashSize]byte
}

// WalletEncryptionResult extends EncryptionResult with the salt needed to
// re-derive the wallet-bound key at decryption time.
type WalletEncryptionResult struct {
	EncryptionResult
	// KeyDerivationSalt is the 32-byte salt fed to DeriveKeyFromWallet.
	// It is not secret and is persisted alongside the ciphertext.
	KeyDerivationSalt []byte
}

// Encrypt seals content under key with XChaCha20-Poly1305. A fresh random
// nonce is generated internally on every call; callers cannot supply one.
// Empty content is valid and produces a tag-only ciphertext.
func Encrypt(content, key []byte) (*EncryptionResult, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	nonce, err := GenerateNonce()
	if err != nil {
		return nil, err
	}

	ciphertext := aead.Seal(nil, nonce, content, nil)

	return &EncryptionResult{
		Ciphertext:  ciphertext,
		Nonce:       nonce,
		ContentHash: Hash(content),
	}, nil
}

// EncryptWithWallet seals content under a key derived from the wallet
// context. A fresh salt is generated and returned in the result so a
// future caller holding the same four derivation inputs can re-derive
// the key.
func EncryptWithWallet(content []byte, walletAddress, capsuleID string, unlockTime uint64) (*WalletEncryptionResult, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}

	key, err := DeriveKeyFromWallet(walletAddress, capsuleID, unlockTime, salt)
	if err != nil {
		return nil, err
	}
	defer Zero(key)

	result, err := Encrypt(content, key)
	if err != nil {
		return nil, err
	}

	return &WalletEncryptionResult{
		EncryptionResult:  *result,
		KeyDerivationSalt: salt,
	}, nil
}

// Decrypt opens ciphertext under key and nonce. On authentication failure
// it returns ErrAuthentication and no plaintext bytes; the failure does
// not distinguish a wrong key, a wrong nonce, or tampered ciphertext.
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), NonceSize)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}

	return plaintext, nil
}

// DecryptWithWallet re-derives the wallet-bound key from the supplied
// context and salt, then decrypts. A mismatch in any derivation input
// versus encryption time produces a different key and therefore surfaces
// as ErrAuthentication; there is no separate wrong-context error.
func DecryptWithWallet(ciphertext, nonce []byte, walletAddress, capsuleID string, unlockTime uint64, salt []byte) ([]byte, error) {
	key, err := DeriveKeyFromWallet(walletAddress, capsuleID, unlockTime, salt)
	if err != nil {
		return nil, err
	}
	defer Zero(key)

	return Decrypt(ciphertext, nonce, key)
}
