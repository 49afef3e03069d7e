package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// DeriveKeyFromWallet deterministically derives a 32-byte encryption key
// from a wallet address, a capsule identifier, an unlock timestamp, and a
// salt. Calling it twice with identical inputs yields identical keys; this
// is the mechanism by which a capsule key can be reconstructed without
// ever being stored.
//
// The wallet address is hex, with an optional 0x prefix. The key material
// fed to HKDF-SHA-256 is the fixed-order concatenation
//
//	addressBytes || capsuleID || unlockTime (8-byte little endian) || salt
//
// with salt doubling as the HKDF salt and [HKDFContext] as the info label.
func DeriveKeyFromWallet(walletAddress, capsuleID string, unlockTime uint64, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidSaltSize, len(salt), SaltSize)
	}

	addr, err := hex.DecodeString(strings.TrimPrefix(walletAddress, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	var timeBuf [8]byte
	binary.LittleEndian.PutUint64(timeBuf[:], unlockTime)

	secret := make([]byte, 0, len(addr)+len(capsuleID)+8+SaltSize)
	secret = append(secret, addr...)
	secret = append(secret, capsuleID...)
	secret = append(secret, timeBuf[:]...)
	secret = append(secret, salt...)
	defer Zero(secret)

	reader := hkdf.New(sha256.New, secret, salt, []byte(HKDFContext))
	key := make([]byte, KeySize)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}

	return key, nil
}
