package capsulevault

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/capsulevault/client-go/internal/crypto"
)

// ExportVersion is the current export format version.
const ExportVersion = 1

// ExportedCapsule is everything the creator needs to unlock a capsule
// later, including the encryption key for randomly keyed capsules.
// WARNING: the key is the only copy in existence - handle securely.
type ExportedCapsule struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// CapsuleID identifies the capsule on the ledger. Non-empty.
	CapsuleID string `json:"capsuleId"`
	// CID is the content identifier of the encrypted blob.
	CID string `json:"cid"`
	// ContentHash is the BLAKE3-256 hash of the plaintext (lowercase hex).
	ContentHash string `json:"contentHash"`
	// EncryptionKey is the base64 key for randomly keyed capsules.
	// Empty for wallet-bound capsules, whose key is re-derived on unlock.
	EncryptionKey string `json:"encryptionKey,omitempty"`
	// WalletBound indicates the key derives from the owner's wallet.
	WalletBound bool `json:"walletBound"`
	// ExportedAt is the export timestamp. Informational only.
	ExportedAt time.Time `json:"exportedAt"`
}

// Export returns the capsule data worth keeping after creation. For
// randomly keyed capsules this is the only place the key survives.
func (r *CreateCapsuleResult) Export() *ExportedCapsule {
	return &ExportedCapsule{
		Version:       ExportVersion,
		CapsuleID:     r.CapsuleID,
		CID:           r.CID,
		ContentHash:   r.ContentHash,
		EncryptionKey: r.EncryptionKey,
		WalletBound:   r.EncryptionKey == "",
		ExportedAt:    time.Now().UTC(),
	}
}

// Validate checks that the exported data is usable for unlocking.
func (e *ExportedCapsule) Validate() error {
	if e.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidExportData, e.Version, ExportVersion)
	}
	if e.CapsuleID == "" {
		return fmt.Errorf("%w: capsuleId is required", ErrInvalidExportData)
	}
	if e.ContentHash != "" {
		if _, err := crypto.FromHex(e.ContentHash); err != nil {
			return fmt.Errorf("%w: invalid contentHash encoding", ErrInvalidExportData)
		}
	}
	if !e.WalletBound {
		if e.EncryptionKey == "" {
			return fmt.Errorf("%w: encryptionKey is required unless the capsule is wallet-bound", ErrInvalidExportData)
		}
		key, err := crypto.DecodeKeyBase64(e.EncryptionKey)
		if err != nil {
			return fmt.Errorf("%w: invalid encryptionKey encoding", ErrInvalidExportData)
		}
		if len(key) != crypto.KeySize {
			return fmt.Errorf("%w: encryptionKey size %d, expected %d", ErrInvalidExportData, len(key), crypto.KeySize)
		}
		crypto.Zero(key)
	}
	if strings.TrimSpace(e.CapsuleID) != e.CapsuleID {
		return fmt.Errorf("%w: capsuleId has surrounding whitespace", ErrInvalidExportData)
	}
	return nil
}

// UnlockFromExport unlocks a capsule using previously exported data.
func (c *Client) UnlockFromExport(ctx context.Context, data *ExportedCapsule, opts ...UnlockOption) (*UnlockResult, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	if data.EncryptionKey != "" {
		opts = append([]UnlockOption{WithKey(data.EncryptionKey)}, opts...)
	}
	return c.UnlockCapsule(ctx, data.CapsuleID, opts...)
}
