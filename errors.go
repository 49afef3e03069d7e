package capsulevault

import (
	"errors"
	"fmt"

	"github.com/capsulevault/client-go/internal/api"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingLedger is returned when no ledger URL or implementation is configured.
	ErrMissingLedger = errors.New("ledger is required")

	// ErrMissingStore is returned when no content-store URL or implementation is configured.
	ErrMissingStore = errors.New("content store is required")

	// ErrMissingWallet is returned when an operation needs a wallet address
	// and none is configured.
	ErrMissingWallet = errors.New("wallet address is required")

	// ErrMissingKey is returned when unlocking a randomly keyed capsule
	// without supplying the key.
	ErrMissingKey = errors.New("encryption key is required")

	// ErrUnauthorized is returned when the API key is invalid or expired.
	ErrUnauthorized = errors.New("invalid or expired API key")

	// ErrCapsuleNotFound is returned when a capsule is not found.
	ErrCapsuleNotFound = errors.New("capsule not found")

	// ErrContentNotFound is returned when a capsule's content blob is
	// missing from the store.
	ErrContentNotFound = errors.New("content not found")

	// ErrCapsuleExists is returned when registering a capsule id that is
	// already taken.
	ErrCapsuleExists = errors.New("capsule already registered")

	// ErrCapsuleLocked is returned when a capsule's unlock condition is
	// not yet satisfied.
	ErrCapsuleLocked = errors.New("capsule is still locked")

	// ErrDecryptionFailed is returned when capsule content cannot be
	// decrypted. It deliberately does not say whether the key was wrong or
	// the data corrupted.
	ErrDecryptionFailed = errors.New("wrong key or corrupted data")

	// ErrContentIntegrity is returned when decrypted content does not match
	// the content hash recorded at creation.
	ErrContentIntegrity = errors.New("content does not match recorded hash")

	// ErrNotApprover is returned when the caller's wallet is not in a
	// multisig capsule's approver set.
	ErrNotApprover = errors.New("wallet is not an approver for this capsule")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidExportData is returned when exported capsule data fails
	// validation on import.
	ErrInvalidExportData = errors.New("invalid exported capsule data")
)

// CapsuleVaultError is implemented by all SDK errors.
type CapsuleVaultError interface {
	error
	CapsuleVaultError() // marker method
}

// APIError represents an HTTP error from the ledger or store API.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		if e.Message != "" {
			return fmt.Sprintf("API error %d: %s (request_id: %s)", e.StatusCode, e.Message, e.RequestID)
		}
		return fmt.Sprintf("API error %d (request_id: %s)", e.StatusCode, e.RequestID)
	}
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// CapsuleVaultError implements the CapsuleVaultError interface.
func (e *APIError) CapsuleVaultError() {}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 401:
		return target == ErrUnauthorized
	case 409:
		return target == ErrCapsuleExists
	case 429:
		return target == ErrRateLimited
	}
	return false
}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// CapsuleVaultError implements the CapsuleVaultError interface.
func (e *NetworkError) CapsuleVaultError() {}

// DecryptionError represents a failure to decrypt capsule content. The
// underlying cause is retained for wrapping but the message never reveals
// whether the key, the nonce, or the ciphertext was at fault.
type DecryptionError struct {
	CapsuleID string
	Err       error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("capsule %s: wrong key or corrupted data", e.CapsuleID)
}

// Unwrap returns the underlying error.
func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryptionFailed
}

// CapsuleVaultError implements the CapsuleVaultError interface.
func (e *DecryptionError) CapsuleVaultError() {}

// IntegrityError indicates decrypted content does not hash to the value
// recorded on the ledger at creation time.
type IntegrityError struct {
	CapsuleID string
	Expected  string
	Computed  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("capsule %s: content hash %s does not match recorded %s", e.CapsuleID, e.Computed, e.Expected)
}

// Is implements errors.Is for sentinel error matching.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrContentIntegrity
}

// CapsuleVaultError implements the CapsuleVaultError interface.
func (e *IntegrityError) CapsuleVaultError() {}

// LockedError reports why a capsule cannot be unlocked yet.
type LockedError struct {
	CapsuleID string
	Reason    string
}

func (e *LockedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("capsule %s is still locked: %s", e.CapsuleID, e.Reason)
	}
	return fmt.Sprintf("capsule %s is still locked", e.CapsuleID)
}

// Is implements errors.Is for sentinel error matching.
func (e *LockedError) Is(target error) bool {
	return target == ErrCapsuleLocked
}

// CapsuleVaultError implements the CapsuleVaultError interface.
func (e *LockedError) CapsuleVaultError() {}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Errors)
}

// CapsuleVaultError implements the CapsuleVaultError interface.
func (e *ValidationError) CapsuleVaultError() {}

// wrapError converts internal API errors to public errors.
// This ensures that errors.Is() checks work with public sentinel errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, api.ErrCapsuleNotFound):
		return fmt.Errorf("%w", ErrCapsuleNotFound)
	case errors.Is(err, api.ErrContentNotFound):
		return fmt.Errorf("%w", ErrContentNotFound)
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			RequestID:  apiErr.RequestID,
		}
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return &NetworkError{
			Err:     netErr.Err,
			URL:     netErr.URL,
			Attempt: netErr.Attempt,
		}
	}

	return err
}
