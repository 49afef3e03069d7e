// Package api provides HTTP clients for the two external collaborators of
// the CapsuleVault SDK: the capsule ledger and the content-addressed store.
// It handles authentication, request/response serialization, and automatic
// retry with exponential backoff for transient failures.
//
// The ledger client registers capsules, counts multisig approvals, and
// answers unlock-status queries. The store client uploads and retrieves
// opaque ciphertext blobs by content identifier. Neither client interprets
// the byte blobs it moves; encryption and hashing live in internal/crypto.
//
// # Retry Behavior
//
// Requests are retried with exponential backoff and jitter. By default,
// requests are retried up to 3 times for these HTTP status codes:
//
//   - 408 Request Timeout
//   - 429 Too Many Requests
//   - 500 Internal Server Error
//   - 502 Bad Gateway
//   - 503 Service Unavailable
//   - 504 Gateway Timeout
//
// # Error Handling
//
// The package defines sentinel errors for common ledger error conditions:
//
//   - [ErrUnauthorized]: Invalid or expired API key (401).
//   - [ErrCapsuleNotFound]: Capsule does not exist (404).
//   - [ErrContentNotFound]: Stored content does not exist (404).
//   - [ErrCapsuleExists]: Capsule with that id is already registered (409).
//   - [ErrRateLimited]: Rate limit exceeded (429).
//
// Use errors.Is to check for specific error types:
//
//	if errors.Is(err, api.ErrCapsuleNotFound) {
//	    // Handle missing capsule
//	}
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. Multiple goroutines may call
// methods on a single Client simultaneously.
package api
