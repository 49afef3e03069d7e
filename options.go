package capsulevault

import (
	"net/http"
	"time"
)

const (
	defaultLedgerURL = "https://ledger.capsulevault.io"
	defaultStoreURL  = "https://store.capsulevault.io"
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	ledgerURL     string
	storeURL      string
	apiKey        string
	walletAddress string
	httpClient    *http.Client
	timeout       time.Duration
	retries       int
	retryOn       []int

	// Injected collaborators override the HTTP-backed defaults.
	store  ContentStore
	ledger Ledger
}

// createConfig holds configuration for capsule creation.
type createConfig struct {
	capsuleID   string
	contentType string
	walletBound bool
}

// unlockConfig holds configuration for capsule unlocking.
type unlockConfig struct {
	key string
}

// Option configures the client.
type Option func(*clientConfig)

// CreateOption configures capsule creation.
type CreateOption func(*createConfig)

// UnlockOption configures capsule unlocking.
type UnlockOption func(*unlockConfig)

// WithLedgerURL sets the ledger API base URL.
func WithLedgerURL(url string) Option {
	return func(c *clientConfig) {
		c.ledgerURL = url
	}
}

// WithStoreURL sets the content-store API base URL.
func WithStoreURL(url string) Option {
	return func(c *clientConfig) {
		c.storeURL = url
	}
}

// WithAPIKey sets the API key sent to the ledger and store.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithWalletAddress sets the wallet address used as capsule owner, as
// approver identity, and as the derivation context for wallet-bound keys.
func WithWalletAddress(address string) Option {
	return func(c *clientConfig) {
		c.walletAddress = address
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetries sets the number of retries for API calls.
func WithRetries(count int) Option {
	return func(c *clientConfig) {
		c.retries = count
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
// Default: [408, 429, 500, 502, 503, 504]
func WithRetryOn(statusCodes []int) Option {
	return func(c *clientConfig) {
		c.retryOn = statusCodes
	}
}

// WithContentStore injects a ContentStore implementation, replacing the
// HTTP-backed default. Useful for tests and offline operation.
func WithContentStore(store ContentStore) Option {
	return func(c *clientConfig) {
		c.store = store
	}
}

// WithLedger injects a Ledger implementation, replacing the HTTP-backed
// default. Useful for tests and offline operation.
func WithLedger(ledger Ledger) Option {
	return func(c *clientConfig) {
		c.ledger = ledger
	}
}

// WithConfig applies a loaded configuration file. Explicit options given
// after WithConfig override its values.
func WithConfig(cfg *Config) Option {
	return func(c *clientConfig) {
		if cfg.LedgerURL != "" {
			c.ledgerURL = cfg.LedgerURL
		}
		if cfg.StoreURL != "" {
			c.storeURL = cfg.StoreURL
		}
		if cfg.APIKey != "" {
			c.apiKey = cfg.APIKey
		}
		if cfg.WalletAddress != "" {
			c.walletAddress = cfg.WalletAddress
		}
	}
}

// WithWalletBinding makes the capsule's key derivable from the client's
// wallet context instead of randomly generated. No key is returned to the
// caller; unlocking re-derives it from the capsule metadata.
func WithWalletBinding() CreateOption {
	return func(c *createConfig) {
		c.walletBound = true
	}
}

// WithCapsuleID sets an explicit capsule id instead of a generated one.
func WithCapsuleID(id string) CreateOption {
	return func(c *createConfig) {
		c.capsuleID = id
	}
}

// WithContentType records a MIME type in the capsule metadata.
func WithContentType(contentType string) CreateOption {
	return func(c *createConfig) {
		c.contentType = contentType
	}
}

// WithKey supplies the base64-encoded encryption key for unlocking a
// randomly keyed capsule.
func WithKey(key string) UnlockOption {
	return func(c *unlockConfig) {
		c.key = key
	}
}
