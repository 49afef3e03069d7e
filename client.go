package capsulevault

import (
	"context"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/capsulevault/client-go/internal/api"
	"github.com/capsulevault/client-go/internal/crypto"
)

// Client is the main CapsuleVault client for creating, approving, and
// unlocking capsules. It is safe for concurrent use.
type Client struct {
	store  ContentStore
	ledger Ledger
	wallet string
}

// New creates a new CapsuleVault client. Without injected collaborators
// the ledger and store are reached over HTTP at the configured base URLs.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		ledgerURL: defaultLedgerURL,
		storeURL:  defaultStoreURL,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	c := &Client{
		store:  cfg.store,
		ledger: cfg.ledger,
		wallet: cfg.walletAddress,
	}

	if c.ledger == nil {
		if cfg.ledgerURL == "" {
			return nil, ErrMissingLedger
		}
		apiClient, err := buildAPIClient(cfg.ledgerURL, cfg)
		if err != nil {
			return nil, err
		}
		c.ledger = &apiLedger{client: apiClient}
	}

	if c.store == nil {
		if cfg.storeURL == "" {
			return nil, ErrMissingStore
		}
		apiClient, err := buildAPIClient(cfg.storeURL, cfg)
		if err != nil {
			return nil, err
		}
		c.store = &apiStore{client: apiClient}
	}

	return c, nil
}

// buildAPIClient creates and configures an API client for the given base URL.
func buildAPIClient(baseURL string, cfg *clientConfig) (*api.Client, error) {
	apiOpts := []api.Option{}
	if cfg.timeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.timeout))
	}
	if cfg.retries > 0 {
		apiOpts = append(apiOpts, api.WithRetries(cfg.retries))
	}
	if len(cfg.retryOn) > 0 {
		apiOpts = append(apiOpts, api.WithRetryOn(cfg.retryOn))
	}

	apiClient, err := api.New(baseURL, cfg.apiKey, apiOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.httpClient != nil {
		apiClient.SetHTTPClient(cfg.httpClient)
	}

	return apiClient, nil
}

// WalletAddress returns the wallet address the client acts as.
func (c *Client) WalletAddress() string {
	return c.wallet
}

// CreateTimeCapsule encrypts content and registers a capsule that unlocks
// once unlockTime (milliseconds since the Unix epoch) has passed.
func (c *Client) CreateTimeCapsule(ctx context.Context, content []byte, unlockTime uint64, opts ...CreateOption) (*CreateCapsuleResult, error) {
	return c.createCapsule(ctx, content, UnlockCondition{
		Type:       ConditionTime,
		UnlockTime: unlockTime,
	}, opts)
}

// CreateMultisigCapsule encrypts content and registers a capsule that
// unlocks once threshold of the given approvers have approved.
func (c *Client) CreateMultisigCapsule(ctx context.Context, content []byte, threshold uint64, approvers []string, opts ...CreateOption) (*CreateCapsuleResult, error) {
	if threshold == 0 || uint64(len(approvers)) < threshold {
		return nil, &ValidationError{Errors: []string{
			fmt.Sprintf("threshold %d not satisfiable by %d approvers", threshold, len(approvers)),
		}}
	}

	return c.createCapsule(ctx, content, UnlockCondition{
		Type:      ConditionMultisig,
		Threshold: threshold,
		Approvers: slices.Clone(approvers),
	}, opts)
}

// CreatePaymentCapsule encrypts content and registers a capsule that
// unlocks once the asking price has been paid.
func (c *Client) CreatePaymentCapsule(ctx context.Context, content []byte, price uint64, opts ...CreateOption) (*CreateCapsuleResult, error) {
	return c.createCapsule(ctx, content, UnlockCondition{
		Type:  ConditionPayment,
		Price: price,
	}, opts)
}

func (c *Client) createCapsule(ctx context.Context, content []byte, condition UnlockCondition, opts []CreateOption) (*CreateCapsuleResult, error) {
	cfg := &createConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	capsuleID := cfg.capsuleID
	if capsuleID == "" {
		id, err := newCapsuleID()
		if err != nil {
			return nil, err
		}
		capsuleID = id
	}

	capsule := &Capsule{
		ID:          capsuleID,
		Owner:       c.wallet,
		ContentType: cfg.contentType,
		ContentSize: uint64(len(content)),
		Condition:   condition,
	}

	var (
		result  *crypto.EncryptionResult
		showKey string
	)

	if cfg.walletBound {
		if c.wallet == "" {
			return nil, ErrMissingWallet
		}
		walletResult, err := crypto.EncryptWithWallet(content, c.wallet, capsuleID, condition.UnlockTime)
		if err != nil {
			return nil, err
		}
		result = &walletResult.EncryptionResult
		capsule.Salt = walletResult.KeyDerivationSalt
		capsule.WalletBound = true
	} else {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		defer crypto.Zero(key)

		result, err = crypto.Encrypt(content, key)
		if err != nil {
			return nil, err
		}
		// Shown to the caller exactly once; the SDK keeps no copy.
		showKey = crypto.ToBase64(key)
	}

	capsule.Nonce = result.Nonce
	capsule.ContentHash = crypto.ToHex(result.ContentHash)

	cid, err := c.store.Put(ctx, result.Ciphertext)
	if err != nil {
		return nil, err
	}
	capsule.CID = cid

	tx, err := c.ledger.RegisterCapsule(ctx, capsule)
	if err != nil {
		return nil, err
	}

	return &CreateCapsuleResult{
		CapsuleID:     capsuleID,
		TransactionID: tx,
		CID:           cid,
		ContentHash:   capsule.ContentHash,
		EncryptionKey: showKey,
	}, nil
}

// UnlockCapsule retrieves, decrypts, and integrity-checks a capsule's
// content. Randomly keyed capsules need the key via WithKey; wallet-bound
// capsules re-derive it from the client's wallet and the capsule metadata.
// A capsule whose unlock condition is not yet satisfied fails with a
// LockedError before any content is fetched.
func (c *Client) UnlockCapsule(ctx context.Context, capsuleID string, opts ...UnlockOption) (*UnlockResult, error) {
	cfg := &unlockConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	capsule, err := c.ledger.GetCapsule(ctx, capsuleID)
	if err != nil {
		return nil, err
	}

	unlockable, reason, err := c.ledger.QueryUnlockStatus(ctx, capsuleID)
	if err != nil {
		return nil, err
	}
	if !unlockable {
		return nil, &LockedError{CapsuleID: capsuleID, Reason: reason}
	}

	ciphertext, err := c.store.Get(ctx, capsule.CID)
	if err != nil {
		return nil, err
	}

	var content []byte
	switch {
	case cfg.key != "":
		key, decodeErr := crypto.DecodeKeyBase64(cfg.key)
		if decodeErr != nil || len(key) != crypto.KeySize {
			return nil, &DecryptionError{CapsuleID: capsuleID, Err: decodeErr}
		}
		defer crypto.Zero(key)

		content, err = crypto.Decrypt(ciphertext, capsule.Nonce, key)
	case capsule.WalletBound:
		if c.wallet == "" {
			return nil, ErrMissingWallet
		}
		content, err = crypto.DecryptWithWallet(ciphertext, capsule.Nonce, c.wallet, capsule.ID, capsule.Condition.UnlockTime, capsule.Salt)
	default:
		return nil, ErrMissingKey
	}
	if err != nil {
		// Wrong key, wrong wallet context, and tampered ciphertext are
		// indistinguishable here and stay that way for the caller.
		return nil, &DecryptionError{CapsuleID: capsuleID, Err: err}
	}

	if capsule.ContentHash != "" {
		expected, hexErr := crypto.FromHex(capsule.ContentHash)
		if hexErr != nil {
			return nil, hexErr
		}
		if !crypto.VerifyHash(content, expected) {
			return nil, &IntegrityError{
				CapsuleID: capsuleID,
				Expected:  capsule.ContentHash,
				Computed:  crypto.ToHex(crypto.Hash(content)),
			}
		}
	}

	tx, err := c.ledger.MarkUnlocked(ctx, capsuleID)
	if err != nil {
		return nil, err
	}

	return &UnlockResult{
		Content:       content,
		ContentHash:   capsule.ContentHash,
		TransactionID: tx,
	}, nil
}

// ApproveCapsule records the client wallet's approval on a multisig capsule.
func (c *Client) ApproveCapsule(ctx context.Context, capsuleID string) (*ApprovalResult, error) {
	if c.wallet == "" {
		return nil, ErrMissingWallet
	}
	return c.ledger.ApproveCapsule(ctx, capsuleID, c.wallet)
}

// GetCapsule retrieves a capsule's public metadata.
func (c *Client) GetCapsule(ctx context.Context, capsuleID string) (*Capsule, error) {
	return c.ledger.GetCapsule(ctx, capsuleID)
}

// CapsuleStatus retrieves a capsule's metadata together with a live
// evaluation of its unlock condition.
func (c *Client) CapsuleStatus(ctx context.Context, capsuleID string) (*CapsuleStatus, error) {
	capsule, err := c.ledger.GetCapsule(ctx, capsuleID)
	if err != nil {
		return nil, err
	}

	unlockable, reason, err := c.ledger.QueryUnlockStatus(ctx, capsuleID)
	if err != nil {
		return nil, err
	}

	return &CapsuleStatus{
		Capsule:    capsule,
		Unlockable: unlockable,
		Reason:     reason,
	}, nil
}

// ListCapsules returns capsules matching the query.
func (c *Client) ListCapsules(ctx context.Context, query CapsuleQuery) ([]*Capsule, error) {
	owner := ""
	if query.MineOnly {
		if c.wallet == "" {
			return nil, ErrMissingWallet
		}
		owner = c.wallet
	}
	return c.ledger.ListCapsules(ctx, query, owner)
}

// PendingApprovals lists locked multisig capsules that name the client's
// wallet as an approver and have not received its approval yet.
func (c *Client) PendingApprovals(ctx context.Context) ([]PendingApproval, error) {
	if c.wallet == "" {
		return nil, ErrMissingWallet
	}

	capsules, err := c.ledger.ListCapsules(ctx, NewCapsuleQuery().WithType(ConditionMultisig).WithStatus("locked"), "")
	if err != nil {
		return nil, err
	}

	var pending []PendingApproval
	for _, capsule := range capsules {
		if !slices.Contains(capsule.Condition.Approvers, c.wallet) {
			continue
		}
		if slices.Contains(capsule.Condition.Approvals, c.wallet) {
			continue
		}
		pending = append(pending, PendingApproval{
			CapsuleID:         capsule.ID,
			Owner:             capsule.Owner,
			CreatedAt:         capsule.CreatedAt,
			CurrentApprovals:  uint64(len(capsule.Condition.Approvals)),
			RequiredApprovals: capsule.Condition.Threshold,
		})
	}
	return pending, nil
}

// VerifyContent checks retrieved plaintext against a capsule's recorded
// content hash without unlocking anything.
func (c *Client) VerifyContent(content []byte, contentHash string) (bool, error) {
	expected, err := crypto.FromHex(contentHash)
	if err != nil {
		return false, err
	}
	return crypto.VerifyHash(content, expected), nil
}

// newCapsuleID generates a random capsule identifier. Capsule ids are
// public; the random id also feeds wallet key derivation, where it makes
// the derived key unpredictable to observers who missed the registration.
func newCapsuleID() (string, error) {
	id, err := crypto.GenerateSalt()
	if err != nil {
		return "", err
	}
	return "capsule-" + hex.EncodeToString(id[:16]), nil
}
