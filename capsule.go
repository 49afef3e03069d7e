package capsulevault

// ConditionType identifies how a capsule becomes unlockable.
type ConditionType string

const (
	// ConditionTime unlocks once a wall-clock timestamp has passed.
	ConditionTime ConditionType = "time"
	// ConditionMultisig unlocks once enough approvers have signed off.
	ConditionMultisig ConditionType = "multisig"
	// ConditionPayment unlocks once the asking price has been paid.
	ConditionPayment ConditionType = "payment"
)

// UnlockCondition describes when a capsule may be opened. Exactly one
// condition applies per capsule; fields not belonging to the condition's
// type are zero.
type UnlockCondition struct {
	Type ConditionType

	// UnlockTime is the unlock timestamp in milliseconds since the Unix
	// epoch. Set for time capsules.
	UnlockTime uint64

	// Threshold is the number of approvals required. Set for multisig capsules.
	Threshold uint64
	// Approvers are the wallet addresses allowed to approve.
	Approvers []string
	// Approvals are the addresses that have approved so far.
	Approvals []string

	// Price is the unlock price in the ledger's smallest unit. Set for
	// payment capsules.
	Price uint64
	// Paid reports whether the price has been paid.
	Paid bool
}

// Capsule is a registered unit of encrypted, conditionally unlockable
// content. Everything in it is public capsule metadata; the encryption key
// is never part of a Capsule.
type Capsule struct {
	ID    string
	Owner string

	// CID is the content identifier of the ciphertext in the content store.
	CID string
	// ContentHash is the lowercase hex BLAKE3-256 digest of the plaintext,
	// recorded for integrity verification after decryption.
	ContentHash string
	// Nonce is the 24-byte encryption nonce. Not secret.
	Nonce []byte
	// Salt is the 32-byte key-derivation salt for wallet-bound capsules,
	// nil otherwise. Not secret.
	Salt []byte
	// WalletBound reports whether the key is re-derivable from the owner's
	// wallet context instead of being held by the user.
	WalletBound bool

	ContentType string
	ContentSize uint64
	Condition   UnlockCondition
	CreatedAt   uint64
	Unlocked    bool
}

// CreateCapsuleResult is returned once per capsule creation.
type CreateCapsuleResult struct {
	CapsuleID     string
	TransactionID string
	CID           string
	ContentHash   string
	// EncryptionKey is the base64-encoded key for randomly keyed capsules.
	// It is shown here exactly once and never persisted by the SDK; the
	// caller must keep it. Empty for wallet-bound capsules.
	EncryptionKey string
}

// UnlockResult is the outcome of a successful unlock.
type UnlockResult struct {
	Content       []byte
	ContentHash   string
	TransactionID string
}

// ApprovalResult reports the multisig approval count after a vote.
type ApprovalResult struct {
	TransactionID     string
	CurrentApprovals  uint64
	RequiredApprovals uint64
}

// CapsuleStatus combines a capsule's metadata with the live evaluation of
// its unlock condition.
type CapsuleStatus struct {
	Capsule    *Capsule
	Unlockable bool
	// Reason says why the capsule is still locked; empty when unlockable.
	Reason string
}

// PendingApproval is a multisig capsule awaiting the caller's approval.
type PendingApproval struct {
	CapsuleID         string
	Owner             string
	CreatedAt         uint64
	CurrentApprovals  uint64
	RequiredApprovals uint64
}

// CapsuleQuery filters capsule listings.
type CapsuleQuery struct {
	Type     ConditionType
	Status   string
	MineOnly bool
	Limit    int
	Offset   int
}

// NewCapsuleQuery returns a query with the default page size.
func NewCapsuleQuery() CapsuleQuery {
	return CapsuleQuery{Limit: 50}
}

// WithType restricts the query to one condition type.
func (q CapsuleQuery) WithType(t ConditionType) CapsuleQuery {
	q.Type = t
	return q
}

// WithStatus restricts the query to "locked" or "unlocked" capsules.
func (q CapsuleQuery) WithStatus(status string) CapsuleQuery {
	q.Status = status
	return q
}

// Mine restricts the query to capsules owned by the client's wallet.
func (q CapsuleQuery) Mine() CapsuleQuery {
	q.MineOnly = true
	return q
}

// WithLimit sets the page size.
func (q CapsuleQuery) WithLimit(limit int) CapsuleQuery {
	q.Limit = limit
	return q
}

// WithOffset sets the page offset.
func (q CapsuleQuery) WithOffset(offset int) CapsuleQuery {
	q.Offset = offset
	return q
}
