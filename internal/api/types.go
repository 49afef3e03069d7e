package api

// UnlockConditionWire is the wire representation of an unlock condition.
type UnlockConditionWire struct {
	Type       string   `json:"type"`
	UnlockTime uint64   `json:"unlock_time,omitempty"`
	Threshold  uint64   `json:"threshold,omitempty"`
	Approvers  []string `json:"approvers,omitempty"`
	Approvals  []string `json:"approvals,omitempty"`
	Price      uint64   `json:"price,omitempty"`
	Paid       bool     `json:"paid,omitempty"`
}

// RegisterCapsuleRequest registers a new capsule on the ledger.
// Nonce and Salt are standard base64; ContentHash is lowercase hex.
type RegisterCapsuleRequest struct {
	ID          string              `json:"id"`
	Owner       string              `json:"owner"`
	CID         string              `json:"cid"`
	ContentHash string              `json:"content_hash"`
	Nonce       string              `json:"nonce"`
	Salt        string              `json:"salt,omitempty"`
	WalletBound bool                `json:"wallet_bound,omitempty"`
	ContentType string              `json:"content_type,omitempty"`
	ContentSize uint64              `json:"content_size"`
	Condition   UnlockConditionWire `json:"condition"`
}

// RegisterCapsuleResponse is the ledger's acknowledgement of a registration.
// The transaction digest is an opaque "transaction accepted" signal.
type RegisterCapsuleResponse struct {
	TransactionID string `json:"transaction_id"`
	CreatedAt     uint64 `json:"created_at"`
}

// CapsuleRecord is a capsule as stored on the ledger.
type CapsuleRecord struct {
	ID          string              `json:"id"`
	Owner       string              `json:"owner"`
	CID         string              `json:"cid"`
	ContentHash string              `json:"content_hash"`
	Nonce       string              `json:"nonce"`
	Salt        string              `json:"salt,omitempty"`
	WalletBound bool                `json:"wallet_bound,omitempty"`
	ContentType string              `json:"content_type,omitempty"`
	ContentSize uint64              `json:"content_size"`
	Condition   UnlockConditionWire `json:"condition"`
	CreatedAt   uint64              `json:"created_at"`
	Unlocked    bool                `json:"unlocked"`
}

// ListCapsulesResponse is a page of capsule records.
type ListCapsulesResponse struct {
	Capsules []CapsuleRecord `json:"capsules"`
	Total    int             `json:"total"`
}

// ApproveCapsuleResponse reports the approval count after a multisig vote.
type ApproveCapsuleResponse struct {
	TransactionID     string `json:"transaction_id"`
	CurrentApprovals  uint64 `json:"current_approvals"`
	RequiredApprovals uint64 `json:"required_approvals"`
}

// UnlockStatusResponse answers whether a capsule's unlock condition holds.
type UnlockStatusResponse struct {
	Unlockable bool   `json:"unlockable"`
	Reason     string `json:"reason,omitempty"`
}

// MarkUnlockedResponse acknowledges recording an unlock on the ledger.
type MarkUnlockedResponse struct {
	TransactionID string `json:"transaction_id"`
}

// AddContentResponse is the store's response to an upload.
type AddContentResponse struct {
	CID  string `json:"cid"`
	Size uint64 `json:"size"`
}
