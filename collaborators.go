package capsulevault

import (
	"context"

	"github.com/capsulevault/client-go/internal/api"
	"github.com/capsulevault/client-go/internal/crypto"
)

// ContentStore persists opaque ciphertext blobs under content identifiers.
// The SDK never asks the store to interpret a blob; encryption happens
// before Put and decryption after Get.
type ContentStore interface {
	// Put stores content and returns its content identifier.
	Put(ctx context.Context, content []byte) (string, error)
	// Get retrieves content by identifier.
	Get(ctx context.Context, cid string) ([]byte, error)
}

// Ledger records capsules and answers unlock-condition queries. Its
// transaction ids are opaque "transaction accepted" signals; the SDK makes
// no consensus or ordering assumptions about them.
type Ledger interface {
	// RegisterCapsule records a new capsule and returns a transaction id.
	RegisterCapsule(ctx context.Context, capsule *Capsule) (string, error)
	// GetCapsule retrieves a capsule by id.
	GetCapsule(ctx context.Context, capsuleID string) (*Capsule, error)
	// ListCapsules returns capsules matching the query. The owner filter is
	// empty unless the query is restricted to one wallet.
	ListCapsules(ctx context.Context, query CapsuleQuery, owner string) ([]*Capsule, error)
	// ApproveCapsule records a multisig approval by the given wallet.
	ApproveCapsule(ctx context.Context, capsuleID, approver string) (*ApprovalResult, error)
	// QueryUnlockStatus reports whether the capsule's unlock condition is
	// currently satisfied, with an optional human-readable reason when not.
	QueryUnlockStatus(ctx context.Context, capsuleID string) (bool, string, error)
	// MarkUnlocked records a successful unlock and returns a transaction id.
	MarkUnlocked(ctx context.Context, capsuleID string) (string, error)
}

// apiStore backs ContentStore with the HTTP store client.
type apiStore struct {
	client *api.Client
}

func (s *apiStore) Put(ctx context.Context, content []byte) (string, error) {
	resp, err := s.client.AddContent(ctx, content)
	if err != nil {
		return "", wrapError(err)
	}
	return resp.CID, nil
}

func (s *apiStore) Get(ctx context.Context, cid string) ([]byte, error) {
	content, err := s.client.CatContent(ctx, cid)
	if err != nil {
		return nil, wrapError(err)
	}
	return content, nil
}

// apiLedger backs Ledger with the HTTP ledger client.
type apiLedger struct {
	client *api.Client
}

func (l *apiLedger) RegisterCapsule(ctx context.Context, capsule *Capsule) (string, error) {
	req := api.RegisterCapsuleRequest{
		ID:          capsule.ID,
		Owner:       capsule.Owner,
		CID:         capsule.CID,
		ContentHash: capsule.ContentHash,
		Nonce:       crypto.ToBase64(capsule.Nonce),
		WalletBound: capsule.WalletBound,
		ContentType: capsule.ContentType,
		ContentSize: capsule.ContentSize,
		Condition:   conditionToWire(capsule.Condition),
	}
	if capsule.Salt != nil {
		req.Salt = crypto.ToBase64(capsule.Salt)
	}

	resp, err := l.client.RegisterCapsule(ctx, req)
	if err != nil {
		return "", wrapError(err)
	}
	return resp.TransactionID, nil
}

func (l *apiLedger) GetCapsule(ctx context.Context, capsuleID string) (*Capsule, error) {
	record, err := l.client.GetCapsule(ctx, capsuleID)
	if err != nil {
		return nil, wrapError(err)
	}
	return capsuleFromRecord(record)
}

func (l *apiLedger) ListCapsules(ctx context.Context, query CapsuleQuery, owner string) ([]*Capsule, error) {
	resp, err := l.client.ListCapsules(ctx, owner, string(query.Type), query.Status, query.Limit, query.Offset)
	if err != nil {
		return nil, wrapError(err)
	}

	capsules := make([]*Capsule, 0, len(resp.Capsules))
	for i := range resp.Capsules {
		capsule, err := capsuleFromRecord(&resp.Capsules[i])
		if err != nil {
			return nil, err
		}
		capsules = append(capsules, capsule)
	}
	return capsules, nil
}

func (l *apiLedger) ApproveCapsule(ctx context.Context, capsuleID, approver string) (*ApprovalResult, error) {
	resp, err := l.client.ApproveCapsule(ctx, capsuleID, approver)
	if err != nil {
		return nil, wrapError(err)
	}
	return &ApprovalResult{
		TransactionID:     resp.TransactionID,
		CurrentApprovals:  resp.CurrentApprovals,
		RequiredApprovals: resp.RequiredApprovals,
	}, nil
}

func (l *apiLedger) QueryUnlockStatus(ctx context.Context, capsuleID string) (bool, string, error) {
	resp, err := l.client.QueryUnlockStatus(ctx, capsuleID)
	if err != nil {
		return false, "", wrapError(err)
	}
	return resp.Unlockable, resp.Reason, nil
}

func (l *apiLedger) MarkUnlocked(ctx context.Context, capsuleID string) (string, error) {
	resp, err := l.client.MarkUnlocked(ctx, capsuleID)
	if err != nil {
		return "", wrapError(err)
	}
	return resp.TransactionID, nil
}

func conditionToWire(cond UnlockCondition) api.UnlockConditionWire {
	return api.UnlockConditionWire{
		Type:       string(cond.Type),
		UnlockTime: cond.UnlockTime,
		Threshold:  cond.Threshold,
		Approvers:  cond.Approvers,
		Approvals:  cond.Approvals,
		Price:      cond.Price,
		Paid:       cond.Paid,
	}
}

func capsuleFromRecord(record *api.CapsuleRecord) (*Capsule, error) {
	nonce, err := crypto.FromBase64(record.Nonce)
	if err != nil {
		return nil, &APIError{StatusCode: 502, Message: "malformed nonce in ledger record"}
	}

	var salt []byte
	if record.Salt != "" {
		salt, err = crypto.FromBase64(record.Salt)
		if err != nil {
			return nil, &APIError{StatusCode: 502, Message: "malformed salt in ledger record"}
		}
	}

	return &Capsule{
		ID:          record.ID,
		Owner:       record.Owner,
		CID:         record.CID,
		ContentHash: record.ContentHash,
		Nonce:       nonce,
		Salt:        salt,
		WalletBound: record.WalletBound,
		ContentType: record.ContentType,
		ContentSize: record.ContentSize,
		Condition: UnlockCondition{
			Type:       ConditionType(record.Condition.Type),
			UnlockTime: record.Condition.UnlockTime,
			Threshold:  record.Condition.Threshold,
			Approvers:  record.Condition.Approvers,
			Approvals:  record.Condition.Approvals,
			Price:      record.Condition.Price,
			Paid:       record.Condition.Paid,
		},
		CreatedAt: record.CreatedAt,
		Unlocked:  record.Unlocked,
	}, nil
}
