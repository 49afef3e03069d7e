package capsulevault

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/mr-tron/base58"

	"github.com/capsulevault/client-go/internal/crypto"
)

// MemoryStore is an in-process ContentStore. It backs unit tests and
// offline use; identifiers follow the CIDv1 raw-BLAKE3 byte layout so they
// are interchangeable with a real content-addressed store.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory content store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// cidPrefix is the CIDv1 header for a raw block addressed by a 32-byte
// BLAKE3 multihash: version, raw codec, blake3 code, digest length.
var cidPrefix = []byte{0x01, 0x55, 0x1e, 0x20}

// ContentID computes the content identifier the store would assign to
// content, without storing it.
func ContentID(content []byte) string {
	digest := crypto.Hash(content)
	return base58.Encode(append(slices.Clone(cidPrefix), digest[:]...))
}

// Put stores content under its content identifier. Storing the same bytes
// twice is idempotent.
func (s *MemoryStore) Put(_ context.Context, content []byte) (string, error) {
	cid := ContentID(content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[cid] = slices.Clone(content)
	return cid, nil
}

// Get retrieves content by identifier.
func (s *MemoryStore) Get(_ context.Context, cid string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.blobs[cid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContentNotFound, cid)
	}
	return slices.Clone(content), nil
}

// MemoryLedger is an in-process Ledger for tests and offline use. Unlock
// conditions are evaluated locally: time against the ledger's clock,
// multisig against recorded approvals, payment against RecordPayment.
type MemoryLedger struct {
	mu       sync.Mutex
	capsules map[string]*Capsule
	txSeq    int

	// Now supplies the ledger's clock; defaults to time.Now. Tests may
	// replace it to move time.
	Now func() time.Time
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		capsules: make(map[string]*Capsule),
		Now:      time.Now,
	}
}

func (l *MemoryLedger) nextTx() string {
	l.txSeq++
	return fmt.Sprintf("memtx-%06d", l.txSeq)
}

// RegisterCapsule records a new capsule.
func (l *MemoryLedger) RegisterCapsule(_ context.Context, capsule *Capsule) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.capsules[capsule.ID]; exists {
		return "", fmt.Errorf("%w: %s", ErrCapsuleExists, capsule.ID)
	}

	stored := *capsule
	stored.CreatedAt = uint64(l.Now().UnixMilli())
	l.capsules[capsule.ID] = &stored
	return l.nextTx(), nil
}

// GetCapsule retrieves a capsule by id.
func (l *MemoryLedger) GetCapsule(_ context.Context, capsuleID string) (*Capsule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	capsule, ok := l.capsules[capsuleID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCapsuleNotFound, capsuleID)
	}

	copied := *capsule
	return &copied, nil
}

// ListCapsules returns capsules matching the query, most recent first.
func (l *MemoryLedger) ListCapsules(_ context.Context, query CapsuleQuery, owner string) ([]*Capsule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []*Capsule
	for _, capsule := range l.capsules {
		if query.Type != "" && capsule.Condition.Type != query.Type {
			continue
		}
		if owner != "" && capsule.Owner != owner {
			continue
		}
		switch query.Status {
		case "locked":
			if capsule.Unlocked {
				continue
			}
		case "unlocked":
			if !capsule.Unlocked {
				continue
			}
		}
		copied := *capsule
		matched = append(matched, &copied)
	}

	slices.SortFunc(matched, func(a, b *Capsule) int {
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		default:
			return 0
		}
	})

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[query.Offset:]
	}
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// ApproveCapsule records a multisig approval. Approving twice from the
// same wallet is idempotent.
func (l *MemoryLedger) ApproveCapsule(_ context.Context, capsuleID, approver string) (*ApprovalResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	capsule, ok := l.capsules[capsuleID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCapsuleNotFound, capsuleID)
	}
	if !slices.Contains(capsule.Condition.Approvers, approver) {
		return nil, fmt.Errorf("%w: %s", ErrNotApprover, approver)
	}
	if !slices.Contains(capsule.Condition.Approvals, approver) {
		capsule.Condition.Approvals = append(capsule.Condition.Approvals, approver)
	}

	return &ApprovalResult{
		TransactionID:     l.nextTx(),
		CurrentApprovals:  uint64(len(capsule.Condition.Approvals)),
		RequiredApprovals: capsule.Condition.Threshold,
	}, nil
}

// RecordPayment marks a payment capsule as paid.
func (l *MemoryLedger) RecordPayment(capsuleID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	capsule, ok := l.capsules[capsuleID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCapsuleNotFound, capsuleID)
	}
	capsule.Condition.Paid = true
	return nil
}

// QueryUnlockStatus evaluates the capsule's unlock condition.
func (l *MemoryLedger) QueryUnlockStatus(_ context.Context, capsuleID string) (bool, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	capsule, ok := l.capsules[capsuleID]
	if !ok {
		return false, "", fmt.Errorf("%w: %s", ErrCapsuleNotFound, capsuleID)
	}

	switch capsule.Condition.Type {
	case ConditionTime:
		now := uint64(l.Now().UnixMilli())
		if now < capsule.Condition.UnlockTime {
			return false, fmt.Sprintf("unlocks at %d, now %d", capsule.Condition.UnlockTime, now), nil
		}
	case ConditionMultisig:
		got := uint64(len(capsule.Condition.Approvals))
		if got < capsule.Condition.Threshold {
			return false, fmt.Sprintf("%d of %d approvals", got, capsule.Condition.Threshold), nil
		}
	case ConditionPayment:
		if !capsule.Condition.Paid {
			return false, fmt.Sprintf("price %d not paid", capsule.Condition.Price), nil
		}
	}
	return true, "", nil
}

// MarkUnlocked records a successful unlock.
func (l *MemoryLedger) MarkUnlocked(_ context.Context, capsuleID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	capsule, ok := l.capsules[capsuleID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCapsuleNotFound, capsuleID)
	}
	capsule.Unlocked = true
	return l.nextTx(), nil
}
