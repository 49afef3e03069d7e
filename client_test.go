package capsulevault

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testWallet = "0xabcdef0123456789abcdef0123456789abcdef01"

// testEnv wires a client to in-memory collaborators with a movable clock.
type testEnv struct {
	client *Client
	store  *MemoryStore
	ledger *MemoryLedger
	now    time.Time
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	env := &testEnv{
		store:  NewMemoryStore(),
		ledger: NewMemoryLedger(),
		now:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	env.ledger.Now = func() time.Time { return env.now }

	opts = append([]Option{
		WithContentStore(env.store),
		WithLedger(env.ledger),
		WithWalletAddress(testWallet),
	}, opts...)

	client, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.client = client
	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.now = env.now.Add(d)
}

func TestNew_MissingLedger(t *testing.T) {
	_, err := New(WithLedgerURL(""))
	if !errors.Is(err, ErrMissingLedger) {
		t.Errorf("New() error = %v, want ErrMissingLedger", err)
	}
}

func TestNew_MissingStore(t *testing.T) {
	_, err := New(WithLedger(NewMemoryLedger()), WithStoreURL(""))
	if !errors.Is(err, ErrMissingStore) {
		t.Errorf("New() error = %v, want ErrMissingStore", err)
	}
}

func TestCreateTimeCapsule_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	content := []byte("This is a secret message!")
	unlockAt := uint64(env.now.Add(time.Hour).UnixMilli())

	created, err := env.client.CreateTimeCapsule(ctx, content, unlockAt)
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}
	if created.EncryptionKey == "" {
		t.Fatal("CreateTimeCapsule() returned empty encryption key")
	}
	if created.CID == "" {
		t.Fatal("CreateTimeCapsule() returned empty CID")
	}
	if len(created.ContentHash) != 64 {
		t.Errorf("ContentHash length = %d, want 64", len(created.ContentHash))
	}

	// Before the unlock time the capsule stays shut.
	_, err = env.client.UnlockCapsule(ctx, created.CapsuleID, WithKey(created.EncryptionKey))
	if !errors.Is(err, ErrCapsuleLocked) {
		t.Fatalf("UnlockCapsule() before unlock time error = %v, want ErrCapsuleLocked", err)
	}
	var locked *LockedError
	if !errors.As(err, &locked) {
		t.Fatalf("UnlockCapsule() error type = %T, want *LockedError", err)
	}
	if locked.Reason == "" {
		t.Error("LockedError.Reason is empty")
	}

	env.advance(2 * time.Hour)

	unlocked, err := env.client.UnlockCapsule(ctx, created.CapsuleID, WithKey(created.EncryptionKey))
	if err != nil {
		t.Fatalf("UnlockCapsule() error = %v", err)
	}
	if string(unlocked.Content) != string(content) {
		t.Errorf("Content = %q, want %q", unlocked.Content, content)
	}
	if unlocked.ContentHash != created.ContentHash {
		t.Errorf("ContentHash = %s, want %s", unlocked.ContentHash, created.ContentHash)
	}

	capsule, err := env.client.GetCapsule(ctx, created.CapsuleID)
	if err != nil {
		t.Fatalf("GetCapsule() error = %v", err)
	}
	if !capsule.Unlocked {
		t.Error("capsule not marked unlocked after UnlockCapsule")
	}
}

func TestCreateTimeCapsule_WalletBound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	content := []byte("wallet-bound secret")
	unlockAt := uint64(env.now.UnixMilli()) // already unlockable

	created, err := env.client.CreateTimeCapsule(ctx, content, unlockAt, WithWalletBinding())
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}
	if created.EncryptionKey != "" {
		t.Error("wallet-bound capsule must not return an encryption key")
	}

	// The owning wallet re-derives the key from capsule metadata.
	unlocked, err := env.client.UnlockCapsule(ctx, created.CapsuleID)
	if err != nil {
		t.Fatalf("UnlockCapsule() error = %v", err)
	}
	if string(unlocked.Content) != string(content) {
		t.Errorf("Content = %q, want %q", unlocked.Content, content)
	}
}

func TestUnlockCapsule_WalletMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.client.CreateTimeCapsule(ctx, []byte("for owner only"), uint64(env.now.UnixMilli()), WithWalletBinding())
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}

	other, err := New(
		WithContentStore(env.store),
		WithLedger(env.ledger),
		WithWalletAddress("0x1111111111111111111111111111111111111111"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = other.UnlockCapsule(ctx, created.CapsuleID)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("UnlockCapsule() with wrong wallet error = %v, want ErrDecryptionFailed", err)
	}
}

func TestUnlockCapsule_WrongKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.client.CreateTimeCapsule(ctx, []byte("secret"), uint64(env.now.UnixMilli()))
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}

	other, err := env.client.CreateTimeCapsule(ctx, []byte("decoy"), uint64(env.now.UnixMilli()))
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}

	_, err = env.client.UnlockCapsule(ctx, created.CapsuleID, WithKey(other.EncryptionKey))
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("UnlockCapsule() with wrong key error = %v, want ErrDecryptionFailed", err)
	}

	var decErr *DecryptionError
	if !errors.As(err, &decErr) {
		t.Fatalf("error type = %T, want *DecryptionError", err)
	}
	if got := decErr.Error(); got != "capsule "+created.CapsuleID+": wrong key or corrupted data" {
		t.Errorf("DecryptionError message = %q", got)
	}
}

func TestUnlockCapsule_MissingKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.client.CreateTimeCapsule(ctx, []byte("secret"), uint64(env.now.UnixMilli()))
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}

	_, err = env.client.UnlockCapsule(ctx, created.CapsuleID)
	if !errors.Is(err, ErrMissingKey) {
		t.Errorf("UnlockCapsule() without key error = %v, want ErrMissingKey", err)
	}
}

func TestUnlockCapsule_TamperedCiphertext(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.client.CreateTimeCapsule(ctx, []byte("untouchable"), uint64(env.now.UnixMilli()))
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}

	env.store.mu.Lock()
	env.store.blobs[created.CID][0] ^= 0x01
	env.store.mu.Unlock()

	_, err = env.client.UnlockCapsule(ctx, created.CapsuleID, WithKey(created.EncryptionKey))
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("UnlockCapsule() with tampered ciphertext error = %v, want ErrDecryptionFailed", err)
	}
}

func TestUnlockCapsule_IntegrityMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.client.CreateTimeCapsule(ctx, []byte("original"), uint64(env.now.UnixMilli()))
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}

	// Simulate a ledger recording a different hash than the content's.
	bogus := "aa" + created.ContentHash[2:]
	env.ledger.mu.Lock()
	env.ledger.capsules[created.CapsuleID].ContentHash = bogus
	env.ledger.mu.Unlock()

	_, err = env.client.UnlockCapsule(ctx, created.CapsuleID, WithKey(created.EncryptionKey))
	if !errors.Is(err, ErrContentIntegrity) {
		t.Fatalf("UnlockCapsule() error = %v, want ErrContentIntegrity", err)
	}
	var intErr *IntegrityError
	if !errors.As(err, &intErr) {
		t.Fatalf("error type = %T, want *IntegrityError", err)
	}
	if intErr.Expected != bogus {
		t.Errorf("IntegrityError.Expected = %s, want %s", intErr.Expected, bogus)
	}
	if intErr.Computed != created.ContentHash {
		t.Errorf("IntegrityError.Computed = %s, want %s", intErr.Computed, created.ContentHash)
	}
}

func TestMultisigCapsule_ApprovalFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	approverB := "0x2222222222222222222222222222222222222222"
	approverC := "0x3333333333333333333333333333333333333333"
	approvers := []string{testWallet, approverB, approverC}

	created, err := env.client.CreateMultisigCapsule(ctx, []byte("needs two votes"), 2, approvers)
	if err != nil {
		t.Fatalf("CreateMultisigCapsule() error = %v", err)
	}

	_, err = env.client.UnlockCapsule(ctx, created.CapsuleID, WithKey(created.EncryptionKey))
	if !errors.Is(err, ErrCapsuleLocked) {
		t.Fatalf("UnlockCapsule() with no approvals error = %v, want ErrCapsuleLocked", err)
	}

	result, err := env.client.ApproveCapsule(ctx, created.CapsuleID)
	if err != nil {
		t.Fatalf("ApproveCapsule() error = %v", err)
	}
	if result.CurrentApprovals != 1 || result.RequiredApprovals != 2 {
		t.Errorf("approvals = %d/%d, want 1/2", result.CurrentApprovals, result.RequiredApprovals)
	}

	// Approving twice from the same wallet does not double-count.
	result, err = env.client.ApproveCapsule(ctx, created.CapsuleID)
	if err != nil {
		t.Fatalf("ApproveCapsule() error = %v", err)
	}
	if result.CurrentApprovals != 1 {
		t.Errorf("repeat approval count = %d, want 1", result.CurrentApprovals)
	}

	clientB, err := New(WithContentStore(env.store), WithLedger(env.ledger), WithWalletAddress(approverB))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	result, err = clientB.ApproveCapsule(ctx, created.CapsuleID)
	if err != nil {
		t.Fatalf("ApproveCapsule() error = %v", err)
	}
	if result.CurrentApprovals != 2 {
		t.Errorf("approvals = %d, want 2", result.CurrentApprovals)
	}

	unlocked, err := env.client.UnlockCapsule(ctx, created.CapsuleID, WithKey(created.EncryptionKey))
	if err != nil {
		t.Fatalf("UnlockCapsule() after threshold error = %v", err)
	}
	if string(unlocked.Content) != "needs two votes" {
		t.Errorf("Content = %q", unlocked.Content)
	}
}

func TestMultisigCapsule_NotApprover(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.client.CreateMultisigCapsule(ctx, []byte("x"), 1, []string{"0x4444444444444444444444444444444444444444"})
	if err != nil {
		t.Fatalf("CreateMultisigCapsule() error = %v", err)
	}

	_, err = env.client.ApproveCapsule(ctx, created.CapsuleID)
	if !errors.Is(err, ErrNotApprover) {
		t.Errorf("ApproveCapsule() error = %v, want ErrNotApprover", err)
	}
}

func TestCreateMultisigCapsule_UnsatisfiableThreshold(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		threshold uint64
		approvers []string
	}{
		{"zero threshold", 0, []string{testWallet}},
		{"threshold above approver count", 3, []string{testWallet, "0x5555555555555555555555555555555555555555"}},
		{"no approvers", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.client.CreateMultisigCapsule(context.Background(), []byte("x"), tt.threshold, tt.approvers)
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Errorf("CreateMultisigCapsule() error = %v, want *ValidationError", err)
			}
		})
	}
}

func TestPaymentCapsule_UnlocksAfterPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.client.CreatePaymentCapsule(ctx, []byte("pay to view"), 1000)
	if err != nil {
		t.Fatalf("CreatePaymentCapsule() error = %v", err)
	}

	_, err = env.client.UnlockCapsule(ctx, created.CapsuleID, WithKey(created.EncryptionKey))
	if !errors.Is(err, ErrCapsuleLocked) {
		t.Fatalf("UnlockCapsule() before payment error = %v, want ErrCapsuleLocked", err)
	}

	if err := env.ledger.RecordPayment(created.CapsuleID); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	unlocked, err := env.client.UnlockCapsule(ctx, created.CapsuleID, WithKey(created.EncryptionKey))
	if err != nil {
		t.Fatalf("UnlockCapsule() after payment error = %v", err)
	}
	if string(unlocked.Content) != "pay to view" {
		t.Errorf("Content = %q", unlocked.Content)
	}
}

func TestPendingApprovals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	approverB := "0x6666666666666666666666666666666666666666"

	created, err := env.client.CreateMultisigCapsule(ctx, []byte("x"), 2, []string{testWallet, approverB})
	if err != nil {
		t.Fatalf("CreateMultisigCapsule() error = %v", err)
	}
	// A capsule that does not name the wallet must not show up.
	if _, err := env.client.CreateMultisigCapsule(ctx, []byte("y"), 1, []string{approverB}); err != nil {
		t.Fatalf("CreateMultisigCapsule() error = %v", err)
	}

	pending, err := env.client.PendingApprovals(ctx)
	if err != nil {
		t.Fatalf("PendingApprovals() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("PendingApprovals() returned %d items, want 1", len(pending))
	}
	if pending[0].CapsuleID != created.CapsuleID {
		t.Errorf("pending capsule = %s, want %s", pending[0].CapsuleID, created.CapsuleID)
	}
	if pending[0].RequiredApprovals != 2 {
		t.Errorf("RequiredApprovals = %d, want 2", pending[0].RequiredApprovals)
	}

	// After voting, the capsule drops off the wallet's pending list.
	if _, err := env.client.ApproveCapsule(ctx, created.CapsuleID); err != nil {
		t.Fatalf("ApproveCapsule() error = %v", err)
	}
	pending, err = env.client.PendingApprovals(ctx)
	if err != nil {
		t.Fatalf("PendingApprovals() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("PendingApprovals() after voting returned %d items, want 0", len(pending))
	}
}

func TestListCapsules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := env.client.CreateTimeCapsule(ctx, []byte("c"), uint64(env.now.UnixMilli())); err != nil {
			t.Fatalf("CreateTimeCapsule() error = %v", err)
		}
		env.advance(time.Minute)
	}
	if _, err := env.client.CreatePaymentCapsule(ctx, []byte("p"), 10); err != nil {
		t.Fatalf("CreatePaymentCapsule() error = %v", err)
	}

	all, err := env.client.ListCapsules(ctx, NewCapsuleQuery())
	if err != nil {
		t.Fatalf("ListCapsules() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("ListCapsules() returned %d, want 4", len(all))
	}

	timed, err := env.client.ListCapsules(ctx, NewCapsuleQuery().WithType(ConditionTime))
	if err != nil {
		t.Fatalf("ListCapsules() error = %v", err)
	}
	if len(timed) != 3 {
		t.Errorf("time capsules = %d, want 3", len(timed))
	}

	limited, err := env.client.ListCapsules(ctx, NewCapsuleQuery().WithLimit(2))
	if err != nil {
		t.Fatalf("ListCapsules() error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited list = %d, want 2", len(limited))
	}
	// Most recent first.
	if limited[0].CreatedAt < limited[1].CreatedAt {
		t.Error("ListCapsules() not sorted most recent first")
	}

	mine, err := env.client.ListCapsules(ctx, NewCapsuleQuery().Mine())
	if err != nil {
		t.Fatalf("ListCapsules() error = %v", err)
	}
	if len(mine) != 4 {
		t.Errorf("owned capsules = %d, want 4", len(mine))
	}
}

func TestListCapsules_MineRequiresWallet(t *testing.T) {
	client, err := New(WithContentStore(NewMemoryStore()), WithLedger(NewMemoryLedger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = client.ListCapsules(context.Background(), NewCapsuleQuery().Mine())
	if !errors.Is(err, ErrMissingWallet) {
		t.Errorf("ListCapsules() error = %v, want ErrMissingWallet", err)
	}
}

func TestCreateCapsule_WalletBindingRequiresWallet(t *testing.T) {
	client, err := New(WithContentStore(NewMemoryStore()), WithLedger(NewMemoryLedger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = client.CreateTimeCapsule(context.Background(), []byte("x"), 0, WithWalletBinding())
	if !errors.Is(err, ErrMissingWallet) {
		t.Errorf("CreateTimeCapsule() error = %v, want ErrMissingWallet", err)
	}
}

func TestCreateCapsule_ExplicitIDConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.client.CreateTimeCapsule(ctx, []byte("a"), 0, WithCapsuleID("capsule-fixed")); err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}
	_, err := env.client.CreateTimeCapsule(ctx, []byte("b"), 0, WithCapsuleID("capsule-fixed"))
	if !errors.Is(err, ErrCapsuleExists) {
		t.Errorf("CreateTimeCapsule() with duplicate id error = %v, want ErrCapsuleExists", err)
	}
}

func TestVerifyContent(t *testing.T) {
	env := newTestEnv(t)
	content := []byte("verify me")

	created, err := env.client.CreateTimeCapsule(context.Background(), content, 0)
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}

	ok, err := env.client.VerifyContent(content, created.ContentHash)
	if err != nil {
		t.Fatalf("VerifyContent() error = %v", err)
	}
	if !ok {
		t.Error("VerifyContent() = false for matching content")
	}

	ok, err = env.client.VerifyContent([]byte("other"), created.ContentHash)
	if err != nil {
		t.Fatalf("VerifyContent() error = %v", err)
	}
	if ok {
		t.Error("VerifyContent() = true for mismatched content")
	}

	if _, err := env.client.VerifyContent(content, "nothex"); err == nil {
		t.Error("VerifyContent() with bad hash encoding succeeded")
	}
}

func TestCapsuleStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.client.CreateTimeCapsule(ctx, []byte("x"), uint64(env.now.Add(time.Hour).UnixMilli()))
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}

	status, err := env.client.CapsuleStatus(ctx, created.CapsuleID)
	if err != nil {
		t.Fatalf("CapsuleStatus() error = %v", err)
	}
	if status.Unlockable {
		t.Error("Unlockable = true before unlock time")
	}
	if status.Reason == "" {
		t.Error("Reason is empty for a locked capsule")
	}
	if status.Capsule.ID != created.CapsuleID {
		t.Errorf("Capsule.ID = %s, want %s", status.Capsule.ID, created.CapsuleID)
	}

	env.advance(2 * time.Hour)

	status, err = env.client.CapsuleStatus(ctx, created.CapsuleID)
	if err != nil {
		t.Fatalf("CapsuleStatus() error = %v", err)
	}
	if !status.Unlockable {
		t.Errorf("Unlockable = false after unlock time (reason %q)", status.Reason)
	}
	if status.Reason != "" {
		t.Errorf("Reason = %q, want empty", status.Reason)
	}
}

func TestUnlockCapsule_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.client.UnlockCapsule(context.Background(), "capsule-missing")
	if !errors.Is(err, ErrCapsuleNotFound) {
		t.Errorf("UnlockCapsule() error = %v, want ErrCapsuleNotFound", err)
	}
}
