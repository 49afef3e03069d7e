package capsulevault

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForUnlockable_AlreadyOpen(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.client.CreateTimeCapsule(context.Background(), []byte("x"), uint64(env.now.UnixMilli()))
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}

	// Must return without waiting for a poll tick.
	err = env.client.WaitForUnlockable(context.Background(), created.CapsuleID,
		WithPollInterval(time.Hour))
	if err != nil {
		t.Errorf("WaitForUnlockable() error = %v", err)
	}
}

func TestWaitForUnlockable_BecomesOpen(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.client.CreateMultisigCapsule(context.Background(), []byte("x"), 1, []string{testWallet})
	if err != nil {
		t.Fatalf("CreateMultisigCapsule() error = %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		env.client.ApproveCapsule(context.Background(), created.CapsuleID)
	}()

	err = env.client.WaitForUnlockable(context.Background(), created.CapsuleID,
		WithPollInterval(5*time.Millisecond),
		WithWaitTimeout(5*time.Second))
	if err != nil {
		t.Errorf("WaitForUnlockable() error = %v", err)
	}
}

func TestWaitForUnlockable_Timeout(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.client.CreateTimeCapsule(context.Background(), []byte("x"), uint64(env.now.Add(time.Hour).UnixMilli()))
	if err != nil {
		t.Fatalf("CreateTimeCapsule() error = %v", err)
	}

	err = env.client.WaitForUnlockable(context.Background(), created.CapsuleID,
		WithPollInterval(time.Millisecond),
		WithWaitTimeout(30*time.Millisecond))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForUnlockable() error = %v, want DeadlineExceeded", err)
	}
}

func TestWaitForUnlockable_NotFound(t *testing.T) {
	env := newTestEnv(t)

	err := env.client.WaitForUnlockable(context.Background(), "capsule-missing")
	if !errors.Is(err, ErrCapsuleNotFound) {
		t.Errorf("WaitForUnlockable() error = %v, want ErrCapsuleNotFound", err)
	}
}

func TestUnlockWhenReady(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.client.CreateMultisigCapsule(context.Background(), []byte("ready"), 1, []string{testWallet})
	if err != nil {
		t.Fatalf("CreateMultisigCapsule() error = %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		env.client.ApproveCapsule(context.Background(), created.CapsuleID)
	}()

	result, err := env.client.UnlockWhenReady(context.Background(), created.CapsuleID,
		[]WaitOption{WithPollInterval(5 * time.Millisecond), WithWaitTimeout(5 * time.Second)},
		WithKey(created.EncryptionKey))
	if err != nil {
		t.Fatalf("UnlockWhenReady() error = %v", err)
	}
	if string(result.Content) != "ready" {
		t.Errorf("Content = %q, want %q", result.Content, "ready")
	}
}
