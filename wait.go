package capsulevault

import (
	"context"
	"time"
)

const (
	defaultWaitTimeout  = 5 * time.Minute
	defaultPollInterval = 5 * time.Second
)

// waitConfig holds configuration for unlock waiting.
type waitConfig struct {
	timeout      time.Duration
	pollInterval time.Duration
}

// WaitOption configures WaitForUnlockable and UnlockWhenReady.
type WaitOption func(*waitConfig)

// WithWaitTimeout bounds how long to wait. Default: 5 minutes.
func WithWaitTimeout(timeout time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.timeout = timeout
	}
}

// WithPollInterval sets how often the ledger is queried. Default: 5 seconds.
func WithPollInterval(interval time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.pollInterval = interval
	}
}

// WaitForUnlockable polls the ledger until the capsule's unlock condition
// is satisfied. It returns nil as soon as the capsule is unlockable, and
// ctx.Err() if the context or the wait timeout expires first.
//
// Example:
//
//	ctx := context.Background()
//	if err := client.WaitForUnlockable(ctx, id, capsulevault.WithWaitTimeout(time.Hour)); err != nil {
//	    return err
//	}
//	result, err := client.UnlockCapsule(ctx, id, capsulevault.WithKey(key))
func (c *Client) WaitForUnlockable(ctx context.Context, capsuleID string, opts ...WaitOption) error {
	cfg := &waitConfig{
		timeout:      defaultWaitTimeout,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	// Check once before sleeping; the capsule may already be open.
	unlockable, _, err := c.ledger.QueryUnlockStatus(ctx, capsuleID)
	if err != nil {
		return err
	}
	if unlockable {
		return nil
	}

	ticker := time.NewTicker(cfg.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			unlockable, _, err := c.ledger.QueryUnlockStatus(ctx, capsuleID)
			if err != nil {
				return err
			}
			if unlockable {
				return nil
			}
		}
	}
}

// UnlockWhenReady waits for the capsule to become unlockable, then unlocks
// it. Unlock options and wait options are passed separately.
func (c *Client) UnlockWhenReady(ctx context.Context, capsuleID string, waitOpts []WaitOption, unlockOpts ...UnlockOption) (*UnlockResult, error) {
	if err := c.WaitForUnlockable(ctx, capsuleID, waitOpts...); err != nil {
		return nil, err
	}
	return c.UnlockCapsule(ctx, capsuleID, unlockOpts...)
}
