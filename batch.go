package capsulevault

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// BatchConfig controls concurrency, pacing, and failure handling for batch
// operations.
type BatchConfig struct {
	// MaxConcurrent bounds the number of files processed in parallel.
	MaxConcurrent int
	// RetryAttempts is the number of additional tries per file.
	RetryAttempts int
	// RetryDelay is the pause between per-file retries.
	RetryDelay time.Duration
	// RatePerSecond paces capsule operations across all workers.
	// Zero means unpaced.
	RatePerSecond float64
	// ContinueOnError keeps the batch running past individual failures;
	// otherwise the first failure cancels the remaining work.
	ContinueOnError bool
}

// DefaultBatchConfig returns the defaults used by capsulectl.
func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{
		MaxConcurrent:   4,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		ContinueOnError: true,
	}
}

// BatchItem records one successful batch operation.
type BatchItem struct {
	Path          string
	CapsuleID     string
	TransactionID string
	EncryptionKey string
}

// BatchFailure records one failed batch operation.
type BatchFailure struct {
	Path string
	Err  error
}

// BatchResult summarizes a batch operation.
type BatchResult struct {
	Successful []BatchItem
	Failed     []BatchFailure
	TotalSize  int64
}

// BatchCreate encrypts each file and registers a capsule with the given
// unlock condition. Workers run concurrently up to MaxConcurrent, paced by
// RatePerSecond; each file gets RetryAttempts extra tries. With
// ContinueOnError the returned BatchResult collects every failure, and the
// error is nil unless the context was cancelled.
func (c *Client) BatchCreate(ctx context.Context, files []FileInfo, condition UnlockCondition, cfg *BatchConfig, opts ...CreateOption) (*BatchResult, error) {
	if cfg == nil {
		cfg = DefaultBatchConfig()
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)

	limiter := newLimiter(cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.MaxConcurrent, 1))

	for _, file := range files {
		file := file
		g.Go(func() error {
			created, err := c.batchCreateOne(gctx, file, condition, cfg, limiter, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, BatchFailure{Path: file.Path, Err: err})
				if !cfg.ContinueOnError {
					return err
				}
				return nil
			}
			result.Successful = append(result.Successful, BatchItem{
				Path:          file.Path,
				CapsuleID:     created.CapsuleID,
				TransactionID: created.TransactionID,
				EncryptionKey: created.EncryptionKey,
			})
			result.TotalSize += file.Size
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &result, err
	}
	if err := ctx.Err(); err != nil {
		return &result, err
	}
	return &result, nil
}

func (c *Client) batchCreateOne(ctx context.Context, file FileInfo, condition UnlockCondition, cfg *BatchConfig, limiter *rate.Limiter, opts []CreateOption) (*CreateCapsuleResult, error) {
	content, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryDelay):
			}
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		created, err := c.createCapsule(ctx, content, condition, opts)
		if err == nil {
			return created, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// BatchUnlockItem names one capsule to unlock, with its key when the
// capsule is randomly keyed.
type BatchUnlockItem struct {
	CapsuleID string
	Key       string
}

// BatchUnlock unlocks multiple capsules with the same concurrency, pacing,
// and retry behavior as BatchCreate. Successful items carry the capsule id
// in place of a file path; unlocked content is written to the Content map
// keyed by capsule id.
func (c *Client) BatchUnlock(ctx context.Context, items []BatchUnlockItem, cfg *BatchConfig) (*BatchResult, map[string][]byte, error) {
	if cfg == nil {
		cfg = DefaultBatchConfig()
	}

	var (
		mu      sync.Mutex
		result  BatchResult
		content = make(map[string][]byte, len(items))
	)

	limiter := newLimiter(cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.MaxConcurrent, 1))

	for _, item := range items {
		item := item
		g.Go(func() error {
			unlocked, err := c.batchUnlockOne(gctx, item, cfg, limiter)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, BatchFailure{Path: item.CapsuleID, Err: err})
				if !cfg.ContinueOnError {
					return err
				}
				return nil
			}
			result.Successful = append(result.Successful, BatchItem{
				Path:          item.CapsuleID,
				CapsuleID:     item.CapsuleID,
				TransactionID: unlocked.TransactionID,
			})
			result.TotalSize += int64(len(unlocked.Content))
			content[item.CapsuleID] = unlocked.Content
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &result, content, err
	}
	if err := ctx.Err(); err != nil {
		return &result, content, err
	}
	return &result, content, nil
}

func (c *Client) batchUnlockOne(ctx context.Context, item BatchUnlockItem, cfg *BatchConfig, limiter *rate.Limiter) (*UnlockResult, error) {
	var opts []UnlockOption
	if item.Key != "" {
		opts = append(opts, WithKey(item.Key))
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryDelay):
			}
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		unlocked, err := c.UnlockCapsule(ctx, item.CapsuleID, opts...)
		if err == nil {
			return unlocked, nil
		}
		lastErr = err

		// Retrying cannot help a capsule that is locked or has the wrong
		// key; only transient transport failures are worth another try.
		if isTerminal(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func isTerminal(err error) bool {
	var (
		locked    *LockedError
		decrypt   *DecryptionError
		integrity *IntegrityError
	)
	return errors.As(err, &locked) || errors.As(err, &decrypt) || errors.As(err, &integrity)
}

func newLimiter(cfg *BatchConfig) *rate.Limiter {
	if cfg.RatePerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
}
