// Package orchestrator implements the remote-workflow orchestration pipeline:
// dispatch a workflow, locate the run it produced, poll it to completion, and
// resolve its artifacts.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/template-doctor/template-doctor/internal/core"
)

// RetryConfig controls the shared retry policy for outbound GitHub calls.
// The delay is fixed, not exponential: dispatch and listing calls either
// recover within a couple of short retries or not at all.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	// ShouldRetry decides whether an error is worth another attempt.
	// Nil retries everything.
	ShouldRetry func(error) bool
}

// DefaultRetryConfig mirrors the production policy: three attempts, five
// seconds apart.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, Delay: 5 * time.Second}
}

// WithRetry executes op under cfg. Transient failures are logged per attempt
// and never surfaced to the caller if any attempt within the budget succeeds;
// once the budget is exhausted the last error is returned unchanged so the
// root cause is preserved.
func WithRetry(ctx context.Context, logger *slog.Logger, name string, cfg RetryConfig, op func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.Delay), uint64(cfg.MaxAttempts-1)),
		ctx,
	)

	notify := func(err error, next time.Duration) {
		logger.Warn("operation failed, retrying",
			"op", name, "attempt", attempt, "max_attempts", cfg.MaxAttempts,
			"retry_in", next, "error", err)
	}

	return backoff.RetryNotify(wrapped, policy, notify)
}

// sleepCtx waits for d, honoring cancellation between every waiting period of
// the pipeline. This is what lets a request deadline actually stop in-flight
// polling instead of abandoning it.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deadlineError classifies a context error: an exceeded deadline becomes a
// timeout-kind error; plain cancellation is passed through.
func deadlineError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.WrapError(core.KindTimeout, "deadline exceeded", err)
	}
	return err
}
