// Package agent defines the invocation port for simulated experts: an
// abstract capability that turns a prompt plus history into text and usage.
// The live model adapter lives behind this interface; tests and demos use
// the deterministic stub.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/internal/panel"
)

// Reply is one completed expert turn.
type Reply struct {
	Text       string
	TokensUsed int
	CostUSD    float64
}

// ErrTransient marks retryable network-kind failures.
var ErrTransient = errors.New("transient agent failure")

// ErrContentRejected marks content-policy rejections. Never retried; the
// turn is recorded as skipped.
var ErrContentRejected = errors.New("agent rejected content")

// Invoker is the agent invocation port.
type Invoker interface {
	Invoke(ctx context.Context, expert panel.Expert, prompt string, history []string) (Reply, error)
}

// RetryConfig bounds transient-failure retries within a single turn.
type RetryConfig struct {
	MaxAttempts int           // total attempts including the first
	Backoff     time.Duration // base delay; grows linearly per attempt
}

// DefaultRetryConfig returns the standard per-turn retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, Backoff: 500 * time.Millisecond}
}

// InvokeWithRetry calls the invoker, retrying transient failures up to the
// configured attempt count with linear backoff. Content rejections and
// context cancellation are returned immediately.
func InvokeWithRetry(ctx context.Context, inv Invoker, cfg RetryConfig, expert panel.Expert, prompt string, history []string) (Reply, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		reply, err := inv.Invoke(ctx, expert, prompt, history)
		if err == nil {
			return reply, nil
		}
		if errors.Is(err, ErrContentRejected) || ctx.Err() != nil {
			return Reply{}, err
		}
		if !errors.Is(err, ErrTransient) {
			return Reply{}, err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		case <-time.After(cfg.Backoff * time.Duration(attempt)):
		}
	}
	return Reply{}, fmt.Errorf("retries exhausted after %d attempts: %w", attempts, lastErr)
}
