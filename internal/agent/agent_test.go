package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agora/internal/panel"
)

type countingInvoker struct {
	mu    sync.Mutex
	calls int
	errs  []error // error per call; nil means success
}

func (c *countingInvoker) Invoke(_ context.Context, _ panel.Expert, _ string, _ []string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls <= len(c.errs) && c.errs[c.calls-1] != nil {
		return Reply{}, c.errs[c.calls-1]
	}
	return Reply{Text: "ok", TokensUsed: 1, CostUSD: 0.001}, nil
}

func retryCfg() RetryConfig { return RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond} }

func TestInvokeWithRetry_TransientThenSuccess(t *testing.T) {
	inv := &countingInvoker{errs: []error{ErrTransient, ErrTransient, nil}}
	reply, err := InvokeWithRetry(context.Background(), inv, retryCfg(), panel.Expert{ID: "a"}, "p", nil)
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if reply.Text != "ok" || inv.calls != 3 {
		t.Errorf("reply=%+v calls=%d", reply, inv.calls)
	}
}

func TestInvokeWithRetry_Exhaustion(t *testing.T) {
	inv := &countingInvoker{errs: []error{ErrTransient, ErrTransient, ErrTransient}}
	_, err := InvokeWithRetry(context.Background(), inv, retryCfg(), panel.Expert{ID: "a"}, "p", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("want wrapped ErrTransient, got %v", err)
	}
	if inv.calls != 3 {
		t.Errorf("calls = %d, want 3", inv.calls)
	}
}

func TestInvokeWithRetry_ContentRejectedNotRetried(t *testing.T) {
	inv := &countingInvoker{errs: []error{ErrContentRejected}}
	_, err := InvokeWithRetry(context.Background(), inv, retryCfg(), panel.Expert{ID: "a"}, "p", nil)
	if !errors.Is(err, ErrContentRejected) {
		t.Fatalf("want ErrContentRejected, got %v", err)
	}
	if inv.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", inv.calls)
	}
}

func TestInvokeWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inv := &countingInvoker{errs: []error{ErrTransient}}
	_, err := InvokeWithRetry(ctx, inv, retryCfg(), panel.Expert{ID: "a"}, "p", nil)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestStub_Deterministic(t *testing.T) {
	expert := panel.Expert{ID: "analyst"}
	a := NewStub(nil)
	b := NewStub(nil)
	for i := 0; i < 3; i++ {
		ra, err := a.Invoke(context.Background(), expert, "p", nil)
		if err != nil {
			t.Fatal(err)
		}
		rb, _ := b.Invoke(context.Background(), expert, "p", nil)
		if ra != rb {
			t.Errorf("call %d: stubs diverge: %+v vs %+v", i+1, ra, rb)
		}
	}
}

func TestConvergingScript_Converges(t *testing.T) {
	script := ConvergingScript([]string{"Option A", "Option B"}, 2)
	first, _ := script("skeptic", 1)
	second, _ := script("skeptic", 2)
	if first.Text == second.Text {
		t.Error("rounds before and after convergence should differ")
	}
	if second.CostUSD <= 0 || second.TokensUsed <= 0 {
		t.Errorf("usage not populated: %+v", second)
	}
}

func TestFailingScript(t *testing.T) {
	script := FailingScript(ConvergingScript(nil, 2), "skeptic", ErrTransient)
	if _, err := script("skeptic", 1); !errors.Is(err, ErrTransient) {
		t.Errorf("want ErrTransient for failing expert, got %v", err)
	}
	if _, err := script("analyst", 1); err != nil {
		t.Errorf("other experts should succeed, got %v", err)
	}
}
