package httpapi

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

// chanContext is a base context the runtime cannot see through, so every
// join has to watch it from its own goroutine.
type chanContext struct {
	context.Context
	done chan struct{}
}

func (c chanContext) Done() <-chan struct{} { return c.done }

func (c chanContext) Err() error {
	select {
	case <-c.done:
		return context.Canceled
	default:
		return nil
	}
}

func waitDone(t *testing.T, ctx context.Context, what string) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("joined context not canceled after %s", what)
	}
}

func TestJoinContexts_BaseCancelCarriesCause(t *testing.T) {
	shutdown := errors.New("shutdown")
	base, cancelBase := context.WithCancelCause(context.Background())
	j, cancelJ := joinContexts(base, context.Background())
	defer cancelJ()

	cancelBase(shutdown)
	waitDone(t, j, "base cancel")
	if got := context.Cause(j); !errors.Is(got, shutdown) {
		t.Fatalf("cause=%v", got)
	}
}

func TestJoinContexts_RequestCancel(t *testing.T) {
	req, cancelReq := context.WithCancel(context.Background())
	j, cancelJ := joinContexts(context.Background(), req)
	defer cancelJ()

	cancelReq()
	waitDone(t, j, "request cancel")
}

func TestJoinContexts_KeepsRequestValues(t *testing.T) {
	type key struct{}
	req := context.WithValue(context.Background(), key{}, "req-1")
	j, cancelJ := joinContexts(context.Background(), req)
	defer cancelJ()
	if j.Value(key{}) != "req-1" {
		t.Fatalf("request value lost")
	}
}

func TestJoinContexts_CancelReleasesWatcher(t *testing.T) {
	base := chanContext{Context: context.Background(), done: make(chan struct{})}
	defer close(base.done)

	before := runtime.NumGoroutine()
	const n = 50
	cancels := make([]context.CancelFunc, 0, n)
	for i := 0; i < n; i++ {
		_, cancel := joinContexts(base, context.Background())
		cancels = append(cancels, cancel)
	}
	if got := runtime.NumGoroutine(); got < before+n {
		t.Fatalf("expected %d watchers, goroutines %d -> %d", n, before, got)
	}
	for _, cancel := range cancels {
		cancel()
	}

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before+n/2 {
		if time.Now().After(deadline) {
			t.Fatalf("watchers still running: goroutines %d, started with %d", runtime.NumGoroutine(), before)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSetBaseContext_NilRestoresBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	SetBaseContext(ctx)
	SetBaseContext(nil) //nolint:staticcheck // nil restores the default
	if serverBaseCtx.Err() != nil {
		t.Fatalf("base context should be Background, err=%v", serverBaseCtx.Err())
	}
}
