package health_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/laurensbos/webstability-backend/internal/platform/health"
)

// fakeChecker is a configurable health checker for registry tests.
type fakeChecker struct {
	name  string
	err   error
	onRun func()
}

func (f *fakeChecker) Name() string { return f.name }

func (f *fakeChecker) HealthCheck(_ context.Context) error {
	if f.onRun != nil {
		f.onRun()
	}
	return f.err
}

func TestRegistry_CheckAll_Empty(t *testing.T) {
	t.Parallel()

	r := health.New()

	results := r.CheckAll(context.Background())
	if results == nil {
		t.Fatal("CheckAll returned nil map, want empty map")
	}
	if len(results) != 0 {
		t.Errorf("CheckAll returned %d results, want 0", len(results))
	}
}

func TestRegistry_CheckAll_ReportsPerChecker(t *testing.T) {
	t.Parallel()

	r := health.New()
	storeErr := errors.New("redis: connection refused")
	r.Register(&fakeChecker{name: "redis-store", err: storeErr})
	r.Register(&fakeChecker{name: "payment-provider"})

	results := r.CheckAll(context.Background())

	if len(results) != 2 {
		t.Fatalf("CheckAll returned %d results, want 2", len(results))
	}
	if !errors.Is(results["redis-store"], storeErr) {
		t.Errorf("results[redis-store] = %v, want %v", results["redis-store"], storeErr)
	}
	if results["payment-provider"] != nil {
		t.Errorf("results[payment-provider] = %v, want nil", results["payment-provider"])
	}
}

func TestRegistry_CheckAll_RunsChecksConcurrently(t *testing.T) {
	t.Parallel()

	const n = 3

	r := health.New()

	// Each check blocks until all n have started. If checks ran
	// sequentially, the first one would block forever.
	var started sync.WaitGroup
	started.Add(n)
	for i := 0; i < n; i++ {
		name := string(rune('a' + i))
		r.Register(&fakeChecker{name: name, onRun: func() {
			started.Done()
			started.Wait()
		}})
	}

	done := make(chan map[string]error, 1)
	go func() { done <- r.CheckAll(context.Background()) }()

	select {
	case results := <-done:
		if len(results) != n {
			t.Errorf("CheckAll returned %d results, want %d", len(results), n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("CheckAll did not complete, checks appear to run sequentially")
	}
}

func TestRegistry_Register_ConcurrentUse(t *testing.T) {
	t.Parallel()

	r := health.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Register(&fakeChecker{name: string(rune('a' + i))})
		}(i)
	}
	wg.Wait()

	if got := len(r.CheckAll(context.Background())); got != 8 {
		t.Errorf("CheckAll returned %d results, want 8", got)
	}
}
