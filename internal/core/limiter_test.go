package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLimiter_AcquireRelease(t *testing.T) {
	limiter := NewLimiter(2, time.Second)

	if got := limiter.Active(); got != 0 {
		t.Errorf("initial Active = %d, want 0", got)
	}

	ctx := context.Background()
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	status := limiter.Status()
	if status.Active != 2 || status.Available != 0 || status.MaxConcurrent != 2 {
		t.Errorf("Status = %+v, want active 2, available 0, max 2", status)
	}

	limiter.Release()
	if got := limiter.Status().Available; got != 1 {
		t.Errorf("after Release, Available = %d, want 1", got)
	}

	limiter.Release()
	if got := limiter.Active(); got != 0 {
		t.Errorf("after second Release, Active = %d, want 0", got)
	}
}

func TestLimiter_Timeout(t *testing.T) {
	limiter := NewLimiter(1, 30*time.Millisecond)

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(context.Background())
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Acquire on full limiter = %v, want ErrBusy", err)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("Acquire returned after %v, expected to wait for maxWait", elapsed)
	}
}

func TestLimiter_ContextCancel(t *testing.T) {
	limiter := NewLimiter(1, time.Minute)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire with canceled ctx = %v, want context.Canceled", err)
	}
}

func TestLimiter_AcquireFreeSlotIgnoresWait(t *testing.T) {
	limiter := NewLimiter(1, time.Nanosecond)

	for i := 0; i < 100; i++ {
		if err := limiter.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire #%d on free limiter: %v", i, err)
		}
		limiter.Release()
	}
}

func TestLimiter_TryAcquire(t *testing.T) {
	limiter := NewLimiter(1, time.Second)

	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire on empty limiter = false")
	}
	if limiter.TryAcquire() {
		t.Fatal("TryAcquire on full limiter = true")
	}
	limiter.Release()
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire after Release = false")
	}
	limiter.Release()
}

func TestLimiter_Defaults(t *testing.T) {
	limiter := NewLimiter(0, 0)
	if got := limiter.Status().MaxConcurrent; got != DefaultMaxConcurrent {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrent)
	}
	if limiter.maxWait != DefaultMaxWait {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultMaxWait)
	}
}

func TestLimiter_ConcurrentNeverExceedsMax(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewLimiter(maxConcurrent, 5*time.Second)

	var (
		mu      sync.Mutex
		current int
		peak    int
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			limiter.Release()
		}()
	}
	wg.Wait()

	if peak > maxConcurrent {
		t.Errorf("peak concurrency = %d, want <= %d", peak, maxConcurrent)
	}
}

func TestLimiter_WaitForDrain(t *testing.T) {
	limiter := NewLimiter(1, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain with held slot = %v, want DeadlineExceeded", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		limiter.Release()
	}()

	ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	if err := limiter.WaitForDrain(ctx2); err != nil {
		t.Errorf("WaitForDrain after release = %v, want nil", err)
	}
}
