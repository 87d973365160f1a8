package tutor

import (
	"errors"
	"sync"
	"testing"

	"mentora/internal/domain"
)

func TestInflightGuardRejectsConcurrent(t *testing.T) {
	guard := NewInflightGuard()

	if err := guard.Acquire("conv-1"); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	if err := guard.Acquire("conv-1"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second Acquire() = %v, want conflict", err)
	}
	// A different conversation is unaffected.
	if err := guard.Acquire("conv-2"); err != nil {
		t.Errorf("Acquire on different conversation = %v", err)
	}

	guard.Release("conv-1")
	if err := guard.Acquire("conv-1"); err != nil {
		t.Errorf("Acquire after Release = %v", err)
	}
}

func TestInflightGuardReleaseUnknown(t *testing.T) {
	guard := NewInflightGuard()
	guard.Release("never-acquired") // must not panic
}

func TestInflightGuardConcurrentAccess(t *testing.T) {
	guard := NewInflightGuard()

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.Acquire("same") == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 1 {
		t.Errorf("granted = %d, want exactly 1", granted)
	}
}
