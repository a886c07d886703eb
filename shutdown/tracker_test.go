package shutdown

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestOperationTracker_Lifecycle(t *testing.T) {
	tr := NewOperationTracker()

	if !tr.Start() || !tr.Start() {
		t.Fatal("Start() on open tracker = false")
	}
	if tr.ActiveCount() != 2 {
		t.Errorf("ActiveCount() = %d, want 2", tr.ActiveCount())
	}

	tr.Close()
	if tr.Start() {
		t.Error("Start() after Close = true")
	}
	if !tr.IsClosed() {
		t.Error("IsClosed() = false")
	}

	if err := tr.Wait(10 * time.Millisecond); !errors.Is(err, ErrWaitTimeout) {
		t.Errorf("Wait() with running ops = %v, want ErrWaitTimeout", err)
	}

	tr.Done()
	tr.Done()
	if err := tr.Wait(time.Second); err != nil {
		t.Errorf("Wait() = %v", err)
	}
	if tr.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d, want 0", tr.ActiveCount())
	}
}

func TestOperationTracker_ConcurrentStartWithClose(t *testing.T) {
	tr := NewOperationTracker()
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i == 50 {
				tr.Close()
			}
			if tr.Start() {
				time.Sleep(time.Millisecond)
				tr.Done()
			}
		}()
	}
	wg.Wait()

	if err := tr.Wait(time.Second); err != nil {
		t.Fatal(err)
	}
	if tr.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d, want 0", tr.ActiveCount())
	}
}
