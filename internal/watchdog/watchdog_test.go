package watchdog

import (
	"sync"
	"testing"
)

func TestWakeTakeIfSet(t *testing.T) {
	var w Wake
	if w.TakeIfSet() {
		t.Error("fresh flag should not be set")
	}
	w.Set()
	if !w.Pending() {
		t.Error("Pending should see the set flag")
	}
	if !w.TakeIfSet() {
		t.Error("TakeIfSet should consume the set flag")
	}
	if w.TakeIfSet() {
		t.Error("flag should be consumed exactly once")
	}
}

func TestWakeConcurrentSetters(t *testing.T) {
	// Many interrupts between two consumptions collapse into one pet.
	var w Wake
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Set()
		}()
	}
	wg.Wait()
	if !w.TakeIfSet() {
		t.Error("flag should be set after concurrent Sets")
	}
	if w.TakeIfSet() {
		t.Error("flag should be consumed after one take")
	}
}
