package status

import (
	"sync"
	"testing"
)

// TestMetricMapCachesPointer verifies repeated Get returns the same pointer
func TestMetricMapCachesPointer(t *testing.T) {
	r := NewRegistry()
	a := r.Ints.Get(KeyTicks)
	b := r.Ints.Get(KeyTicks)
	if a != b {
		t.Fatal("Get returned different pointers for the same key")
	}
	a.Add(3)
	if b.Load() != 3 {
		t.Errorf("value = %d, want 3", b.Load())
	}
	if !r.Ints.Has(KeyTicks) || r.Ints.Has("missing") {
		t.Error("Has reported wrong membership")
	}
}

// TestAtomicFloatConcurrentAdd verifies CAS accumulation under contention
func TestAtomicFloatConcurrentAdd(t *testing.T) {
	var f AtomicFloat
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				f.Add(0.5)
			}
		}()
	}
	wg.Wait()
	if f.Get() != 4000 {
		t.Errorf("Get() = %v, want 4000", f.Get())
	}
}

// TestLinesSorted verifies formatted output is grouped and sorted
func TestLinesSorted(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get("b.int").Store(2)
	r.Ints.Get("a.int").Store(1)
	r.Floats.Get(KeyRate).Set(1.5)
	r.Bools.Get(KeySchedulerLive).Store(true)
	r.Strings.Get(KeyBackend).Store("sqlite")

	lines := r.Lines()
	want := []Line{
		{KeySchedulerLive, "true"},
		{"a.int", "1"},
		{"b.int", "2"},
		{KeyRate, "1.5"},
		{KeyBackend, "sqlite"},
	}
	if len(lines) != len(want) {
		t.Fatalf("Lines() = %v", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %v, want %v", i, lines[i], want[i])
		}
	}
	if keys := r.Ints.Keys(); len(keys) != 2 || keys[0] != "a.int" {
		t.Errorf("Keys() = %v", keys)
	}
}
