package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](0)
	if _, ok := c.Get("a"); ok {
		t.Fatal("Get() on empty cache = true")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if !c.Delete("a") || c.Delete("a") {
		t.Error("Delete() did not report presence correctly")
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Len != 0 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](4)
	for i := range 4 {
		c.Set(i, i)
	}
	// Touch 0 so 1 becomes the oldest.
	c.Get(0)
	c.Set(4, 4)

	// 5 entries over a limit of 4: evict down to 3.
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	for _, k := range []int{1, 2} {
		if _, ok := c.Get(k); ok {
			t.Errorf("key %d survived eviction", k)
		}
	}
	for _, k := range []int{0, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d was evicted", k)
		}
	}
	if got := c.Stats().Evictions; got != 2 {
		t.Errorf("Evictions = %d, want 2", got)
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, []uint32](8)
	var calls atomic.Int32
	create := func() ([]uint32, error) {
		calls.Add(1)
		return []uint32{0x07230203}, nil
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.GetOrCreate("shader", create); err != nil || v[0] != 0x07230203 {
				t.Errorf("GetOrCreate() = %v, %v", v, err)
			}
		}()
	}
	wg.Wait()
	if calls.Load() != 1 {
		t.Errorf("create ran %d times, want 1", calls.Load())
	}
}

func TestCacheGetOrCreateError(t *testing.T) {
	c := New[string, int](0)
	boom := errors.New("boom")
	if _, err := c.GetOrCreate("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("GetOrCreate() error = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Error("failed create was cached")
	}
	v, err := c.GetOrCreate("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("GetOrCreate() = %d, %v, want 7", v, err)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}
