package memo

import (
	"fmt"
	"testing"
)

func TestCacheEvictsOldestWhenFull(t *testing.T) {
	c := New[int, string](3)
	for i := 1; i <= 3; i++ {
		c.Put(i, fmt.Sprintf("v%d", i))
	}
	c.Put(4, "v4")

	if _, ok := c.Get(1); ok {
		t.Fatalf("oldest entry should have been evicted")
	}
	for i := 2; i <= 4; i++ {
		if v, ok := c.Get(i); !ok || v != fmt.Sprintf("v%d", i) {
			t.Fatalf("entry %d missing after eviction", i)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
}

func TestCacheReplaceKeepsAge(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10) // replace, "a" stays oldest
	c.Put("c", 3)  // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Fatalf("replaced entry should keep its age and be evicted first")
	}
	if v, _ := c.Get("b"); v != 2 {
		t.Fatalf("b lost")
	}
}

func TestGetOrComputeOnlyComputesOnMiss(t *testing.T) {
	c := New[string, int](8)
	calls := 0
	f := func() int { calls++; return 42 }

	if v := c.GetOrCompute("k", f); v != 42 {
		t.Fatalf("computed value wrong: %d", v)
	}
	if v := c.GetOrCompute("k", f); v != 42 {
		t.Fatalf("cached value wrong: %d", v)
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
}

func TestClear(t *testing.T) {
	c := New[int, int](4)
	c.Put(1, 1)
	c.Put(2, 2)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("len after clear = %d", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Fatalf("entry survived clear")
	}
}
