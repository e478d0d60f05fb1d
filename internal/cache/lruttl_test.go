package cache

import (
	"testing"
	"time"
)

func TestLRUTTL_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](2, time.Minute)
	c.Put(1, 1)
	c.Put(2, 2)
	c.Put(3, 3)

	if _, ok := c.Get(1); ok {
		t.Fatal("expected key 1 to be evicted")
	}
	if v, ok := c.Get(2); !ok || v != 2 {
		t.Fatalf("expected key 2 present with value 2, got %v %v", v, ok)
	}
	if v, ok := c.Get(3); !ok || v != 3 {
		t.Fatalf("expected key 3 present with value 3, got %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUTTL_GetPromotesToMostRecentlyUsed(t *testing.T) {
	c := New[int, int](2, time.Minute)
	c.Put(1, 1)
	c.Put(2, 2)

	c.Get(1) // promote 1

	c.Put(3, 3) // should evict 2, not 1

	if _, ok := c.Get(2); ok {
		t.Fatal("expected key 2 to be evicted after 1 was promoted")
	}
	if _, ok := c.Get(1); !ok {
		t.Fatal("expected key 1 to survive eviction")
	}
}

func TestLRUTTL_ExpiresByAge(t *testing.T) {
	fakeNow := time.Now()
	c := New[string, int](4, time.Second)
	c.now = func() time.Time { return fakeNow }

	c.Put("clock", 1)
	if v, ok := c.Get("clock"); !ok || v != 1 {
		t.Fatalf("expected fresh entry, got %v %v", v, ok)
	}

	fakeNow = fakeNow.Add(2 * time.Second)
	if _, ok := c.Get("clock"); ok {
		t.Fatal("expected entry to have expired")
	}
}

func TestLRUTTL_Sweep(t *testing.T) {
	fakeNow := time.Now()
	c := New[string, int](4, time.Second)
	c.now = func() time.Time { return fakeNow }

	c.Put("a", 1)
	c.Put("b", 2)

	fakeNow = fakeNow.Add(2 * time.Second)
	c.Sweep()

	if c.Size() != 0 {
		t.Fatalf("expected all entries swept, got size %d", c.Size())
	}
}

func TestLRUTTL_PutNoopAtZeroCapacity(t *testing.T) {
	c := New[string, int](0, time.Minute)
	c.Put("a", 1)
	if c.Size() != 0 {
		t.Fatalf("expected zero-capacity cache to reject puts, got size %d", c.Size())
	}
}

func TestLRUTTL_DeleteAndClear(t *testing.T) {
	c := New[int, int](4, time.Minute)
	c.Put(1, 1)
	c.Put(2, 2)

	c.Delete(1)
	if _, ok := c.Get(1); ok {
		t.Fatal("expected key 1 to be deleted")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("expected empty cache after Clear, got size %d", c.Size())
	}
}
