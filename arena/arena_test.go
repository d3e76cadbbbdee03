package arena

import "testing"

func TestFetchNeverReturnsZero(t *testing.T) {
	a := New[int](4)
	id, slot := a.Fetch()
	if id == 0 {
		t.Fatal("Fetch returned id 0, reserved for none")
	}
	*slot = 42
	if *a.Get(id) != 42 {
		t.Fatalf("Get(%d) = %d, want 42", id, *a.Get(id))
	}
}

func TestReleaseThenFetchRecycles(t *testing.T) {
	a := New[int](1)
	id1, _ := a.Fetch()
	a.Release(id1)
	id2, slot := a.Fetch()
	if id1 != id2 {
		t.Fatalf("expected recycled id %d, got %d", id1, id2)
	}
	if *slot != 0 {
		t.Fatalf("recycled slot not zeroed, got %d", *slot)
	}
}

func TestGetOutOfRangeIsNil(t *testing.T) {
	a := New[int](1)
	if a.Get(0) != nil {
		t.Fatal("Get(0) should be nil, id 0 is reserved")
	}
	if a.Get(999) != nil {
		t.Fatal("Get of an id never issued should be nil")
	}
}

func TestGrowthPreservesExistingSlots(t *testing.T) {
	a := New[int](1)
	ids := make([]uint32, 0, 10)
	for i := 0; i < 10; i++ {
		id, slot := a.Fetch()
		*slot = i
		ids = append(ids, id)
	}
	for i, id := range ids {
		if *a.Get(id) != i {
			t.Fatalf("Get(%d) = %d, want %d after growth", id, *a.Get(id), i)
		}
	}
}

func TestLenTracksIssuedNotFreed(t *testing.T) {
	a := New[int](4)
	id1, _ := a.Fetch()
	a.Fetch()
	a.Release(id1)
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
}
