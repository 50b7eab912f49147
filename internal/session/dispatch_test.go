package session

import (
	"sync"
	"testing"
)

func TestQueueDrainsInOrder(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := 0; i < 3; i++ {
		i := i
		q.Dispatch(func() { got = append(got, i) })
	}
	if q.Len() != 3 {
		t.Fatalf("len = %d", q.Len())
	}
	if n := q.Drain(); n != 3 {
		t.Fatalf("drained %d", n)
	}
	if len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Fatalf("order = %v", got)
	}
	if q.Drain() != 0 {
		t.Fatal("second drain ran something")
	}
}

func TestQueueConcurrentDispatch(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	count := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Dispatch(func() { count++ })
		}()
	}
	wg.Wait()

	q.Drain()
	if count != 50 {
		t.Fatalf("ran %d mutations, want 50", count)
	}
}
