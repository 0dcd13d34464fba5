// ABOUTME: Tests for the typed event bus
// ABOUTME: Covers ordering, filtering, unsubscribe, re-entrancy, and concurrent access

package eventbus

import (
	"slices"
	"sync"
	"testing"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	bus := New[string]()
	var got []string

	for _, tag := range []string{"a", "b", "c"} {
		tag := tag
		bus.Subscribe(func(s string) {
			got = append(got, tag+s)
		})
	}

	bus.Publish("1")

	want := []string{"a1", "b1", "c1"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v; want %v", got, want)
	}
}

func TestBus_SubscribeWhere(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	var evens []int
	bus.SubscribeWhere(func(n int) bool { return n%2 == 0 }, func(n int) {
		evens = append(evens, n)
	})

	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}

	if !slices.Equal(evens, []int{0, 2, 4}) {
		t.Errorf("evens = %v; want [0 2 4]", evens)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	bus := New[string]()
	called := false

	unsub := bus.Subscribe(func(_ string) {
		called = true
	})

	unsub()
	unsub()
	bus.Publish("test")

	if called {
		t.Error("handler should not be called after unsubscribe")
	}
	if bus.Count() != 0 {
		t.Errorf("Count() = %d; want 0", bus.Count())
	}
}

func TestBus_UnsubscribeFromHandler(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	calls := 0
	var unsub func()
	unsub = bus.Subscribe(func(_ int) {
		calls++
		unsub()
	})

	bus.Publish(1)
	bus.Publish(2)

	if calls != 1 {
		t.Errorf("calls = %d; want 1", calls)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	var mu sync.Mutex
	sum := 0
	bus.Subscribe(func(n int) {
		mu.Lock()
		sum += n
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(2)
		}()
	}
	wg.Wait()

	if sum != 100 {
		t.Errorf("sum = %d; want 100", sum)
	}
}
