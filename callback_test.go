package ditto

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSubscribe_NotifiedOnPut(t *testing.T) {
	store := mustOpen(t)

	var keys []string
	id, err := store.Subscribe(ChangeHandlerFunc(func(key string) {
		keys = append(keys, key)
	}))
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if id != 1 {
		t.Errorf("Subscribe() id = %v, want 1", id)
	}

	if err := store.Put("x", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// fan-out is synchronous: the notification arrived before Put returned
	if len(keys) != 1 || keys[0] != "x" {
		t.Errorf("handler keys = %v, want [x]", keys)
	}
}

func TestSubscribe_NotifiedOnDelete(t *testing.T) {
	store := mustOpen(t)

	if err := store.Put("x", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	var keys []string
	if _, err := store.Subscribe(ChangeHandlerFunc(func(key string) {
		keys = append(keys, key)
	})); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := store.Delete("x"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(keys) != 1 || keys[0] != "x" {
		t.Errorf("handler keys = %v, want [x]", keys)
	}
}

func TestSubscribe_NotNotifiedOnFailedMutation(t *testing.T) {
	store := mustOpen(t)

	var calls int
	if _, err := store.Subscribe(ChangeHandlerFunc(func(string) { calls++ })); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// a failed delete must not fan out
	if err := store.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
	// reads never fan out
	if _, err := store.Get("missing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}

	if calls != 0 {
		t.Errorf("handler calls = %v, want 0", calls)
	}
}

func TestSubscribe_MultipleHandlersEachNotifiedOnce(t *testing.T) {
	store := mustOpen(t)

	var calls1, calls2 int
	id1, err := store.Subscribe(ChangeHandlerFunc(func(key string) {
		if key != "x" {
			t.Errorf("handler 1 key = %q, want %q", key, "x")
		}
		calls1++
	}))
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	id2, err := store.Subscribe(ChangeHandlerFunc(func(key string) { calls2++ }))
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if id1 != 1 || id2 != 2 {
		t.Errorf("Subscribe() ids = %v, %v, want 1, 2", id1, id2)
	}

	if err := store.Put("x", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if calls1 != 1 || calls2 != 1 {
		t.Errorf("handler calls after put = (%v, %v), want (1, 1)", calls1, calls2)
	}

	// releasing id1 stops its delivery only
	if err := store.Unsubscribe(id1); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if err := store.Delete("x"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if calls1 != 1 {
		t.Errorf("released handler calls = %v, want 1", calls1)
	}
	if calls2 != 2 {
		t.Errorf("active handler calls = %v, want 2", calls2)
	}
}

func TestUnsubscribe_UnknownID(t *testing.T) {
	store := mustOpen(t)

	if err := store.Unsubscribe(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Unsubscribe(42) error = %v, want ErrNotFound", err)
	}
}

func TestUnsubscribe_Twice(t *testing.T) {
	store := mustOpen(t)

	id, err := store.Subscribe(ChangeHandlerFunc(func(string) {}))
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := store.Unsubscribe(id); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if err := store.Unsubscribe(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Unsubscribe() error = %v, want ErrNotFound", err)
	}
}

func TestSubscribe_NilHandler(t *testing.T) {
	store := mustOpen(t)

	if _, err := store.Subscribe(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Subscribe(nil) error = %v, want ErrInvalidArgument", err)
	}
}

func TestSubscribe_CapacityExhaustion(t *testing.T) {
	const capacity = 3
	store := mustOpen(t, WithMaxSubscriptions(capacity))

	ids := make([]SubscriptionID, 0, capacity)
	for i := 0; i < capacity; i++ {
		id, err := store.Subscribe(ChangeHandlerFunc(func(string) {}))
		if err != nil {
			t.Fatalf("Subscribe() #%d error = %v", i+1, err)
		}
		ids = append(ids, id)
	}

	if _, err := store.Subscribe(ChangeHandlerFunc(func(string) {})); !errors.Is(err, ErrNoCapacity) {
		t.Fatalf("Subscribe() beyond capacity error = %v, want ErrNoCapacity", err)
	}

	// releasing any slot restores capacity
	if err := store.Unsubscribe(ids[1]); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	id, err := store.Subscribe(ChangeHandlerFunc(func(string) {}))
	if err != nil {
		t.Fatalf("Subscribe() after release error = %v", err)
	}
	if id != capacity+1 {
		t.Errorf("Subscribe() id = %v, want %v (ids are never reused)", id, capacity+1)
	}
}

func TestSubscribe_HandlerSeesAppliedMutation(t *testing.T) {
	store := mustOpen(t)

	var got []byte
	if _, err := store.Subscribe(ChangeHandlerFunc(func(key string) {
		// the mutation is applied before fan-out; a Get from inside the
		// handler must observe the new state
		buf := make([]byte, 8)
		n, err := store.Get(key, buf)
		if err != nil {
			t.Errorf("Get() inside handler error = %v", err)
			return
		}
		got = append([]byte(nil), buf[:n]...)
	})); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := store.Put("k", []byte("new")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if string(got) != "new" {
		t.Errorf("handler observed value = %q, want %q", got, "new")
	}
}

func TestSubscribe_HandlerMayUnsubscribeItself(t *testing.T) {
	store := mustOpen(t)

	var id SubscriptionID
	var calls int
	sub, err := store.Subscribe(ChangeHandlerFunc(func(string) {
		calls++
		if err := store.Unsubscribe(id); err != nil {
			t.Errorf("re-entrant Unsubscribe() error = %v", err)
		}
	}))
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	id = sub

	if err := store.Put("a", nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put("b", nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("self-unsubscribing handler calls = %v, want 1", calls)
	}
}

func TestSubscribe_HandlerPanicDoesNotPropagate(t *testing.T) {
	store := mustOpen(t)

	if _, err := store.Subscribe(ChangeHandlerFunc(func(string) { panic("boom") })); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	var after int
	if _, err := store.Subscribe(ChangeHandlerFunc(func(string) { after++ })); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := store.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put() with panicking handler error = %v", err)
	}
	if after != 1 {
		t.Errorf("handler after panicking one: calls = %v, want 1", after)
	}
}

func TestSubscribe_HandlerRunsOnMutatorGoroutine(t *testing.T) {
	store := mustOpen(t)

	notified := make(chan string, 1)
	if _, err := store.Subscribe(ChangeHandlerFunc(func(key string) {
		notified <- key
	})); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// mutate from a different goroutine than the one that subscribed
	go func() {
		_ = store.Put("remote", []byte("v"))
	}()

	select {
	case key := <-notified:
		if key != "remote" {
			t.Errorf("notified key = %q, want %q", key, "remote")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("handler was not invoked for mutation from another goroutine")
	}
}

func TestSubscribe_ConcurrentMutatorsNotifyExactlyOncePerMutation(t *testing.T) {
	store := mustOpen(t)

	var mu sync.Mutex
	counts := make(map[string]int)
	if _, err := store.Subscribe(ChangeHandlerFunc(func(key string) {
		mu.Lock()
		counts[key]++
		mu.Unlock()
	})); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	const goroutines = 4
	const putsEach = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < putsEach; i++ {
				key := string(rune('a'+g)) + "-key"
				if err := store.Put(key, []byte{byte(i)}); err != nil {
					t.Errorf("Put() error = %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != goroutines*putsEach {
		t.Errorf("total notifications = %v, want %v", total, goroutines*putsEach)
	}
}

func TestWithChangeHandler_RegisteredAtOpen(t *testing.T) {
	var keys []string
	store, err := Open("cache",
		WithLogger(testLogger()),
		WithChangeHandler(ChangeHandlerFunc(func(key string) {
			keys = append(keys, key)
		})),
	)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if store.Subscriptions() != 1 {
		t.Fatalf("Subscriptions() = %v, want 1", store.Subscriptions())
	}

	if err := store.Put("x", nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != "x" {
		t.Errorf("handler keys = %v, want [x]", keys)
	}
}

func TestWithChangeHandler_CountsAgainstCapacity(t *testing.T) {
	store, err := Open("cache",
		WithLogger(testLogger()),
		WithMaxSubscriptions(1),
		WithChangeHandler(ChangeHandlerFunc(func(string) {})),
	)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if _, err := store.Subscribe(ChangeHandlerFunc(func(string) {})); !errors.Is(err, ErrNoCapacity) {
		t.Errorf("Subscribe() error = %v, want ErrNoCapacity", err)
	}
}
