package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreSubscribeDeliversCurrentValue(t *testing.T) {
	s := NewStore(1)
	s.Update(func(v int) int { return v + 1 })
	s.Update(func(v int) int { return v * 10 })

	var got []int
	unsubscribe := s.Subscribe(func(v int) { got = append(got, v) })
	defer unsubscribe()

	// Subscribing late must see the latest value, not the initial one
	require.Equal(t, []int{20}, got)
	require.Equal(t, 20, s.Get())
}

func TestStoreNotifiesEveryObserver(t *testing.T) {
	s := NewStore("")

	var a, b []string
	s.Subscribe(func(v string) { a = append(a, v) })
	s.Subscribe(func(v string) { b = append(b, v) })

	s.Update(func(string) string { return "x" })
	s.Update(func(string) string { return "y" })

	require.Equal(t, []string{"", "x", "y"}, a)
	require.Equal(t, []string{"", "x", "y"}, b)
}

func TestStoreUnsubscribe(t *testing.T) {
	s := NewStore(0)

	calls := 0
	unsubscribe := s.Subscribe(func(int) { calls++ })
	require.Equal(t, 1, calls)

	s.Update(func(v int) int { return v + 1 })
	require.Equal(t, 2, calls)

	unsubscribe()
	unsubscribe() // second call is a no-op

	s.Update(func(v int) int { return v + 1 })
	require.Equal(t, 2, calls)
	require.Equal(t, 2, s.Get())
}

func TestStoreReentrantUpdateIsQueued(t *testing.T) {
	s := NewStore(0)

	var first, second []int
	s.Subscribe(func(v int) {
		first = append(first, v)
		if v == 1 {
			// Writing from inside an observer must not deadlock or re-enter
			s.Update(func(v int) int { return v + 1 })
		}
	})
	s.Subscribe(func(v int) { second = append(second, v) })

	s.Update(func(v int) int { return v + 1 })

	require.Equal(t, []int{0, 1, 2}, first)
	require.Equal(t, []int{0, 1, 2}, second)
	require.Equal(t, 2, s.Get())
}

func TestStoreUnsubscribeDuringBroadcast(t *testing.T) {
	s := NewStore(0)

	var unsubscribeSecond func()
	var second []int
	s.Subscribe(func(v int) {
		if v == 1 && unsubscribeSecond != nil {
			unsubscribeSecond()
		}
	})
	unsubscribeSecond = s.Subscribe(func(v int) { second = append(second, v) })

	s.Update(func(v int) int { return v + 1 })
	s.Update(func(v int) int { return v + 1 })

	require.Equal(t, []int{0}, second)
}

func TestStorePanickingObserverDoesNotWedgeStore(t *testing.T) {
	s := NewStore(0)

	unsubscribe := s.Subscribe(func(v int) {
		if v == 1 {
			panic("boom")
		}
	})

	require.Panics(t, func() {
		s.Update(func(v int) int { return v + 1 })
	})
	unsubscribe()

	var got []int
	s.Subscribe(func(v int) { got = append(got, v) })
	s.Update(func(v int) int { return v + 1 })
	require.Equal(t, []int{1, 2}, got)
}

func TestStorePanicKeepsPendingDeliveries(t *testing.T) {
	s := NewStore(0)

	s.Subscribe(func(v int) {
		if v == 1 {
			s.Update(func(v int) int { return v + 1 })
			panic("boom")
		}
	})
	var got []int
	s.Subscribe(func(v int) { got = append(got, v) })

	require.Panics(t, func() {
		s.Update(func(v int) int { return v + 1 })
	})
	require.Equal(t, 2, s.Get())
	require.Equal(t, []int{0}, got)

	// The next write flushes what the panicking broadcast left behind, in order
	s.Update(func(v int) int { return v + 1 })
	require.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestStoreSubscribeDuringForeignBroadcast(t *testing.T) {
	s := NewStore(0)

	entered := make(chan struct{})
	release := make(chan struct{})
	s.Subscribe(func(v int) {
		if v == 1 {
			close(entered)
			<-release
		}
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.Update(func(v int) int { return v + 1 })
	}()
	<-entered

	var mu sync.Mutex
	var got []int
	s.Subscribe(func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})

	// The writer owns the drain, so the initial delivery waits behind it
	mu.Lock()
	require.Empty(t, got)
	mu.Unlock()

	close(release)
	<-writerDone

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStoreConcurrentWriters(t *testing.T) {
	s := NewStore(0)

	var mu sync.Mutex
	var seen []int
	s.Subscribe(func(v int) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()

	require.Equal(t, writers, s.Get())

	mu.Lock()
	defer mu.Unlock()
	// Every write is delivered once and in order
	require.Len(t, seen, writers+1)
	for i, v := range seen {
		require.Equal(t, i, v)
	}
}
