package searchtask

import (
	"sync"
	"testing"
	"time"

	"shatranj/internal/rules"
	"shatranj/internal/search"
	"shatranj/internal/ttable"
)

func TestStartJoinIsIdempotent(t *testing.T) {
	tt := ttable.New(1 << 20)
	task := Start(tt, rules.NewPosition(), 99, func(search.Update) {})

	task.Join()
	task.Join() // must not hang or panic
}

func TestUpdatesArriveInIncreasingDepthOrder(t *testing.T) {
	tt := ttable.New(1 << 20)

	var mu sync.Mutex
	var depths []int
	task := Start(tt, rules.NewPosition(), 4, func(u search.Update) {
		mu.Lock()
		depths = append(depths, u.Depth)
		mu.Unlock()
	})

	// Let a few depths complete, then stop.
	time.Sleep(50 * time.Millisecond)
	task.Join()

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(depths); i++ {
		if depths[i] <= depths[i-1] {
			t.Errorf("depths not strictly increasing: %v", depths)
			break
		}
	}
}

func TestJoinStopsDeliveryPromptly(t *testing.T) {
	tt := ttable.New(1 << 20)
	var calls int
	var mu sync.Mutex
	task := Start(tt, rules.NewPosition(), 99, func(search.Update) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	task.Join()

	mu.Lock()
	after := calls
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != after {
		t.Errorf("onUpdate kept being called after Join returned: %d -> %d", after, calls)
	}
}
