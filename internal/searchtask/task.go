// Package searchtask runs a single iterative-deepening search as a
// cancellable background worker, delivering each completed depth to the
// caller in order over a FIFO channel.
package searchtask

import (
	"sync/atomic"

	"shatranj/internal/rules"
	"shatranj/internal/search"
	"shatranj/internal/ttable"
)

// cancelPollInterval amortizes the atomic read of the stop flag: the
// searcher still checks at every node, but only every Nth check touches the
// atomic, the rest return false immediately.
const cancelPollInterval = 1024

// Task is a running (or finished) background search. Its zero value is not
// usable; obtain one from Start.
type Task struct {
	stop atomic.Bool
	done chan struct{}
}

// Start launches an infinite (bounded only by maxDepth) search of pos
// against tt, calling onUpdate once per completed depth from a dedicated
// delivery goroutine. The update channel is unbuffered, so after each
// completed depth the search waits until the previous onUpdate call has
// returned. The returned handle must eventually be joined.
func Start(tt *ttable.Table, pos *rules.Position, maxDepth int, onUpdate func(search.Update)) *Task {
	t := &Task{done: make(chan struct{})}
	updates := make(chan search.Update)

	go func() {
		defer close(updates)
		searcher := search.New(tt)
		var nodes uint64
		cancel := func() bool {
			nodes++
			if nodes%cancelPollInterval != 0 {
				return false
			}
			return t.stop.Load()
		}
		searcher.IterativeDeepen(pos, maxDepth, cancel, func(u search.Update) bool {
			updates <- u
			return true
		})
	}()

	go func() {
		defer close(t.done)
		for u := range updates {
			onUpdate(u)
		}
	}()

	return t
}

// Join requests cancellation and blocks until the worker and its delivery
// goroutine have both exited. It is safe to call more than once, and safe
// to call on a task that already finished on its own.
func (t *Task) Join() {
	t.stop.Store(true)
	<-t.done
}
