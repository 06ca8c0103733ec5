package vault

import (
	"log/slog"
	"sync"
)

// resultBuffer is the per-subscriber channel depth. Delivery is
// fire-and-forget: a subscriber that falls further behind misses
// results rather than blocking the cycle's cleanup.
const resultBuffer = 16

// Callback receives the result of a tagged sync request.
type Callback func(SyncResult)

// notifier fans a cycle's SyncResult out to all subscribers and to the
// callback registered under the request's tag.
type notifier struct {
	mu        sync.Mutex
	nextID    int
	subs      map[int]chan SyncResult
	callbacks map[string]Callback
	logger    *slog.Logger
}

func newNotifier(logger *slog.Logger) *notifier {
	return &notifier{
		subs:      make(map[int]chan SyncResult),
		callbacks: make(map[string]Callback),
		logger:    logger,
	}
}

// subscribe registers a result channel and returns it with a cancel
// function. The channel is closed on cancel.
func (n *notifier) subscribe() (<-chan SyncResult, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	ch := make(chan SyncResult, resultBuffer)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// registerCallback associates a callback with a tag. A nil fn removes
// the tag's callback.
func (n *notifier) registerCallback(tag string, fn Callback) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if fn == nil {
		delete(n.callbacks, tag)
		return
	}

	n.callbacks[tag] = fn
}

// publish delivers a result to every subscriber and to the tag's
// callback. It never blocks and never panics: full subscriber channels
// drop the result, and the callback runs on its own goroutine with
// panic recovery.
func (n *notifier) publish(res SyncResult, tag string) {
	n.mu.Lock()

	for _, ch := range n.subs {
		select {
		case ch <- res:
		default:
			n.logger.Warn("dropping sync result for slow subscriber",
				slog.String("cycle_id", res.CycleID),
			)
		}
	}

	cb := n.callbacks[tag]
	n.mu.Unlock()

	if cb == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("sync callback panicked",
					slog.String("tag", tag),
					slog.Any("panic", r),
				)
			}
		}()

		cb(res)
	}()
}
