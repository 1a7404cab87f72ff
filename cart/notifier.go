package cart

import "sync"

// EventCartChanged is the single event name broadcast after every anonymous
// cart mutation. Subscribers re-read the store; they are never handed the
// cart payload, so concurrently open views cannot diverge on stale copies.
const EventCartChanged = "cart:changed"

// Notifier is a process-wide broadcast channel. The value delivered is the
// session id whose cart changed.
type Notifier struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[chan string]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the view goes away.
func (n *Notifier) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 8)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		delete(n.subs, ch)
		n.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast notifies every subscriber that the given session's cart changed.
// Slow subscribers are skipped: the store is last-writer-wins and a listener
// that misses a signal re-reads on the next one.
func (n *Notifier) Broadcast(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- sessionID:
		default:
		}
	}
}
