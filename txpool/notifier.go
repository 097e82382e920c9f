package txpool

import (
	"sync"
)

// notifier wakes every waiter whenever an entry becomes ready.
// Waiters hold no registration, they grab the current channel
// and re-check the ready queue after it is closed.
type notifier struct {
	mu  sync.Mutex
	gen uint64
	ch  chan struct{}
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{})}
}

// signal bumps the generation and wakes all current waiters
func (n *notifier) signal() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.gen++
	close(n.ch)
	n.ch = make(chan struct{})
}

// wait returns the current generation and the channel
// closed on the next signal
func (n *notifier) wait() (uint64, <-chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.gen, n.ch
}

func (n *notifier) generation() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.gen
}
