package cart

import "sync"

// notifier is the in-process cart-changed broadcast: no payload, synchronous,
// at-least-once to every listener registered at broadcast time. Subscribers
// re-read the cart in response; the event itself carries nothing.
type notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

func newNotifier() *notifier {
	return &notifier{listeners: make(map[int]func())}
}

// subscribe registers fn and returns a function that unregisters it.
// Unsubscribing twice is harmless.
func (n *notifier) subscribe(fn func()) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

// broadcast invokes every registered listener. Listeners run synchronously
// on the caller's goroutine, outside the lock so they may re-subscribe.
func (n *notifier) broadcast() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
