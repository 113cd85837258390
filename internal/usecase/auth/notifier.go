package auth

import "sync"

// EventType distinguishes sign-in from sign-out notifications
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// Event describes an authentication state change for one user
type Event struct {
	Type   EventType
	UserID string
}

// Handler receives auth state change events
type Handler func(Event)

// Notifier fans auth state changes out to registered handlers. Subscribing
// returns an unsubscribe function; calling it more than once is harmless.
type Notifier struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

// NewNotifier creates an empty notifier
func NewNotifier() *Notifier {
	return &Notifier{
		handlers: make(map[int]Handler),
	}
}

// Subscribe registers a handler and returns its unsubscribe function
func (n *Notifier) Subscribe(h Handler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.handlers[id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.handlers, id)
		})
	}
}

// Publish delivers an event to every registered handler. Handlers run on
// the caller's goroutine; registration order is not guaranteed.
func (n *Notifier) Publish(ev Event) {
	n.mu.Lock()
	handlers := make([]Handler, 0, len(n.handlers))
	for _, h := range n.handlers {
		handlers = append(handlers, h)
	}
	n.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
