// internal/app/system/authstate/broker.go
package authstate

import (
	"sync"
	"time"
)

// Kind identifies what happened to a session.
type Kind int

const (
	SignedIn Kind = iota + 1
	SignedOut
	AccountDeleted
)

func (k Kind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case AccountDeleted:
		return "account_deleted"
	default:
		return "unknown"
	}
}

// Event is one auth-state change for an account.
type Event struct {
	Kind      Kind
	AccountID string
	Email     string
	IP        string
	At        time.Time
}

// Broker fans auth-state events out to subscribers. Delivery is synchronous
// on the publishing goroutine, so subscribers must not block.
type Broker struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(Event)
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[uint64]func(Event))}
}

// Subscribe registers fn and returns the func that removes it. Calling the
// returned func more than once is harmless.
func (b *Broker) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers e to every current subscriber. A zero At is stamped with
// the current time.
func (b *Broker) Publish(e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Len reports the number of live subscriptions.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
