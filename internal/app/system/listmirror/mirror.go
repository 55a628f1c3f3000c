// internal/app/system/listmirror/mirror.go
package listmirror

import (
	"sync"
	"time"

	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mirror keeps, per viewer, the last item list that was successfully
// fetched. Delete uses it to look up owners without a read and to put an
// item back in place when the store rejects the delete.
type Mirror struct {
	mu    sync.RWMutex
	lists map[string][]models.Item
	seen  map[string]time.Time
	now   func() time.Time
}

// New returns an empty Mirror.
func New() *Mirror {
	return &Mirror{
		lists: make(map[string][]models.Item),
		seen:  make(map[string]time.Time),
		now:   time.Now,
	}
}

// Set replaces the viewer's list with a copy of items.
func (m *Mirror) Set(viewer string, items []models.Item) {
	cp := make([]models.Item, len(items))
	copy(cp, items)

	m.mu.Lock()
	m.lists[viewer] = cp
	m.seen[viewer] = m.now()
	m.mu.Unlock()
}

// List returns a copy of the viewer's list and whether one is held.
func (m *Mirror) List(viewer string) ([]models.Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items, ok := m.lists[viewer]
	if !ok {
		return nil, false
	}
	cp := make([]models.Item, len(items))
	copy(cp, items)
	return cp, true
}

// Find returns the mirrored copy of item id for viewer.
func (m *Mirror) Find(viewer string, id primitive.ObjectID) (models.Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, it := range m.lists[viewer] {
		if it.ID == id {
			return it, true
		}
	}
	return models.Item{}, false
}

// Remove takes item id out of the viewer's list. The returned func puts it
// back at its original index; it is a no-op when nothing was removed.
func (m *Mirror) Remove(viewer string, id primitive.ObjectID) (restore func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.lists[viewer]
	idx := -1
	for i, it := range items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return func() {}
	}

	removed := items[idx]
	next := make([]models.Item, 0, len(items)-1)
	next = append(next, items[:idx]...)
	next = append(next, items[idx+1:]...)
	m.lists[viewer] = next

	return func() { m.insert(viewer, idx, removed) }
}

func (m *Mirror) insert(viewer string, idx int, it models.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.lists[viewer]
	for _, cur := range items {
		if cur.ID == it.ID {
			return
		}
	}
	if idx > len(items) {
		idx = len(items)
	}
	next := make([]models.Item, 0, len(items)+1)
	next = append(next, items[:idx]...)
	next = append(next, it)
	next = append(next, items[idx:]...)
	m.lists[viewer] = next
}

// Drop forgets the viewer's list.
func (m *Mirror) Drop(viewer string) {
	m.mu.Lock()
	delete(m.lists, viewer)
	delete(m.seen, viewer)
	m.mu.Unlock()
}

// Sweep drops every list that was last Set more than maxAge ago and
// returns how many were dropped.
func (m *Mirror) Sweep(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for viewer, at := range m.seen {
		if at.Before(cutoff) {
			delete(m.lists, viewer)
			delete(m.seen, viewer)
			n++
		}
	}
	return n
}

// Len reports how many viewers have a list held.
func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lists)
}

// Subscribe drops a viewer's list when they sign out or delete their
// account.
func (m *Mirror) Subscribe(b *authstate.Broker) (unsubscribe func()) {
	return b.Subscribe(func(e authstate.Event) {
		switch e.Kind {
		case authstate.SignedOut, authstate.AccountDeleted:
			m.Drop(e.AccountID)
		}
	})
}
