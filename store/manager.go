package store

import (
	"context"
	"sync"
)

// managerEntry pairs a store with a one-shot bind so concurrent callers for
// the same uid all wait on a single hydration.
type managerEntry struct {
	store *Store
	once  sync.Once
	err   error
}

// Manager is the composition-root-owned registry of live stores, one per
// signed-in identity. Controllers fetch a store through it instead of sharing
// an ambient singleton.
type Manager struct {
	gw       Gateway
	notifier Notifier

	mu     sync.Mutex
	stores map[string]*managerEntry
}

func NewManager(gw Gateway, notifier Notifier) *Manager {
	return &Manager{
		gw:       gw,
		notifier: notifier,
		stores:   make(map[string]*managerEntry),
	}
}

// Store returns the live store bound to uid, creating and hydrating one on
// first use. The store is never handed out before its hydration has finished:
// concurrent callers for a new uid block until the first caller's bind
// completes, so no mutation can slip in and be overwritten by the fetched
// document.
func (m *Manager) Store(ctx context.Context, uid string) (*Store, error) {
	m.mu.Lock()
	e, ok := m.stores[uid]
	if !ok {
		e = &managerEntry{store: New(m.gw, m.notifier)}
		m.stores[uid] = e
	}
	m.mu.Unlock()

	e.once.Do(func() {
		e.err = e.store.BindIdentity(ctx, uid)
		if e.err != nil {
			m.mu.Lock()
			if m.stores[uid] == e {
				delete(m.stores, uid)
			}
			m.mu.Unlock()
		}
	})
	if e.err != nil {
		return nil, e.err
	}
	return e.store, nil
}

// Release flushes and unbinds a store on sign-out. A uid with no live store is
// a no-op.
func (m *Manager) Release(ctx context.Context, uid string) {
	m.mu.Lock()
	e, ok := m.stores[uid]
	if ok {
		delete(m.stores, uid)
	}
	m.mu.Unlock()
	if ok {
		// BindIdentity("") flushes the outgoing state before resetting.
		e.store.BindIdentity(ctx, "")
	}
}

// ForEach visits every live store; used by the periodic sweeper.
func (m *Manager) ForEach(fn func(*Store)) {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, e := range m.stores {
		stores = append(stores, e.store)
	}
	m.mu.Unlock()
	for _, s := range stores {
		fn(s)
	}
}
