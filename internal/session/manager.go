package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/popx/account-portal/internal/events"
	"github.com/popx/account-portal/internal/observability"
)

// PersistenceFactory returns the persistence port for one client.
type PersistenceFactory func(clientID string) Persistence

// ManagerDependencies bundles what every store built by a Manager shares.
type ManagerDependencies struct {
	Persistence   PersistenceFactory
	Authenticator Authenticator
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// Manager owns one Store per client. Stores are created and restored on first use.
type Manager struct {
	deps ManagerDependencies

	mu     sync.Mutex
	stores map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	restored bool
	store    *Store
}

// NewManager builds an empty manager.
func NewManager(deps ManagerDependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Manager{deps: deps, stores: make(map[string]*entry)}
}

// Get returns the restored store for clientID, creating it when needed.
// Concurrent first calls for the same client restore once. When the restore
// fails the error is returned and the next Get tries again. The restore does
// not inherit ctx's cancellation, so an aborted request cannot strand the store.
func (m *Manager) Get(ctx context.Context, clientID string) (*Store, error) {
	m.mu.Lock()
	e, ok := m.stores[clientID]
	if !ok {
		e = &entry{store: New(Dependencies{
			ClientID:      clientID,
			Persistence:   m.deps.Persistence(clientID),
			Authenticator: m.deps.Authenticator,
			Dispatcher:    m.deps.Dispatcher,
			Logger:        m.deps.Logger,
			Metrics:       m.deps.Metrics,
		})}
		m.stores[clientID] = e
	}
	m.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.restored {
		if _, err := e.store.Restore(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		e.restored = true
	}
	return e.store, nil
}

// Forget drops the in-memory store of clientID. The persisted record is kept,
// so the next Get restores from it.
func (m *Manager) Forget(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, clientID)
}

// Len returns the number of stores held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}
