package cart

import (
	"sync"

	"github.com/Erfan-programmer/divix-cart/internal/cache"
	"github.com/Erfan-programmer/divix-cart/internal/identity"
	"github.com/Erfan-programmer/divix-cart/internal/notify"
	"github.com/Erfan-programmer/divix-cart/pkg/divix"
)

// Manager hands out one Core per storefront session, so every view of a
// session shares the same cart state instead of keeping parallel copies.
type Manager struct {
	client   divix.Client
	store    cache.Cache
	notifier notify.Notifier

	mu    sync.Mutex
	cores map[string]*Core
}

func NewManager(client divix.Client, store cache.Cache, notifier notify.Notifier) *Manager {
	return &Manager{
		client:   client,
		store:    store,
		notifier: notifier,
		cores:    make(map[string]*Core),
	}
}

// ForSession returns the session's core, creating it on first use. Identity
// is scoped per session inside the shared store.
func (m *Manager) ForSession(session string) *Core {

	m.mu.Lock()
	defer m.mu.Unlock()

	if core, ok := m.cores[session]; ok {
		return core
	}

	provider := identity.NewCacheProvider(m.store, session)
	core := NewCore(m.client, provider, m.notifier, m.store, session)
	m.cores[session] = core

	return core
}

// Evict drops a session's core from memory. Identity and the persisted
// snapshot survive in the store.
func (m *Manager) Evict(session string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.cores, session)
}
