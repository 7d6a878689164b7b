package identity

import (
	"context"
	"sync"
)

// memoryProvider keeps the cart id in process memory. Used in tests and
// when the service runs without a Redis backing store.
type memoryProvider struct {
	mu     sync.RWMutex
	cartID string
}

func NewMemoryProvider() Provider {
	return &memoryProvider{}
}

func (p *memoryProvider) Get(_ context.Context) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.cartID, nil
}

func (p *memoryProvider) Set(_ context.Context, cartID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cartID = cartID

	return nil
}

func (p *memoryProvider) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cartID = ""

	return nil
}
