package identity

import (
	"context"

	"github.com/Erfan-programmer/divix-cart/internal/cache"
	"github.com/Erfan-programmer/divix-cart/internal/errors"
)

// Provider owns the server-issued cart identifier for one storefront
// session. Every cart operation reads the id fresh through Get rather than
// caching it, so an id written by another replica is picked up on the next
// call.
type Provider interface {
	// Get returns the known cart id, or "" when none has been issued yet.
	Get(ctx context.Context) (string, error)
	// Set persists a server-issued cart id, overwriting any previous one.
	Set(ctx context.Context, cartID string) error
	Clear(ctx context.Context) error
}

type cacheProvider struct {
	store   cache.Cache
	session string
}

// NewCacheProvider scopes cart identity to a storefront session key inside
// the shared key-value store.
func NewCacheProvider(store cache.Cache, session string) Provider {
	return &cacheProvider{store: store, session: session}
}

func (p *cacheProvider) key() string {
	return cache.Key(cache.CartIDKeyPrefix, p.session)
}

func (p *cacheProvider) Get(ctx context.Context) (string, error) {

	var cartID string

	found, err := p.store.Get(ctx, p.key(), &cartID)
	if err != nil {
		return "", errors.StorageError("Failed to read cart id").WithError(err)
	}

	if !found {
		return "", nil
	}

	return cartID, nil
}

func (p *cacheProvider) Set(ctx context.Context, cartID string) error {

	if cartID == "" {
		return errors.BadRequestError("Cart id cannot be empty")
	}

	if err := p.store.Set(ctx, p.key(), cartID, 0); err != nil {
		return errors.StorageError("Failed to persist cart id").WithError(err)
	}

	return nil
}

func (p *cacheProvider) Clear(ctx context.Context) error {

	if err := p.store.Delete(ctx, p.key()); err != nil {
		return errors.StorageError("Failed to clear cart id").WithError(err)
	}

	return nil
}
