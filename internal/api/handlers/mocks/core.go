package mocks

import (
	"context"

	"github.com/Erfan-programmer/divix-cart/internal/cart"
	"github.com/Erfan-programmer/divix-cart/internal/models"
	"github.com/stretchr/testify/mock"
)

// Core is a testify mock of the handlers.Core seam.
type Core struct {
	mock.Mock
}

func (m *Core) Fetch(ctx context.Context, opts cart.FetchOptions) error {
	return m.Called(ctx, opts).Error(0)
}

func (m *Core) Snapshot() models.CartSnapshot {
	args := m.Called()

	snapshot, _ := args.Get(0).(models.CartSnapshot)

	return snapshot
}

func (m *Core) TotalItems() int {
	return m.Called().Int(0)
}

func (m *Core) ChangeQuantity(ctx context.Context, priceID string, newQuantity int) error {
	return m.Called(ctx, priceID, newQuantity).Error(0)
}

func (m *Core) AddToCart(ctx context.Context, priceID string, quantity int) error {
	return m.Called(ctx, priceID, quantity).Error(0)
}

func (m *Core) RemoveItem(ctx context.Context, priceID string) error {
	return m.Called(ctx, priceID).Error(0)
}

func (m *Core) ApplyDiscount(ctx context.Context, code, bearerToken string) error {
	return m.Called(ctx, code, bearerToken).Error(0)
}

func (m *Core) RemoveDiscount(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
