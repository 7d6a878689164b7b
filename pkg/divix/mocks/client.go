package mocks

import (
	"context"

	"github.com/Erfan-programmer/divix-cart/pkg/divix"
	"github.com/stretchr/testify/mock"
)

// Client is a testify mock of divix.Client.
type Client struct {
	mock.Mock
}

func (m *Client) FetchCart(ctx context.Context, cartID string) (*divix.Cart, error) {
	args := m.Called(ctx, cartID)

	if cart, ok := args.Get(0).(*divix.Cart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *Client) AddItem(ctx context.Context, cartID, priceID string) (*divix.MutationResult, error) {
	return m.mutation(m.Called(ctx, cartID, priceID))
}

func (m *Client) DecreaseItem(ctx context.Context, cartID, priceID string) (*divix.MutationResult, error) {
	return m.mutation(m.Called(ctx, cartID, priceID))
}

func (m *Client) RemoveItem(ctx context.Context, cartID, priceID string) (*divix.MutationResult, error) {
	return m.mutation(m.Called(ctx, cartID, priceID))
}

func (m *Client) ApplyDiscount(ctx context.Context, cartID, code, bearerToken string) (*divix.MutationResult, error) {
	return m.mutation(m.Called(ctx, cartID, code, bearerToken))
}

func (m *Client) RemoveDiscount(ctx context.Context, cartID string) (*divix.MutationResult, error) {
	return m.mutation(m.Called(ctx, cartID))
}

func (m *Client) mutation(args mock.Arguments) (*divix.MutationResult, error) {

	if result, ok := args.Get(0).(*divix.MutationResult); ok {
		return result, args.Error(1)
	}

	return nil, args.Error(1)
}
