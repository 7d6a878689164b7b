package divix_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appErrors "github.com/Erfan-programmer/divix-cart/internal/errors"
	"github.com/Erfan-programmer/divix-cart/pkg/divix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartIDHeader = "cart-id"

type recordedRequest struct {
	Method string
	Path   string
	CartID string
	Auth   string
	Body   map[string]any
}

func newTestClient(t *testing.T, status int, payload string) (divix.Client, *recordedRequest) {
	t.Helper()

	recorded := &recordedRequest{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded.Method = r.Method
		recorded.Path = r.URL.Path
		recorded.CartID = r.Header.Get(cartIDHeader)
		recorded.Auth = r.Header.Get("Authorization")

		if r.Body != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				recorded.Body = body
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)

	return divix.NewClient(server.URL, cartIDHeader, 5*time.Second), recorded
}

func TestFetchCart(t *testing.T) {
	t.Run("Success - Maps Lines And Summary", func(t *testing.T) {
		// Arrange
		client, recorded := newTestClient(t, http.StatusOK, `{
			"success": true,
			"result": {
				"id": "c-42",
				"products": [{
					"product_id": "prod-1",
					"price_id": "price-1",
					"title": "Shirt",
					"image": "shirt.jpg",
					"quantity": 2,
					"price": 900,
					"regular_price": 1000,
					"discount_price": 900,
					"attributes": [{"name": "Color", "value": "Blue", "group_type": "color"}],
					"cart_max": 5,
					"cart_min": 1
				}],
				"final_price": 1800,
				"total_discount": 200,
				"shipping_cost": "flat",
				"shipping_cost_amount": 50,
				"weight": 300
			}
		}`)

		// Act
		cart, err := client.FetchCart(t.Context(), "c-42")

		// Assert
		require.NoError(t, err)
		require.NotNil(t, cart)
		assert.Equal(t, http.MethodGet, recorded.Method)
		assert.Equal(t, "/cart", recorded.Path)
		assert.Equal(t, "c-42", recorded.CartID)
		assert.Equal(t, "c-42", cart.ID)
		require.Len(t, cart.Lines, 1)
		assert.Equal(t, "price-1", cart.Lines[0].PriceID)
		assert.Equal(t, 2, cart.Lines[0].Quantity)
		assert.Equal(t, int64(900), cart.Lines[0].UnitPrice)
		assert.Equal(t, 5, cart.Lines[0].CartMax)
		require.Len(t, cart.Lines[0].Attributes, 1)
		assert.Equal(t, "Blue", cart.Lines[0].Attributes[0].Value)
		assert.Equal(t, int64(1800), cart.Summary.FinalPrice)
		assert.Equal(t, int64(50), cart.Summary.ShippingCostAmount)
	})

	t.Run("Success - No Cart Id Header When Unknown", func(t *testing.T) {
		// Arrange
		client, recorded := newTestClient(t, http.StatusOK, `{"success": true, "result": {"id": "c-new", "products": []}}`)

		// Act
		cart, err := client.FetchCart(t.Context(), "")

		// Assert
		require.NoError(t, err)
		assert.Empty(t, recorded.CartID, "cart-id header must be omitted when no id is known")
		assert.Equal(t, "c-new", cart.ID)
		assert.Empty(t, cart.Lines)
	})

	t.Run("Failure - Envelope Success False", func(t *testing.T) {
		// Arrange
		client, _ := newTestClient(t, http.StatusOK, `{"success": false, "message": "cart expired"}`)

		// Act
		cart, err := client.FetchCart(t.Context(), "c-42")

		// Assert
		require.Error(t, err)
		assert.Nil(t, cart)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeServerLogic, appErr.Code)
		assert.Equal(t, "cart expired", appErr.Message)
	})

	t.Run("Failure - Non-2xx Status", func(t *testing.T) {
		// Arrange
		client, _ := newTestClient(t, http.StatusInternalServerError, `{"success": false}`)

		// Act
		cart, err := client.FetchCart(t.Context(), "c-42")

		// Assert
		require.Error(t, err)
		assert.Nil(t, cart)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNetwork, appErr.Code)
	})

	t.Run("Failure - Unreachable Host", func(t *testing.T) {
		// Arrange
		client := divix.NewClient("http://127.0.0.1:1", cartIDHeader, 500*time.Millisecond)

		// Act
		cart, err := client.FetchCart(t.Context(), "c-42")

		// Assert
		require.Error(t, err)
		assert.Nil(t, cart)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNetwork, appErr.Code)
	})
}

func TestAddItem(t *testing.T) {
	t.Run("Success - One Unit Per Call", func(t *testing.T) {
		// Arrange
		client, recorded := newTestClient(t, http.StatusOK, `{"success": true, "result": {"id": "c-42"}}`)

		// Act
		result, err := client.AddItem(t.Context(), "c-42", "price-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, recorded.Method)
		assert.Equal(t, "/cart", recorded.Path)
		assert.Equal(t, "price-1", recorded.Body["price_id"])
		assert.Equal(t, float64(1), recorded.Body["quantity"], "upstream contract is one unit per call")
		assert.Equal(t, "c-42", result.ID)
	})

	t.Run("Failure - Stock Exhausted On 422", func(t *testing.T) {
		// Arrange
		client, _ := newTestClient(t, http.StatusUnprocessableEntity, `{"success": false, "message": "out of stock"}`)

		// Act
		result, err := client.AddItem(t.Context(), "c-42", "price-1")

		// Assert
		require.Error(t, err)
		assert.Nil(t, result)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeStockExhausted, appErr.Code)
		assert.Equal(t, "out of stock", appErr.Message)
	})
}

func TestDecreaseItem(t *testing.T) {
	// Arrange
	client, recorded := newTestClient(t, http.StatusOK, `{"success": true}`)

	// Act
	_, err := client.DecreaseItem(t.Context(), "c-42", "price-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, recorded.Method)
	assert.Equal(t, "/cart/decrease", recorded.Path)
	assert.Equal(t, float64(1), recorded.Body["quantity"])
}

func TestRemoveItem(t *testing.T) {
	// Arrange
	client, recorded := newTestClient(t, http.StatusOK, `{"success": true, "message": "removed"}`)

	// Act
	result, err := client.RemoveItem(t.Context(), "c-42", "price-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, recorded.Method)
	assert.Equal(t, "/cart/price-1", recorded.Path)
	assert.Equal(t, "c-42", recorded.CartID)
	assert.Equal(t, "removed", result.Message)
}

func TestDiscount(t *testing.T) {
	t.Run("Apply - Sends Bearer Token", func(t *testing.T) {
		// Arrange
		client, recorded := newTestClient(t, http.StatusOK, `{"success": true}`)

		// Act
		_, err := client.ApplyDiscount(t.Context(), "c-42", "SAVE10", "tok-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, recorded.Method)
		assert.Equal(t, "/cart/discount", recorded.Path)
		assert.Equal(t, "Bearer tok-1", recorded.Auth)
		assert.Equal(t, "SAVE10", recorded.Body["code"])
	})

	t.Run("Remove - Uses Cart Id Header", func(t *testing.T) {
		// Arrange
		client, recorded := newTestClient(t, http.StatusOK, `{"success": true}`)

		// Act
		_, err := client.RemoveDiscount(t.Context(), "c-42")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, http.MethodDelete, recorded.Method)
		assert.Equal(t, "/cart/discount", recorded.Path)
		assert.Equal(t, "c-42", recorded.CartID)
	})
}
