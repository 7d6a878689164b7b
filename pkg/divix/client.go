package divix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Erfan-programmer/divix-cart/internal/errors"
	"github.com/Erfan-programmer/divix-cart/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client is the surface of the upstream storefront API that owns the cart.
// Every call is scoped to a cart id; an empty id means no cart has been
// issued for this session yet.
type Client interface {
	FetchCart(ctx context.Context, cartID string) (*Cart, error)
	AddItem(ctx context.Context, cartID, priceID string) (*MutationResult, error)
	DecreaseItem(ctx context.Context, cartID, priceID string) (*MutationResult, error)
	RemoveItem(ctx context.Context, cartID, priceID string) (*MutationResult, error)
	ApplyDiscount(ctx context.Context, cartID, code, bearerToken string) (*MutationResult, error)
	RemoveDiscount(ctx context.Context, cartID string) (*MutationResult, error)
}

// Cart is the authoritative cart as reported by the upstream API.
type Cart struct {
	ID      string
	Lines   []models.CartLine
	Summary models.CartSummary
}

// MutationResult carries whatever identity the upstream returned with a
// successful mutation. ID can differ from the id the request was issued
// with; callers must adopt it.
type MutationResult struct {
	ID      string
	Message string
}

// envelope is the fixed response shape of the upstream API.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type cartResult struct {
	ID                 string     `json:"id"`
	Products           []wireLine `json:"products"`
	FinalPrice         int64      `json:"final_price"`
	TotalDiscount      int64      `json:"total_discount"`
	ShippingCost       string     `json:"shipping_cost"`
	ShippingCostAmount int64      `json:"shipping_cost_amount"`
	Weight             int64      `json:"weight"`
}

type wireLine struct {
	ProductID     string                 `json:"product_id"`
	PriceID       string                 `json:"price_id"`
	Title         string                 `json:"title"`
	Image         string                 `json:"image"`
	Quantity      int                    `json:"quantity"`
	Price         int64                  `json:"price"`
	RegularPrice  int64                  `json:"regular_price"`
	DiscountPrice int64                  `json:"discount_price"`
	Attributes    []models.CartAttribute `json:"attributes"`
	CartMax       int                    `json:"cart_max"`
	CartMin       int                    `json:"cart_min"`
}

type mutationRequest struct {
	PriceID  string `json:"price_id"`
	Quantity int    `json:"quantity"`
}

type discountRequest struct {
	Code string `json:"code"`
}

type httpClient struct {
	baseURL      string
	cartIDHeader string
	client       *http.Client
}

// NewClient builds a Client against the given base URL, e.g.
// "https://admin.mydivix.com/api/v1". Outbound requests are traced through
// the otelhttp transport.
func NewClient(baseURL, cartIDHeader string, timeout time.Duration) Client {
	return &httpClient{
		baseURL:      baseURL,
		cartIDHeader: cartIDHeader,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *httpClient) FetchCart(ctx context.Context, cartID string) (*Cart, error) {

	env, err := c.call(ctx, http.MethodGet, "/cart", cartID, "", nil)
	if err != nil {
		return nil, err
	}

	var result cartResult
	if len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, &result); err != nil {
			return nil, errors.ServerLogicError("Malformed cart payload").WithError(err)
		}
	}

	cart := &Cart{
		ID: result.ID,
		Summary: models.CartSummary{
			FinalPrice:         result.FinalPrice,
			TotalDiscount:      result.TotalDiscount,
			ShippingCost:       result.ShippingCost,
			ShippingCostAmount: result.ShippingCostAmount,
			Weight:             result.Weight,
		},
	}

	for _, line := range result.Products {
		cart.Lines = append(cart.Lines, models.CartLine{
			ProductID:     line.ProductID,
			PriceID:       line.PriceID,
			Title:         line.Title,
			Image:         line.Image,
			Quantity:      line.Quantity,
			UnitPrice:     line.Price,
			RegularPrice:  line.RegularPrice,
			DiscountPrice: line.DiscountPrice,
			Attributes:    line.Attributes,
			CartMax:       line.CartMax,
			CartMin:       line.CartMin,
		})
	}

	return cart, nil
}

// AddItem adds one unit of the price variant, or creates the line when it
// is not in the cart yet. The upstream contract is one unit per call.
func (c *httpClient) AddItem(ctx context.Context, cartID, priceID string) (*MutationResult, error) {
	return c.mutate(ctx, http.MethodPost, "/cart", cartID, mutationRequest{PriceID: priceID, Quantity: 1})
}

// DecreaseItem removes one unit of the price variant. The upstream has no
// bulk decrement; quantity is always 1 per call.
func (c *httpClient) DecreaseItem(ctx context.Context, cartID, priceID string) (*MutationResult, error) {
	return c.mutate(ctx, http.MethodPost, "/cart/decrease", cartID, mutationRequest{PriceID: priceID, Quantity: 1})
}

func (c *httpClient) RemoveItem(ctx context.Context, cartID, priceID string) (*MutationResult, error) {

	env, err := c.call(ctx, http.MethodDelete, "/cart/"+priceID, cartID, "", nil)
	if err != nil {
		return nil, err
	}

	return mutationResultFrom(env), nil
}

func (c *httpClient) ApplyDiscount(ctx context.Context, cartID, code, bearerToken string) (*MutationResult, error) {

	env, err := c.call(ctx, http.MethodPost, "/cart/discount", cartID, bearerToken, discountRequest{Code: code})
	if err != nil {
		return nil, err
	}

	return mutationResultFrom(env), nil
}

func (c *httpClient) RemoveDiscount(ctx context.Context, cartID string) (*MutationResult, error) {

	env, err := c.call(ctx, http.MethodDelete, "/cart/discount", cartID, "", nil)
	if err != nil {
		return nil, err
	}

	return mutationResultFrom(env), nil
}

func (c *httpClient) mutate(ctx context.Context, method, path, cartID string, body any) (*MutationResult, error) {

	env, err := c.call(ctx, method, path, cartID, "", body)
	if err != nil {
		return nil, err
	}

	return mutationResultFrom(env), nil
}

func mutationResultFrom(env *envelope) *MutationResult {

	result := &MutationResult{Message: env.Message}

	if len(env.Result) > 0 {
		var partial struct {
			ID string `json:"id"`
		}

		// ignore non-object results, only the id matters here
		if err := json.Unmarshal(env.Result, &partial); err == nil {
			result.ID = partial.ID
		}
	}

	return result
}

func (c *httpClient) call(ctx context.Context, method, path, cartID, bearerToken string, body any) (*envelope, error) {

	var reqBody io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.InternalError("Failed to encode request").WithError(err)
		}

		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, errors.InternalError("Failed to build request").WithError(err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if cartID != "" {
		req.Header.Set(c.cartIDHeader, cartID)
	}

	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NetworkError("Cart service is unreachable").WithError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NetworkError("Failed to read cart service response").WithError(err)
	}

	var env envelope
	if len(respBody) > 0 {
		// tolerate an empty body, some DELETE answers carry none
		if err := json.Unmarshal(respBody, &env); err != nil {
			return nil, errors.ServerLogicError("Malformed cart service response").WithError(err)
		}
	}

	// 422 carries its own meaning: the requested quantity exceeds the
	// available stock. It must not fall into the generic error path.
	if resp.StatusCode == http.StatusUnprocessableEntity {

		message := env.Message
		if message == "" {
			message = "Requested quantity exceeds available stock"
		}

		return nil, errors.StockExhaustedError(message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NetworkError(fmt.Sprintf("Cart service returned status %d", resp.StatusCode)).
			WithDetail(env.Message)
	}

	if !env.Success {

		message := env.Message
		if message == "" {
			message = "Cart service rejected the request"
		}

		return nil, errors.ServerLogicError(message)
	}

	return &env, nil
}
