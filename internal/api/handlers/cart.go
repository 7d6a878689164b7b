package handlers

import (
	"context"
	"net/http"

	"github.com/Erfan-programmer/divix-cart/internal/api/middleware"
	"github.com/Erfan-programmer/divix-cart/internal/cart"
	"github.com/Erfan-programmer/divix-cart/internal/errors"
	"github.com/Erfan-programmer/divix-cart/internal/models"
	"github.com/Erfan-programmer/divix-cart/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// Core is the seam every storefront view consumes: header badge, cart
// sidebar, cart page and product-detail widget all go through it.
type Core interface {
	Fetch(ctx context.Context, opts cart.FetchOptions) error
	Snapshot() models.CartSnapshot
	TotalItems() int
	ChangeQuantity(ctx context.Context, priceID string, newQuantity int) error
	AddToCart(ctx context.Context, priceID string, quantity int) error
	RemoveItem(ctx context.Context, priceID string) error
	ApplyDiscount(ctx context.Context, code, bearerToken string) error
	RemoveDiscount(ctx context.Context) error
}

// Locator resolves the shared core for a storefront session.
type Locator interface {
	ForSession(session string) Core
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(session string) Core

func (f LocatorFunc) ForSession(session string) Core {
	return f(session)
}

type CartHandler struct {
	locator   Locator
	validator *validator.Validate
}

func NewCartHandler(locator Locator) *CartHandler {
	return &CartHandler{
		locator:   locator,
		validator: validator.New(),
	}
}

// GetCart fetches the authoritative cart and returns the snapshot. When the
// upstream is down the stale snapshot is still returned, with last_error
// set, so the storefront keeps rendering what it had.
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		core := h.locator.ForSession(session)

		if err := core.Fetch(r.Context(), cart.FetchOptions{}); err != nil {
			logger := middleware.LoggerFromContext(r.Context())
			logger.Warn("Cart fetch failed, serving stale snapshot", "error", err.Error())
		}

		response.Success(w, http.StatusOK, core.Snapshot())

	}
}

// GetBadge serves the header badge count from the in-memory state without
// touching the upstream.
func (h *CartHandler) GetBadge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		core := h.locator.ForSession(session)

		response.Success(w, http.StatusOK, map[string]int{"total_items": core.TotalItems()})

	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			return
		}

		if !validateStruct(w, r, h.validator, req) {
			return
		}

		core := h.locator.ForSession(session)

		if err := core.AddToCart(r.Context(), req.PriceID, req.Quantity); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, core.Snapshot())

	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		var req models.UpdateQuantityRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			return
		}

		if !validateStruct(w, r, h.validator, req) {
			return
		}

		core := h.locator.ForSession(session)

		if err := core.ChangeQuantity(r.Context(), req.PriceID, *req.Quantity); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, core.Snapshot())

	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		priceID := r.PathValue("priceId")

		if priceID == "" {
			response.Error(w, errors.BadRequestError("Price id is required"))
			return
		}

		core := h.locator.ForSession(session)

		if err := core.RemoveItem(r.Context(), priceID); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, core.Snapshot())

	}
}

// ApplyDiscount requires the storefront user's bearer token; it is verified
// here and forwarded to the upstream as-is.
func (h *CartHandler) ApplyDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		token, ok := middleware.TokenFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.ApplyDiscountRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			return
		}

		if !validateStruct(w, r, h.validator, req) {
			return
		}

		core := h.locator.ForSession(session)

		if err := core.ApplyDiscount(r.Context(), req.Code, token); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, core.Snapshot())

	}
}

func (h *CartHandler) RemoveDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, ok := sessionFromRequest(w, r)
		if !ok {
			return
		}

		core := h.locator.ForSession(session)

		if err := core.RemoveDiscount(r.Context()); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, core.Snapshot())

	}
}
