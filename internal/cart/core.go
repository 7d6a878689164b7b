package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Erfan-programmer/divix-cart/internal/cache"
	"github.com/Erfan-programmer/divix-cart/internal/errors"
	"github.com/Erfan-programmer/divix-cart/internal/identity"
	"github.com/Erfan-programmer/divix-cart/internal/metrics"
	"github.com/Erfan-programmer/divix-cart/internal/models"
	"github.com/Erfan-programmer/divix-cart/internal/notify"
	"github.com/Erfan-programmer/divix-cart/pkg/divix"
	"golang.org/x/sync/singleflight"
)

// User-facing messages surfaced through the notifier. The storefront shows
// them verbatim as toasts.
const (
	msgQuantityAtMax    = "Quantity is at the maximum for this item"
	msgQuantityBelowMin = "Quantity cannot be below the minimum"
	msgItemRemoved      = "Item removed from cart"
	msgUpdateFailed     = "Cart update failed"
	msgFetchFailed      = "Failed to load cart"
	msgItemNotFound     = "Item not found in the cart"
)

// Core is the single source of truth for one storefront session's cart. It
// mediates every mutation against the upstream cart API and re-fetches the
// authoritative cart after each successful mutation, so the visible state
// never relies on local patching.
type Core struct {
	client    divix.Client
	identity  identity.Provider
	notifier  notify.Notifier
	snapshots cache.Cache // optional, keeps the last good snapshot
	session   string

	mu          sync.RWMutex
	lines       []models.CartLine
	summary     *models.CartSummary
	cartID      string
	isLoading   bool
	updating    map[string]bool
	lastError   string
	fetchedOnce bool

	fetchGroup singleflight.Group
	locks      *keyedLock

	subMu  sync.Mutex
	subs   map[int]chan models.CartSnapshot
	nextID int
}

// FetchOptions mirror the caller-side knobs of a cart fetch.
type FetchOptions struct {
	NotifyOnError bool
}

// NewCore wires a cart core for one session. snapshots may be nil; it only
// backs the stale-but-visible policy across restarts.
func NewCore(client divix.Client, provider identity.Provider, notifier notify.Notifier, snapshots cache.Cache, session string) *Core {
	return &Core{
		client:    client,
		identity:  provider,
		notifier:  notifier,
		snapshots: snapshots,
		session:   session,
		updating:  make(map[string]bool),
		locks:     newKeyedLock(),
		subs:      make(map[int]chan models.CartSnapshot),
	}
}

// Fetch loads the authoritative cart. Concurrent fetches for the same core
// collapse into one upstream call. On failure the existing lines stay
// visible and only lastError changes.
func (c *Core) Fetch(ctx context.Context, opts FetchOptions) error {

	c.mu.Lock()
	c.isLoading = true
	c.mu.Unlock()
	c.publish()

	_, err, _ := c.fetchGroup.Do("fetch", func() (interface{}, error) {
		return nil, c.doFetch(ctx)
	})

	c.mu.Lock()
	c.isLoading = false

	if err == nil {
		c.lastError = ""
		c.fetchedOnce = true
	} else {
		c.lastError = userMessage(err)
	}
	c.mu.Unlock()
	c.publish()

	if err != nil {
		metrics.ObserveCartOperation("fetch", outcome(err))

		if opts.NotifyOnError {
			c.notifier.Notify(ctx, notify.LevelError, msgFetchFailed)
		}

		return err
	}

	metrics.ObserveCartOperation("fetch", "success")

	return nil
}

func (c *Core) doFetch(ctx context.Context) error {

	// the id is read fresh per call, never cached in memory, so an id
	// written by another replica is picked up here
	cartID, err := c.identity.Get(ctx)
	if err != nil {
		return err
	}

	remote, err := c.client.FetchCart(ctx, cartID)
	if err != nil {
		c.restoreStaleSnapshot(ctx)
		return err
	}

	// adopt whatever id the server reports, even when it differs from the
	// stored one (overwrite policy, no merge)
	if remote.ID != "" && remote.ID != cartID {
		if err := c.identity.Set(ctx, remote.ID); err != nil {
			return err
		}
	}

	summary := remote.Summary

	c.mu.Lock()
	c.lines = remote.Lines
	c.summary = &summary
	c.cartID = remote.ID
	c.mu.Unlock()

	c.persistSnapshot(ctx)

	return nil
}

// ChangeQuantity moves one line to the requested quantity. Validation runs
// before any network call; zero deletes the line, otherwise a single-unit
// increase or decrease is issued and the cart is re-fetched.
func (c *Core) ChangeQuantity(ctx context.Context, priceID string, newQuantity int) error {

	release := c.locks.acquire(priceID)
	defer release()

	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}

	line, found := c.lineByPriceID(priceID)
	if !found {
		return errors.NotFoundError(msgItemNotFound)
	}

	if newQuantity < 0 {
		c.notifier.Notify(ctx, notify.LevelError, msgQuantityBelowMin)
		metrics.ObserveCartOperation("change_quantity", "validation_error")

		return errors.ValidationError(msgQuantityBelowMin)
	}

	if newQuantity > line.CartMax {
		c.notifier.Notify(ctx, notify.LevelError, msgQuantityAtMax)
		metrics.ObserveCartOperation("change_quantity", "validation_error")

		return errors.ValidationError(msgQuantityAtMax)
	}

	c.setUpdating(priceID, true)
	defer c.setUpdating(priceID, false)

	metrics.MutationStarted()
	defer metrics.MutationFinished()

	cartID, err := c.identity.Get(ctx)
	if err != nil {
		return err
	}

	var result *divix.MutationResult

	switch {
	case newQuantity == 0:
		result, err = c.client.RemoveItem(ctx, cartID, priceID)
	case newQuantity < line.Quantity:
		// the upstream only ever steps by one unit per call
		result, err = c.client.DecreaseItem(ctx, cartID, priceID)
	default:
		result, err = c.client.AddItem(ctx, cartID, priceID)
	}

	if err != nil {
		metrics.ObserveCartOperation("change_quantity", outcome(err))
		c.notifyMutationError(ctx, err)

		return err
	}

	if err := c.adoptCartID(ctx, cartID, result); err != nil {
		return err
	}

	if newQuantity == 0 {
		c.notifier.Notify(ctx, notify.LevelSuccess, msgItemRemoved)
	}

	metrics.ObserveCartOperation("change_quantity", "success")

	return c.Fetch(ctx, FetchOptions{})
}

// AddToCart puts one unit of the price variant into the cart. Quantity is
// validated but the upstream contract stays one unit per call.
func (c *Core) AddToCart(ctx context.Context, priceID string, quantity int) error {

	if quantity < 1 {
		c.notifier.Notify(ctx, notify.LevelError, msgQuantityBelowMin)
		metrics.ObserveCartOperation("add_to_cart", "validation_error")

		return errors.ValidationError(msgQuantityBelowMin)
	}

	release := c.locks.acquire(priceID)
	defer release()

	c.setUpdating(priceID, true)
	defer c.setUpdating(priceID, false)

	metrics.MutationStarted()
	defer metrics.MutationFinished()

	cartID, err := c.identity.Get(ctx)
	if err != nil {
		return err
	}

	result, err := c.client.AddItem(ctx, cartID, priceID)
	if err != nil {
		metrics.ObserveCartOperation("add_to_cart", outcome(err))
		c.notifyMutationError(ctx, err)

		return err
	}

	if err := c.adoptCartID(ctx, cartID, result); err != nil {
		return err
	}

	metrics.ObserveCartOperation("add_to_cart", "success")

	return c.Fetch(ctx, FetchOptions{})
}

// RemoveItem drops the line unconditionally and re-fetches.
func (c *Core) RemoveItem(ctx context.Context, priceID string) error {

	release := c.locks.acquire(priceID)
	defer release()

	c.setUpdating(priceID, true)
	defer c.setUpdating(priceID, false)

	metrics.MutationStarted()
	defer metrics.MutationFinished()

	cartID, err := c.identity.Get(ctx)
	if err != nil {
		return err
	}

	result, err := c.client.RemoveItem(ctx, cartID, priceID)
	if err != nil {
		metrics.ObserveCartOperation("remove_item", outcome(err))
		c.notifyMutationError(ctx, err)

		return err
	}

	if err := c.adoptCartID(ctx, cartID, result); err != nil {
		return err
	}

	c.notifier.Notify(ctx, notify.LevelSuccess, msgItemRemoved)
	metrics.ObserveCartOperation("remove_item", "success")

	return c.Fetch(ctx, FetchOptions{})
}

// ApplyDiscount forwards the storefront's bearer token upstream; the cart
// service validates the code.
func (c *Core) ApplyDiscount(ctx context.Context, code, bearerToken string) error {

	cartID, err := c.identity.Get(ctx)
	if err != nil {
		return err
	}

	result, err := c.client.ApplyDiscount(ctx, cartID, code, bearerToken)
	if err != nil {
		metrics.ObserveCartOperation("apply_discount", outcome(err))
		c.notifyMutationError(ctx, err)

		return err
	}

	if err := c.adoptCartID(ctx, cartID, result); err != nil {
		return err
	}

	if result.Message != "" {
		c.notifier.Notify(ctx, notify.LevelSuccess, result.Message)
	}

	metrics.ObserveCartOperation("apply_discount", "success")

	return c.Fetch(ctx, FetchOptions{})
}

func (c *Core) RemoveDiscount(ctx context.Context) error {

	cartID, err := c.identity.Get(ctx)
	if err != nil {
		return err
	}

	result, err := c.client.RemoveDiscount(ctx, cartID)
	if err != nil {
		metrics.ObserveCartOperation("remove_discount", outcome(err))
		c.notifyMutationError(ctx, err)

		return err
	}

	if err := c.adoptCartID(ctx, cartID, result); err != nil {
		return err
	}

	metrics.ObserveCartOperation("remove_discount", "success")

	return c.Fetch(ctx, FetchOptions{})
}

// TotalItems is always recomputed from the lines, never cached.
func (c *Core) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return totalItems(c.lines)
}

// Snapshot returns a consistent copy for view consumption; subscribers
// never see shared slices.
func (c *Core) Snapshot() models.CartSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshotLocked()
}

func (c *Core) snapshotLocked() models.CartSnapshot {

	snapshot := models.CartSnapshot{
		CartID:     c.cartID,
		Lines:      append([]models.CartLine(nil), c.lines...),
		TotalItems: totalItems(c.lines),
		IsLoading:  c.isLoading,
		LastError:  c.lastError,
	}

	if c.summary != nil {
		summary := *c.summary
		snapshot.Summary = &summary
	}

	for priceID := range c.updating {
		snapshot.Updating = append(snapshot.Updating, priceID)
	}

	return snapshot
}

// Subscribe registers a view. The channel receives a snapshot after every
// state change; a slow consumer misses intermediate states, never the last
// one published after it drains.
func (c *Core) Subscribe() (<-chan models.CartSnapshot, func()) {

	ch := make(chan models.CartSnapshot, 8)

	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()

		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}

	return ch, cancel
}

func (c *Core) publish() {

	c.mu.RLock()
	snapshot := c.snapshotLocked()
	c.mu.RUnlock()

	c.subMu.Lock()
	defer c.subMu.Unlock()

	for _, ch := range c.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// ensureLoaded guarantees the first mutation on a fresh core sees the
// server's lines, the service-side counterpart of the provider's
// fetch-on-mount.
func (c *Core) ensureLoaded(ctx context.Context) error {

	c.mu.RLock()
	loaded := c.fetchedOnce
	c.mu.RUnlock()

	if loaded {
		return nil
	}

	return c.Fetch(ctx, FetchOptions{})
}

func (c *Core) lineByPriceID(priceID string) (models.CartLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, line := range c.lines {
		if line.PriceID == priceID {
			return line, true
		}
	}

	return models.CartLine{}, false
}

func (c *Core) setUpdating(priceID string, updating bool) {
	c.mu.Lock()

	if updating {
		c.updating[priceID] = true
	} else {
		delete(c.updating, priceID)
	}
	c.mu.Unlock()

	c.publish()
}

// IsUpdating reports whether a mutation for the price id is in flight.
func (c *Core) IsUpdating(priceID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.updating[priceID]
}

func (c *Core) adoptCartID(ctx context.Context, knownID string, result *divix.MutationResult) error {

	if result == nil || result.ID == "" || result.ID == knownID {
		return nil
	}

	return c.identity.Set(ctx, result.ID)
}

func (c *Core) notifyMutationError(ctx context.Context, err error) {

	if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrCodeStockExhausted {
		c.notifier.Notify(ctx, notify.LevelError, appErr.Message)
		return
	}

	c.notifier.Notify(ctx, notify.LevelError, msgUpdateFailed)
}

func (c *Core) persistSnapshot(ctx context.Context) {

	if c.snapshots == nil {
		return
	}

	snapshot := c.Snapshot()

	if err := c.snapshots.Set(ctx, cache.Key(cache.SnapshotKeyPrefix, c.session), snapshot, 0); err != nil {
		slog.Warn("Failed to persist cart snapshot",
			slog.String("session", c.session),
			slog.String("error", err.Error()))
	}
}

// restoreStaleSnapshot backs the stale-but-visible policy when a fetch
// fails before this process ever held lines.
func (c *Core) restoreStaleSnapshot(ctx context.Context) {

	if c.snapshots == nil {
		return
	}

	c.mu.RLock()
	hasLines := len(c.lines) > 0 || c.fetchedOnce
	c.mu.RUnlock()

	if hasLines {
		return
	}

	var snapshot models.CartSnapshot

	found, err := c.snapshots.Get(ctx, cache.Key(cache.SnapshotKeyPrefix, c.session), &snapshot)
	if err != nil {
		slog.Warn("Failed to read persisted cart snapshot",
			slog.String("session", c.session),
			slog.String("error", err.Error()))

		return
	}

	if !found {
		return
	}

	c.mu.Lock()
	c.lines = snapshot.Lines
	c.summary = snapshot.Summary
	c.cartID = snapshot.CartID
	c.mu.Unlock()
}

func totalItems(lines []models.CartLine) int {

	var total int

	for _, line := range lines {
		total += line.Quantity
	}

	return total
}

func outcome(err error) string {

	appErr, ok := errors.IsAppError(err)
	if !ok {
		return "error"
	}

	switch appErr.Code {
	case errors.ErrCodeValidation:
		return "validation_error"
	case errors.ErrCodeStockExhausted:
		return "stock_exhausted"
	default:
		return "error"
	}
}

func userMessage(err error) string {

	if appErr, ok := errors.IsAppError(err); ok && appErr.Message != "" {
		return appErr.Message
	}

	return msgFetchFailed
}
