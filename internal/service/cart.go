package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"quickbite/internal/api"
	"quickbite/internal/model"
)

// CartEngine mediates between user actions and the server cart. There is no
// purely optimistic cart state: every mutation round-trips and ends with a
// full refresh, so the snapshot always reflects server truth.
type CartEngine struct {
	client *api.Client

	mu   sync.Mutex
	busy bool // the single in-flight gate
	cart model.Cart
}

func NewCartEngine(client *api.Client) *CartEngine {
	return &CartEngine{client: client}
}

// acquire flips the in-flight gate: a second tap while a mutation is
// round-tripping gets ErrMutationInFlight instead of racing the first.
func (e *CartEngine) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return ErrMutationInFlight
	}
	e.busy = true
	return nil
}

func (e *CartEngine) release() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

// Cart returns the last server snapshot.
func (e *CartEngine) Cart() model.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.cart
	c.Items = append([]model.CartItem(nil), e.cart.Items...)
	return c
}

// Refresh re-reads the server cart and replaces the snapshot wholesale.
// Read-only and idempotent, so it may overlap a mutation's own refresh
// without write-after-write hazards.
func (e *CartEngine) Refresh(ctx context.Context) error {
	cart, err := e.client.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("refresh cart: %w", err)
	}
	e.mu.Lock()
	e.cart = *cart
	e.mu.Unlock()
	return nil
}

// AddItem adds quantity of a menu item, merging into an existing line. A
// non-empty cart bound to a different restaurant yields a
// CrossRestaurantConflictError and leaves the cart untouched; resolution is
// the caller's explicit choice.
func (e *CartEngine) AddItem(ctx context.Context, item model.MenuItem, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	cart := e.Cart()
	if !cart.Empty() && cart.RestaurantID != item.RestaurantID {
		return &CrossRestaurantConflictError{
			CartRestaurantID:   cart.RestaurantID,
			CartRestaurantName: cart.RestaurantName,
			Pending:            item,
			PendingQuantity:    quantity,
		}
	}

	var err error
	if line, ok := cart.FindByMenuItem(item.ID); ok {
		err = e.client.UpdateCartItem(ctx, line.ID, line.Quantity+quantity)
	} else {
		err = e.client.AddCartItem(ctx, item.ID, quantity)
	}
	if err != nil {
		// the server enforces the invariant too; map its refusal the same way
		if conflict := asServerConflict(err, cart, item, quantity); conflict != nil {
			return conflict
		}
		return fmt.Errorf("add item: %w", err)
	}

	return e.Refresh(ctx)
}

// ResolveConflictByClearing is the confirmed recovery from a cross-restaurant
// conflict: clear everything, then add the pending item as a fresh cart. The
// gate is held across both steps so no other mutation can see the
// intermediate empty cart.
func (e *CartEngine) ResolveConflictByClearing(ctx context.Context, pending model.MenuItem, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	if err := e.client.ClearCart(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if err := e.client.AddCartItem(ctx, pending.ID, quantity); err != nil {
		return fmt.Errorf("add pending item: %w", err)
	}
	return e.Refresh(ctx)
}

// UpdateQuantity sets a line's quantity directly (not a delta). A quantity
// of zero or less is equivalent to removal.
func (e *CartEngine) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	var err error
	if quantity <= 0 {
		err = e.client.RemoveCartItem(ctx, cartItemID)
	} else {
		err = e.client.UpdateCartItem(ctx, cartItemID, quantity)
	}
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	return e.Refresh(ctx)
}

// RemoveItem deletes a line; removing the last line releases the
// restaurant binding.
func (e *CartEngine) RemoveItem(ctx context.Context, cartItemID string) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	if err := e.client.RemoveCartItem(ctx, cartItemID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return e.Refresh(ctx)
}

func (e *CartEngine) Clear(ctx context.Context) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.release()

	if err := e.client.ClearCart(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return e.Refresh(ctx)
}

// Checkout verifies the delivery address city against the cart's restaurant
// city (case-insensitive, trimmed) and places the order. The check is a
// client-side convenience; the server may still reject.
func (e *CartEngine) Checkout(ctx context.Context, address model.Address) (*model.Order, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	cart := e.Cart()
	if cart.Empty() {
		return nil, &ValidationError{Field: "cart", Reason: "cart is empty"}
	}
	if !CityMatches(address.City, cart.RestaurantCity) {
		return nil, &ValidationError{
			Field: "delivery_address",
			Reason: fmt.Sprintf("the restaurant is in %s but the selected address is in %s; choose an address in %s",
				strings.TrimSpace(cart.RestaurantCity), strings.TrimSpace(address.City), strings.TrimSpace(cart.RestaurantCity)),
		}
	}

	order, err := e.client.CreateOrder(ctx, address.ID)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err := e.Refresh(ctx); err != nil {
		return order, err
	}
	return order, nil
}

// CityMatches compares cities case-insensitively with surrounding
// whitespace ignored.
func CityMatches(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// asServerConflict recognizes the backend's single-restaurant refusal. The
// original client probed the message text; the status code check narrows it.
func asServerConflict(err error, cart model.Cart, pending model.MenuItem, quantity int) *CrossRestaurantConflictError {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}
	if apiErr.Status != http.StatusConflict || !strings.Contains(apiErr.Message, "another restaurant") {
		return nil
	}
	return &CrossRestaurantConflictError{
		CartRestaurantID:   cart.RestaurantID,
		CartRestaurantName: cart.RestaurantName,
		Pending:            pending,
		PendingQuantity:    quantity,
	}
}
