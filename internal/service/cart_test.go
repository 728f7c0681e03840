package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickbite/internal/model"
)

func TestCartEngineAddAccumulates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	engine := NewCartEngine(e.clientFor(t, e.customer.ID))

	require.NoError(t, engine.AddItem(ctx, e.itemA, 1))
	require.NoError(t, engine.AddItem(ctx, e.itemA, 1))
	require.NoError(t, engine.AddItem(ctx, e.itemB, 3))

	cart := engine.Cart()
	assert.Equal(t, e.mumbai.ID, cart.RestaurantID)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 2, cart.Quantity(e.itemA.ID))
	assert.Equal(t, 3, cart.Quantity(e.itemB.ID))
	// 2*10 + 3*5
	assert.True(t, cart.Subtotal().Equal(decimal.NewFromInt(35)), "subtotal %s", cart.Subtotal())
}

func TestCartEngineCrossRestaurantConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	engine := NewCartEngine(e.clientFor(t, e.customer.ID))

	require.NoError(t, engine.AddItem(ctx, e.itemA, 2))

	err := engine.AddItem(ctx, e.itemC, 1)
	var conflict *CrossRestaurantConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, e.mumbai.ID, conflict.CartRestaurantID)
	assert.Equal(t, e.itemC.ID, conflict.Pending.ID)

	// the existing cart is untouched until resolution is explicit
	cart := engine.Cart()
	assert.Equal(t, e.mumbai.ID, cart.RestaurantID)
	assert.Equal(t, 2, cart.Quantity(e.itemA.ID))
	assert.Equal(t, 0, cart.Quantity(e.itemC.ID))

	require.NoError(t, engine.ResolveConflictByClearing(ctx, conflict.Pending, conflict.PendingQuantity))
	cart = engine.Cart()
	assert.Equal(t, e.pune.ID, cart.RestaurantID)
	assert.Equal(t, 1, cart.Quantity(e.itemC.ID))
	assert.Equal(t, 0, cart.Quantity(e.itemA.ID))
}

func TestCartEngineServerEnforcedConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	client := e.clientFor(t, e.customer.ID)

	// fill the cart through one engine, then use a fresh engine whose local
	// snapshot is empty: the conflict is caught server-side and mapped the
	// same way
	first := NewCartEngine(client)
	require.NoError(t, first.AddItem(ctx, e.itemA, 1))

	fresh := NewCartEngine(client)
	err := fresh.AddItem(ctx, e.itemC, 1)
	var conflict *CrossRestaurantConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, e.itemC.ID, conflict.Pending.ID)
}

func TestCartEngineUpdateQuantityZeroEqualsRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	viaUpdate := NewCartEngine(e.clientFor(t, e.customer.ID))
	require.NoError(t, viaUpdate.AddItem(ctx, e.itemA, 2))
	line, ok := viaUpdate.Cart().FindByMenuItem(e.itemA.ID)
	require.True(t, ok)
	require.NoError(t, viaUpdate.UpdateQuantity(ctx, line.ID, 0))
	afterUpdate := viaUpdate.Cart()

	viaRemove := NewCartEngine(e.clientFor(t, e.customer.ID))
	require.NoError(t, viaRemove.AddItem(ctx, e.itemA, 2))
	line, ok = viaRemove.Cart().FindByMenuItem(e.itemA.ID)
	require.True(t, ok)
	require.NoError(t, viaRemove.RemoveItem(ctx, line.ID))
	afterRemove := viaRemove.Cart()

	assert.True(t, afterUpdate.Empty())
	assert.True(t, afterRemove.Empty())
	assert.Equal(t, afterUpdate.RestaurantID, afterRemove.RestaurantID)
	assert.Empty(t, afterUpdate.RestaurantID, "binding should be released")
}

func TestCartEngineQuantityScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	engine := NewCartEngine(e.clientFor(t, e.customer.ID))

	require.NoError(t, engine.AddItem(ctx, e.itemA, 2))
	cart := engine.Cart()
	assert.True(t, cart.Subtotal().Equal(decimal.NewFromInt(20)))

	line, ok := cart.FindByMenuItem(e.itemA.ID)
	require.True(t, ok)
	require.NoError(t, engine.UpdateQuantity(ctx, line.ID, 3))
	assert.True(t, engine.Cart().Subtotal().Equal(decimal.NewFromInt(30)))

	require.NoError(t, engine.RemoveItem(ctx, line.ID))
	cart = engine.Cart()
	assert.True(t, cart.Empty())
	assert.Empty(t, cart.RestaurantID)
}

func TestCartEngineCheckoutCityCheck(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	engine := NewCartEngine(e.clientFor(t, e.customer.ID))
	require.NoError(t, engine.AddItem(ctx, e.itemA, 2))

	puneAddr := e.srv.SeedAddress(e.customer.ID, model.Address{
		AddressLine: "1 FC Road", City: "Pune",
	})
	_, err := engine.Checkout(ctx, puneAddr)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "delivery_address", verr.Field)
	assert.Contains(t, verr.Reason, "Mumbai")
	assert.Contains(t, verr.Reason, "Pune")

	// trailing space and different case still match
	sloppy := e.srv.SeedAddress(e.customer.ID, model.Address{
		AddressLine: "2 Hill Road", City: "mumbai ",
	})
	order, err := engine.Checkout(ctx, sloppy)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(20)))
	assert.True(t, order.DeliveryFee.Equal(decimal.NewFromInt(30)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(50)))

	assert.True(t, engine.Cart().Empty(), "cart should be consumed by checkout")
}

func TestCartEngineCheckoutEmptyCart(t *testing.T) {
	e := newEnv(t)
	engine := NewCartEngine(e.clientFor(t, e.customer.ID))
	_, err := engine.Checkout(context.Background(), e.homeAddr)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cart", verr.Field)
}

func TestCartEngineMutationGate(t *testing.T) {
	e := newEnv(t)
	engine := NewCartEngine(e.clientFor(t, e.customer.ID))

	// simulate a mutation already in flight
	require.NoError(t, engine.acquire())
	err := engine.AddItem(context.Background(), e.itemA, 1)
	assert.ErrorIs(t, err, ErrMutationInFlight)
	err = engine.Clear(context.Background())
	assert.ErrorIs(t, err, ErrMutationInFlight)
	engine.release()

	require.NoError(t, engine.AddItem(context.Background(), e.itemA, 1))
}

func TestCartEngineRapidFire(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	engine := NewCartEngine(e.clientFor(t, e.customer.ID))

	// simulated rapid double-submission: every call either lands or is
	// rejected by the gate, and the final cart matches the landed count
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- engine.AddItem(ctx, e.itemA, 1) }()
	}
	landed := 0
	for i := 0; i < 8; i++ {
		err := <-done
		if err == nil {
			landed++
			continue
		}
		assert.ErrorIs(t, err, ErrMutationInFlight)
	}
	require.GreaterOrEqual(t, landed, 1)
	require.NoError(t, engine.Refresh(ctx))
	assert.Equal(t, landed, engine.Cart().Quantity(e.itemA.ID))
}

func TestCityMatches(t *testing.T) {
	assert.True(t, CityMatches("Mumbai", "mumbai "))
	assert.True(t, CityMatches(" MUMBAI", "Mumbai"))
	assert.False(t, CityMatches("Mumbai", "Pune"))
}

func TestCrossRestaurantConflictErrorMessage(t *testing.T) {
	err := &CrossRestaurantConflictError{CartRestaurantName: "Spice Route"}
	assert.True(t, errors.As(error(err), new(*CrossRestaurantConflictError)))
	assert.Contains(t, err.Error(), "Spice Route")
}
