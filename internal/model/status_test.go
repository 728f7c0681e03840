package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())

	for _, s := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusOutForDelivery} {
		assert.False(t, s.Terminal(), "status %s", s)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		role Role
		from Status
		to   Status
		want bool
	}{
		{"owner confirms", RoleRestaurantOwner, StatusPending, StatusConfirmed, true},
		{"owner starts preparing", RoleRestaurantOwner, StatusConfirmed, StatusPreparing, true},
		{"owner marks ready", RoleRestaurantOwner, StatusPreparing, StatusReady, true},
		{"owner cannot skip", RoleRestaurantOwner, StatusPending, StatusPreparing, false},
		{"owner cannot go backward", RoleRestaurantOwner, StatusPreparing, StatusConfirmed, false},
		{"owner cannot deliver", RoleRestaurantOwner, StatusReady, StatusOutForDelivery, false},
		{"rider picks up", RoleRider, StatusReady, StatusOutForDelivery, true},
		{"rider delivers", RoleRider, StatusOutForDelivery, StatusDelivered, true},
		{"rider cannot skip", RoleRider, StatusReady, StatusDelivered, false},
		{"rider cannot confirm", RoleRider, StatusPending, StatusConfirmed, false},
		{"customer never advances", RoleCustomer, StatusPending, StatusConfirmed, false},
		{"nothing leaves delivered", RoleRestaurantOwner, StatusDelivered, StatusPending, false},
		{"nothing leaves cancelled", RoleRider, StatusCancelled, StatusReady, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.role, tt.from, tt.to))
		})
	}
}

func TestNextStatus(t *testing.T) {
	next, ok := NextStatus(RoleRestaurantOwner, StatusPending)
	assert.True(t, ok)
	assert.Equal(t, StatusConfirmed, next)

	_, ok = NextStatus(RoleRestaurantOwner, StatusReady)
	assert.False(t, ok)

	next, ok = NextStatus(RoleRider, StatusOutForDelivery)
	assert.True(t, ok)
	assert.Equal(t, StatusDelivered, next)
}

func TestHappyPathRankIsMonotonic(t *testing.T) {
	order := []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusOutForDelivery, StatusDelivered}
	prev := -1
	for _, s := range order {
		rank, ok := s.Rank()
		assert.True(t, ok, "status %s", s)
		assert.Greater(t, rank, prev, "status %s", s)
		prev = rank
	}

	_, ok := StatusCancelled.Rank()
	assert.False(t, ok)
}

func TestAdvanceNeverMovesBackward(t *testing.T) {
	// every permitted transition strictly increases the happy-path rank
	for _, role := range []Role{RoleRestaurantOwner, RoleRider} {
		for _, from := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusOutForDelivery} {
			to, ok := NextStatus(role, from)
			if !ok {
				continue
			}
			fromRank, _ := from.Rank()
			toRank, _ := to.Rank()
			assert.Equal(t, fromRank+1, toRank, "%s: %s -> %s", role, from, to)
		}
	}
}
