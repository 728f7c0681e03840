package service

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"quickbite/internal/api"
	"quickbite/internal/fakeapi"
	"quickbite/internal/model"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

// env is a full backend fixture: one owner with restaurants in two cities,
// a customer with a saved address, and a rider.
type env struct {
	srv *fakeapi.Server
	ts  *httptest.Server

	owner    model.User
	customer model.User
	rider    model.User

	mumbai model.Restaurant
	itemA  model.MenuItem
	itemB  model.MenuItem

	pune  model.Restaurant
	itemC model.MenuItem

	homeAddr model.Address
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := fakeapi.NewServer()
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	e := &env{srv: srv, ts: ts}
	e.owner = srv.SeedUser("Asha", "owner@example.com", "pw", model.RoleRestaurantOwner)
	e.customer = srv.SeedUser("Ravi", "customer@example.com", "pw", model.RoleCustomer)
	e.rider = srv.SeedUser("Dev", "rider@example.com", "pw", model.RoleRider)

	e.mumbai = srv.SeedRestaurant(e.owner.ID, "Spice Route", "Mumbai", decimal.NewFromInt(30))
	e.itemA = srv.SeedMenuItem(e.mumbai.ID, "Item A", decimal.NewFromInt(10))
	e.itemB = srv.SeedMenuItem(e.mumbai.ID, "Item B", decimal.NewFromInt(5))

	e.pune = srv.SeedRestaurant(e.owner.ID, "Pune Bites", "Pune", decimal.NewFromInt(20))
	e.itemC = srv.SeedMenuItem(e.pune.ID, "Item C", decimal.NewFromInt(15))

	e.homeAddr = srv.SeedAddress(e.customer.ID, model.Address{
		Label:       "Home",
		AddressLine: "14 Marine Drive",
		City:        "Mumbai",
		IsDefault:   true,
	})
	return e
}

func (e *env) clientFor(t *testing.T, userID string) *api.Client {
	t.Helper()
	tok, err := e.srv.TokenFor(userID)
	require.NoError(t, err)
	return api.New(e.ts.URL+"/api", 5*time.Second, staticToken(tok))
}
