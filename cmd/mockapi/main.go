// mockapi serves the in-memory ordering backend for local development:
// seeded users, a restaurant with a small menu, and the push endpoint.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/shopspring/decimal"

	"quickbite/internal/fakeapi"
	"quickbite/internal/model"
)

func main() {
	addr := flag.String("a", "localhost:4000", "listen address")
	flag.Parse()

	srv := fakeapi.NewServer()

	owner := srv.SeedUser("Asha Patel", "owner@example.com", "password", model.RoleRestaurantOwner)
	customer := srv.SeedUser("Ravi Kumar", "customer@example.com", "password", model.RoleCustomer)
	srv.SeedUser("Dev Singh", "rider@example.com", "password", model.RoleRider)

	rest := srv.SeedRestaurant(owner.ID, "Spice Route", "Mumbai", decimal.NewFromInt(30))
	srv.SeedMenuItem(rest.ID, "Butter Chicken", decimal.NewFromInt(320))
	srv.SeedMenuItem(rest.ID, "Garlic Naan", decimal.NewFromInt(60))
	srv.SeedMenuItem(rest.ID, "Dal Makhani", decimal.NewFromInt(240))

	srv.SeedAddress(customer.ID, model.Address{
		Label:       "Home",
		AddressLine: "14 Marine Drive",
		City:        "Mumbai",
		IsDefault:   true,
	})

	slog.Info("mock API listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
