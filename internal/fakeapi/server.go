// Package fakeapi is an in-memory implementation of the ordering backend's
// REST and push contract. It backs the package tests and cmd/mockapi; it is
// a fixture, not a production server.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"quickbite/internal/model"
	"quickbite/internal/realtime"
)

type userRecord struct {
	user         model.User
	passwordHash []byte
}

type Server struct {
	secret   []byte
	upgrader websocket.Upgrader

	mu            sync.Mutex
	users         map[string]*userRecord
	byEmail       map[string]string
	restaurants   map[string]model.Restaurant
	menu          map[string]model.MenuItem
	carts         map[string]*model.Cart
	orders        map[string]*model.Order
	addresses     map[string][]model.Address
	notifications map[string][]model.Notification
	reviews       map[string][]model.Review
	conns         map[string][]*websocket.Conn
	orderSeq      int
}

func NewServer() *Server {
	return &Server{
		secret:        []byte("fakeapi-test-secret"),
		upgrader:      websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		users:         make(map[string]*userRecord),
		byEmail:       make(map[string]string),
		restaurants:   make(map[string]model.Restaurant),
		menu:          make(map[string]model.MenuItem),
		carts:         make(map[string]*model.Cart),
		orders:        make(map[string]*model.Order),
		addresses:     make(map[string][]model.Address),
		notifications: make(map[string][]model.Notification),
		reviews:       make(map[string][]model.Review),
		conns:         make(map[string][]*websocket.Conn),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.HandleFunc("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/cart", s.handleGetCart)
			r.Post("/cart/items", s.handleAddCartItem)
			r.Put("/cart/items/{id}", s.handleUpdateCartItem)
			r.Delete("/cart/items/{id}", s.handleRemoveCartItem)
			r.Delete("/cart", s.handleClearCart)

			r.Post("/orders", s.handleCreateOrder)
			r.Get("/orders", s.handleListOrders)
			r.Get("/orders/restaurant/my-orders", s.handleRestaurantOrders)
			r.Get("/orders/{id}", s.handleGetOrder)
			r.Get("/orders/{id}/track", s.handleGetOrder)
			r.Put("/orders/{id}/cancel", s.handleCancelOrder)
			r.Put("/orders/{id}/status", s.handleOwnerStatus)

			r.Get("/rider/orders", s.handleRiderOrders)
			r.Get("/rider/orders/available", s.handleAvailableOrders)
			r.Put("/rider/orders/{id}/status", s.handleRiderStatus)
			r.Get("/rider/stats", s.handleRiderStats)

			r.Get("/notifications", s.handleListNotifications)
			r.Get("/notifications/unread-count", s.handleUnreadCount)
			r.Put("/notifications/read-all", s.handleMarkAllRead)
			r.Put("/notifications/{id}/read", s.handleMarkRead)

			r.Get("/addresses", s.handleListAddresses)
			r.Post("/addresses", s.handleCreateAddress)
			r.Put("/addresses/{id}/default", s.handleSetDefaultAddress)
			r.Put("/addresses/{id}", s.handleUpdateAddress)
			r.Delete("/addresses/{id}", s.handleDeleteAddress)

			r.Get("/restaurants", s.handleSearchRestaurants)
			r.Get("/restaurants/my-restaurants", s.handleMyRestaurants)
			r.Get("/restaurants/{id}", s.handleGetRestaurant)
			r.Get("/restaurants/{id}/menu", s.handleGetMenu)
			r.Get("/restaurants/{id}/reviews", s.handleListReviews)
			r.Get("/restaurants/{id}/reviews/my", s.handleMyReview)
			r.Post("/restaurants/{id}/reviews", s.handleCreateReview)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// Seed helpers for tests and the mock server binary.

func (s *Server) SeedUser(name, email, password string, role model.Role) model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	u := model.User{ID: uuid.NewString(), Name: name, Email: email, Role: role}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &userRecord{user: u, passwordHash: hash}
	s.byEmail[email] = u.ID
	return u
}

func (s *Server) SeedRestaurant(ownerID, name, city string, deliveryFee decimal.Decimal) model.Restaurant {
	r := model.Restaurant{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		City:        city,
		DeliveryFee: deliveryFee,
		IsOpen:      true,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants[r.ID] = r
	return r
}

func (s *Server) SeedMenuItem(restaurantID, name string, price decimal.Decimal) model.MenuItem {
	it := model.MenuItem{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		Available:    true,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menu[it.ID] = it
	return it
}

func (s *Server) SeedAddress(userID string, addr model.Address) model.Address {
	addr.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses[userID] = append(s.addresses[userID], addr)
	return addr
}

// AssignRider is the server-owned assignment event: it binds the order to a
// rider and emits the rider-facing notification and push event.
func (s *Server) AssignRider(orderID, riderID string) error {
	s.mu.Lock()
	order, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("order %s not found", orderID)
	}
	order.RiderID = riderID
	o := *order
	s.mu.Unlock()

	s.notify(riderID, model.Notification{
		Type:         model.NotificationOrderAssigned,
		Title:        "Order Assigned",
		Message:      fmt.Sprintf("Order #%s has been assigned to you", o.Number),
		OrderID:      o.ID,
		OrderNumber:  o.Number,
		RestaurantID: o.RestaurantID,
		CustomerName: o.CustomerName,
		TotalAmount:  o.TotalAmount,
	})
	s.publish(riderID, realtime.Event{
		Type:           realtime.EventOrderAssigned,
		OrderID:        o.ID,
		OrderNumber:    o.Number,
		RestaurantID:   o.RestaurantID,
		RestaurantName: o.RestaurantName,
		CustomerName:   o.CustomerName,
		TotalAmount:    o.TotalAmount,
	})
	return nil
}

func (s *Server) notify(userID string, n model.Notification) model.Notification {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	n.Origin = model.OriginServer
	s.mu.Lock()
	s.notifications[userID] = append([]model.Notification{n}, s.notifications[userID]...)
	s.mu.Unlock()
	return n
}

// SeedNotification persists a notification directly, bypassing the order
// flow; tests use it to stage history.
func (s *Server) SeedNotification(userID string, n model.Notification) model.Notification {
	return s.notify(userID, n)
}
