package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quickbite/internal/model"
	"quickbite/internal/realtime"
)

type createOrderRequest struct {
	AddressID string `json:"address_id"`
}

type cancelOrderRequest struct {
	Reason string `json:"cancellation_reason"`
}

type statusRequest struct {
	Status           model.Status `json:"status"`
	EstimatedMinutes int          `json:"estimated_delivery_time"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	cart := s.carts[userID]
	if cart == nil || len(cart.Items) == 0 {
		s.mu.Unlock()
		writeErr(w, http.StatusBadRequest, "cart is empty")
		return
	}

	var addr *model.Address
	for _, a := range s.addresses[userID] {
		if a.ID == req.AddressID {
			addr = &a
			break
		}
	}
	if addr == nil {
		s.mu.Unlock()
		writeErr(w, http.StatusBadRequest, "delivery address not found")
		return
	}

	rest := s.restaurants[cart.RestaurantID]
	customer := s.users[userID]

	subtotal := decimal.Zero
	items := make([]model.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		line := ci.Subtotal()
		subtotal = subtotal.Add(line)
		items = append(items, model.OrderItem{
			ID:         uuid.NewString(),
			MenuItemID: ci.MenuItemID,
			Name:       ci.Name,
			Quantity:   ci.Quantity,
			UnitPrice:  ci.UnitPrice,
			Subtotal:   line,
		})
	}

	s.orderSeq++
	order := &model.Order{
		ID:              uuid.NewString(),
		Number:          fmt.Sprintf("ORD-%04d", s.orderSeq),
		Status:          model.StatusPending,
		RestaurantID:    rest.ID,
		RestaurantName:  rest.Name,
		CustomerID:      userID,
		CustomerName:    customer.user.Name,
		Items:           items,
		DeliveryAddress: *addr,
		Subtotal:        subtotal,
		DeliveryFee:     rest.DeliveryFee,
		TotalAmount:     subtotal.Add(rest.DeliveryFee),
		PaymentStatus:   "pending",
		CreatedAt:       time.Now().UTC(),
	}
	s.orders[order.ID] = order
	delete(s.carts, userID)
	o := *order
	ownerID := rest.OwnerID
	s.mu.Unlock()

	s.notify(ownerID, model.Notification{
		Type:         model.NotificationNewOrder,
		Title:        "New Order Received",
		Message:      fmt.Sprintf("You have received a new order #%s", o.Number),
		OrderID:      o.ID,
		OrderNumber:  o.Number,
		RestaurantID: o.RestaurantID,
		CustomerName: o.CustomerName,
		TotalAmount:  o.TotalAmount,
	})
	s.publish(ownerID, realtime.Event{
		Type:           realtime.EventNewOrder,
		OrderID:        o.ID,
		OrderNumber:    o.Number,
		RestaurantID:   o.RestaurantID,
		RestaurantName: o.RestaurantName,
		CustomerName:   o.CustomerName,
		TotalAmount:    o.TotalAmount,
	})

	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	s.listOrders(w, r, func(o *model.Order) bool { return o.CustomerID == userID })
}

func (s *Server) handleRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	restaurantID := r.URL.Query().Get("restaurant_id")
	s.listOrders(w, r, func(o *model.Order) bool {
		rest, ok := s.restaurants[o.RestaurantID]
		if !ok || rest.OwnerID != userID {
			return false
		}
		return restaurantID == "" || o.RestaurantID == restaurantID
	})
}

func (s *Server) handleRiderOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	s.listOrders(w, r, func(o *model.Order) bool { return o.RiderID == userID })
}

func (s *Server) handleAvailableOrders(w http.ResponseWriter, r *http.Request) {
	s.listOrders(w, r, func(o *model.Order) bool {
		return o.Status == model.StatusReady && o.RiderID == ""
	})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request, match func(*model.Order) bool) {
	status := model.Status(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	s.mu.Lock()
	var out []model.Order
	for _, o := range s.orders {
		if !match(o) {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, *o)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > 0 {
		if offset > len(out) {
			offset = len(out)
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	if out == nil {
		out = []model.Order{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.Order{"orders": out})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	order, ok := s.orders[id]
	var o model.Order
	if ok {
		o = *order
	}
	s.mu.Unlock()
	if !ok {
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	id := chi.URLParam(r, "id")

	var req cancelOrderRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	order, ok := s.orders[id]
	if !ok || order.CustomerID != userID {
		s.mu.Unlock()
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	// server-side eligibility: once the kitchen is working the order can no
	// longer be cancelled
	if order.Status != model.StatusPending && order.Status != model.StatusConfirmed {
		s.mu.Unlock()
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("order in status %s can no longer be cancelled", order.Status))
		return
	}
	now := time.Now().UTC()
	order.Status = model.StatusCancelled
	order.CancelledAt = &now
	order.CancellationReason = req.Reason
	o := *order
	ownerID := s.restaurants[o.RestaurantID].OwnerID
	s.mu.Unlock()

	s.broadcastStatus(o, ownerID)
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleOwnerStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	order, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	rest := s.restaurants[order.RestaurantID]
	if rest.OwnerID != userID {
		s.mu.Unlock()
		writeErr(w, http.StatusForbidden, "not your restaurant's order")
		return
	}
	if !model.CanTransition(model.RoleRestaurantOwner, order.Status, req.Status) {
		from := order.Status
		s.mu.Unlock()
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("cannot move order from %s to %s", from, req.Status))
		return
	}
	order.Status = req.Status
	o := *order
	ownerID := rest.OwnerID
	s.mu.Unlock()

	s.broadcastStatus(o, ownerID)
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleRiderStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	order, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	if order.RiderID != userID {
		s.mu.Unlock()
		writeErr(w, http.StatusForbidden, "order is not assigned to you")
		return
	}
	if !model.CanTransition(model.RoleRider, order.Status, req.Status) {
		from := order.Status
		s.mu.Unlock()
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("cannot move order from %s to %s", from, req.Status))
		return
	}
	order.Status = req.Status
	if req.EstimatedMinutes > 0 {
		order.EstimatedMinutes = req.EstimatedMinutes
	}
	if req.Status == model.StatusDelivered {
		now := time.Now().UTC()
		order.DeliveredAt = &now
	}
	o := *order
	ownerID := s.restaurants[o.RestaurantID].OwnerID
	s.mu.Unlock()

	s.broadcastStatus(o, ownerID)
	writeJSON(w, http.StatusOK, o)
}

// broadcastStatus pushes an order_update to customer and owner, and
// persists a status notification for the customer.
func (s *Server) broadcastStatus(o model.Order, ownerID string) {
	s.notify(o.CustomerID, model.Notification{
		Type:         model.NotificationStatusUpdate,
		Title:        "Order Update",
		Message:      fmt.Sprintf("Order #%s is now %s", o.Number, o.Status.Label()),
		OrderID:      o.ID,
		OrderNumber:  o.Number,
		RestaurantID: o.RestaurantID,
		TotalAmount:  o.TotalAmount,
	})

	ev := realtime.Event{
		Type:           realtime.EventOrderUpdate,
		OrderID:        o.ID,
		OrderNumber:    o.Number,
		RestaurantID:   o.RestaurantID,
		RestaurantName: o.RestaurantName,
		CustomerName:   o.CustomerName,
		Status:         o.Status,
		TotalAmount:    o.TotalAmount,
	}
	s.publish(o.CustomerID, ev)
	s.publish(ownerID, ev)
	if o.RiderID != "" {
		s.publish(o.RiderID, ev)
	}
}

func (s *Server) handleRiderStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	s.mu.Lock()
	stats := model.RiderStats{Earnings: decimal.Zero}
	for _, o := range s.orders {
		if o.RiderID != userID {
			continue
		}
		switch o.Status {
		case model.StatusDelivered:
			stats.Delivered++
			stats.Earnings = stats.Earnings.Add(o.DeliveryFee)
		case model.StatusOutForDelivery:
			stats.InProgress++
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}
