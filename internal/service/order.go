package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"quickbite/internal/api"
	"quickbite/internal/model"
	"quickbite/internal/realtime"
)

// OrderSync keeps a local view of orders for one authenticated user and
// applies role-gated status transitions. Owner and rider advances are
// optimistic: the local status flips immediately and rolls back if the
// server refuses. Every refresh from poll or push is an idempotent
// overwrite keyed by order id, never an incremental patch.
type OrderSync struct {
	client *api.Client
	role   model.Role
	userID string

	mu     sync.Mutex
	orders map[string]model.Order
}

func NewOrderSync(client *api.Client, role model.Role, userID string) *OrderSync {
	return &OrderSync{
		client: client,
		role:   role,
		userID: userID,
		orders: make(map[string]model.Order),
	}
}

// Get returns the local view of an order.
func (s *OrderSync) Get(id string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o, ok
}

// Orders returns the local view of all tracked orders.
func (s *OrderSync) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out
}

// Apply overwrites the local view with server truth. Out-of-order arrival
// between poll and push is tolerated because the overwrite is idempotent.
func (s *OrderSync) Apply(o model.Order) {
	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()
}

// ReplaceAll swaps the whole tracked set for a fresh listing.
func (s *OrderSync) ReplaceAll(orders []model.Order) {
	next := make(map[string]model.Order, len(orders))
	for _, o := range orders {
		next[o.ID] = o
	}
	s.mu.Lock()
	s.orders = next
	s.mu.Unlock()
}

// CanAdvance reports whether the state machine lets this user move the
// order to the given status; it drives which actions the UI offers.
func (s *OrderSync) CanAdvance(o model.Order, to model.Status) bool {
	if o.Status.Terminal() {
		return false
	}
	if !model.CanTransition(s.role, o.Status, to) {
		return false
	}
	// rider transitions unlock only once the order is assigned to this rider
	if s.role == model.RoleRider && o.RiderID != s.userID {
		return false
	}
	return true
}

// Advance applies a role-gated transition with an optimistic local update.
// Local rejection returns before any network call; a server refusal rolls
// the optimistic change back and carries the server's reason.
func (s *OrderSync) Advance(ctx context.Context, orderID string, to model.Status) error {
	return s.advance(ctx, orderID, to, 0)
}

// AdvanceWithEstimate is Advance with the rider's estimated delivery time
// in minutes attached.
func (s *OrderSync) AdvanceWithEstimate(ctx context.Context, orderID string, to model.Status, estimatedMinutes int) error {
	return s.advance(ctx, orderID, to, estimatedMinutes)
}

func (s *OrderSync) advance(ctx context.Context, orderID string, to model.Status, estimatedMinutes int) error {
	s.mu.Lock()
	o, ok := s.orders[orderID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("order %s is not tracked", orderID)
	}

	if !s.CanAdvance(o, to) {
		return &TransitionRejectedError{
			OrderID: orderID,
			From:    o.Status,
			To:      to,
			Reason:  fmt.Sprintf("not permitted for role %s", s.role),
		}
	}

	prev := o.Status
	s.setStatus(orderID, to)

	var (
		updated *model.Order
		err     error
	)
	switch s.role {
	case model.RoleRider:
		updated, err = s.client.UpdateDeliveryStatus(ctx, orderID, to, estimatedMinutes)
	default:
		updated, err = s.client.UpdateOrderStatus(ctx, orderID, to)
	}
	if err != nil {
		s.setStatus(orderID, prev)
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return &TransitionRejectedError{OrderID: orderID, From: prev, To: to, Reason: apiErr.Message}
		}
		return fmt.Errorf("update status: %w", err)
	}

	s.Apply(*updated)
	return nil
}

// Cancel requests customer cancellation. No optimistic change: whether the
// current status is still cancellable is the server's decision, so the
// local view only moves on its verdict.
func (s *OrderSync) Cancel(ctx context.Context, orderID, reason string) error {
	updated, err := s.client.CancelOrder(ctx, orderID, reason)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("cancellation refused: %s", apiErr.Message)
		}
		return fmt.Errorf("cancel order: %w", err)
	}
	s.Apply(*updated)
	return nil
}

// HandleEvent folds a push event into the local view. The event is a
// trigger, not truth: the status hint is applied for responsiveness and the
// next poll reconciles with the full order. Push and poll arrive in no
// guaranteed order, so a hint only ever moves the status forward along the
// happy path (or to cancelled); a stale delivery is dropped.
func (s *OrderSync) HandleEvent(ev realtime.Event) {
	if ev.Type != realtime.EventOrderUpdate || ev.Status == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[ev.OrderID]
	if !ok {
		return
	}
	if o.Status.Terminal() {
		return
	}
	if ev.Status != model.StatusCancelled {
		cur, _ := o.Status.Rank()
		next, ok := ev.Status.Rank()
		if !ok || next <= cur {
			return
		}
	}
	o.Status = ev.Status
	s.orders[ev.OrderID] = o
}

func (s *OrderSync) setStatus(orderID string, status model.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return
	}
	o.Status = status
	s.orders[orderID] = o
}

// RefreshMine replaces the tracked set with the role's own listing:
// customer orders, restaurant orders, or rider assignments.
func (s *OrderSync) RefreshMine(ctx context.Context, f api.OrderFilters) error {
	var (
		orders []model.Order
		err    error
	)
	switch s.role {
	case model.RoleRestaurantOwner:
		orders, err = s.client.ListRestaurantOrders(ctx, f)
	case model.RoleRider:
		orders, err = s.client.ListRiderOrders(ctx, f)
	default:
		orders, err = s.client.ListOrders(ctx, f)
	}
	if err != nil {
		return fmt.Errorf("refresh orders: %w", err)
	}
	s.ReplaceAll(orders)
	return nil
}
