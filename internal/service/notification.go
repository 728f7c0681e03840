package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"quickbite/internal/api"
	"quickbite/internal/model"
	"quickbite/internal/realtime"
)

// Deduplicator guarantees at-most-once pop-up presentation per logical
// notification across reconnects, polling refreshes and socket delivery.
// Registry lifetime is the session; a restart resets it, and Initialize
// repopulates it from history so old notifications never pop up again.
type Deduplicator struct {
	mu          sync.Mutex
	seen        map[string]struct{}
	initialized bool
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Initialize registers every pre-existing notification as already shown.
// Called exactly once after the first successful fetch.
func (d *Deduplicator) Initialize(existing []model.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range existing {
		d.seen[n.DedupKey()] = struct{}{}
	}
	d.initialized = true
}

func (d *Deduplicator) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// Admit returns true and registers the notification only if it has not been
// seen; rejection has no side effects.
func (d *Deduplicator) Admit(n model.Notification) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := n.DedupKey()
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Center holds the notification list and the pop-up queue, feeding both
// from polling and from the push channel through one dedup registry.
type Center struct {
	client *api.Client
	dedup  *Deduplicator

	mu            sync.Mutex
	notifications []model.Notification
	popups        []model.Notification
	onPopup       func(model.Notification)
}

func NewCenter(client *api.Client) *Center {
	return &Center{client: client, dedup: NewDeduplicator()}
}

// OnPopup registers the callback invoked once per admitted notification.
func (c *Center) OnPopup(fn func(model.Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPopup = fn
}

// Refresh is a full re-fetch-and-replace of the notification list. The
// first successful refresh seeds the dedup registry and shows nothing;
// later refreshes pop up only unread notifications not yet surfaced.
func (c *Center) Refresh(ctx context.Context) error {
	list, err := c.client.ListNotifications(ctx, api.NotificationFilters{Limit: 50})
	if err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}

	if !c.dedup.Initialized() {
		c.dedup.Initialize(list)
		c.mu.Lock()
		c.notifications = list
		c.mu.Unlock()
		return nil
	}

	var fresh []model.Notification
	for _, n := range list {
		if n.Read {
			continue
		}
		if c.dedup.Admit(n) {
			fresh = append(fresh, n)
		}
	}

	c.mu.Lock()
	c.notifications = list
	c.popups = append(c.popups, fresh...)
	cb := c.onPopup
	c.mu.Unlock()

	if cb != nil {
		for _, n := range fresh {
			cb(n)
		}
	}
	return nil
}

// HandleEvent synthesizes a notification from a push event and admits it
// through the same registry as the poll path.
func (c *Center) HandleEvent(ev realtime.Event) {
	n := fromEvent(ev)
	if !c.dedup.Admit(n) {
		return
	}
	c.mu.Lock()
	c.popups = append(c.popups, n)
	cb := c.onPopup
	c.mu.Unlock()
	if cb != nil {
		cb(n)
	}
}

// Popups returns the queue of notifications awaiting display.
func (c *Center) Popups() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Notification, len(c.popups))
	copy(out, c.popups)
	return out
}

// Dismiss removes a notification from the pop-up queue. It stays in the
// dedup registry, so it can never pop up again.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.popups[:0]
	for _, n := range c.popups {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	c.popups = kept
}

// Notifications returns the last fetched list.
func (c *Center) Notifications() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

func (c *Center) UnreadCount(ctx context.Context) (int, error) {
	return c.client.UnreadNotificationCount(ctx)
}

func (c *Center) MarkRead(ctx context.Context, id string) error {
	if err := c.client.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications[i].Read = true
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *Center) MarkAllRead(ctx context.Context) error {
	if err := c.client.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	for i := range c.notifications {
		c.notifications[i].Read = true
	}
	c.mu.Unlock()
	return nil
}

// fromEvent builds a socket-originated notification. The visible ID is
// unique per delivery; dedup identity comes from DedupKey, which uses the
// stable (type, order id) pair for socket origin.
func fromEvent(ev realtime.Event) model.Notification {
	n := model.Notification{
		ID:           "socket_" + uuid.NewString(),
		OrderID:      ev.OrderID,
		OrderNumber:  ev.OrderNumber,
		RestaurantID: ev.RestaurantID,
		CustomerName: ev.CustomerName,
		TotalAmount:  ev.TotalAmount,
		Message:      ev.Message,
		CreatedAt:    time.Now().UTC(),
		Origin:       model.OriginSocket,
	}
	switch ev.Type {
	case realtime.EventNewOrder:
		n.Type = model.NotificationNewOrder
		n.Title = "New Order Received"
		if n.Message == "" {
			n.Message = fmt.Sprintf("You have received a new order #%s", ev.OrderNumber)
		}
	case realtime.EventOrderAssigned:
		n.Type = model.NotificationOrderAssigned
		n.Title = "Order Assigned"
		if n.Message == "" {
			n.Message = fmt.Sprintf("Order #%s has been assigned to you", ev.OrderNumber)
		}
	case realtime.EventOrderUpdate:
		n.Type = model.NotificationStatusUpdate
		n.Title = "Order Update"
		if n.Message == "" {
			n.Message = fmt.Sprintf("Order #%s is now %s", ev.OrderNumber, ev.Status.Label())
		}
	default:
		slog.Warn("unknown push event type", "type", ev.Type)
		n.Type = model.NotificationStatusUpdate
		n.Title = "Order Update"
	}
	return n
}
