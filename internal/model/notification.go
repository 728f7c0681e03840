package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type NotificationType string

const (
	NotificationNewOrder      NotificationType = "new_order"
	NotificationOrderAssigned NotificationType = "order_assigned"
	NotificationStatusUpdate  NotificationType = "status_update"
)

// Origin tags where a notification came from. Server-persisted notifications
// carry a durable server id; socket-originated ones are synthesized locally
// and exist only for the current session.
type Origin string

const (
	OriginServer Origin = "server"
	OriginSocket Origin = "socket"
)

type Notification struct {
	ID           string           `json:"id"`
	Type         NotificationType `json:"type"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	OrderID      string           `json:"order_id"`
	OrderNumber  string           `json:"order_number,omitempty"`
	RestaurantID string           `json:"restaurant_id,omitempty"`
	CustomerName string           `json:"customer_name,omitempty"`
	TotalAmount  decimal.Decimal  `json:"total_amount,omitempty"`
	Read         bool             `json:"read"`
	CreatedAt    time.Time        `json:"created_at"`
	Origin       Origin           `json:"-"`
}

// DedupKey is the unified identity used by the dedup registry. Server
// notifications key on their durable id. Socket notifications key on the
// stable (type, order id) pair so a duplicate socket delivery of the same
// logical event dedups even though each delivery synthesizes a fresh ID.
//
// Known limitation, inherited from the original client: a socket key never
// matches the server id the same logical event gets when it is later fetched
// by polling, so cross-source dedup is best-effort only. The poll path is
// still suppressed in the common case because Initialize registers the
// server copy before it can pop up again.
func (n Notification) DedupKey() string {
	if n.Origin == OriginSocket {
		return fmt.Sprintf("socket:%s:%s", n.Type, n.OrderID)
	}
	return n.ID
}
