package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// happyPath orders the non-cancelled statuses; an observed status sequence
// must be non-decreasing along this index or end at cancelled.
var happyPath = map[Status]int{
	StatusPending:        0,
	StatusConfirmed:      1,
	StatusPreparing:      2,
	StatusReady:          3,
	StatusOutForDelivery: 4,
	StatusDelivered:      5,
}

func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := happyPath[s]
	return ok
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Rank returns the happy-path index of s. Cancelled has no rank.
func (s Status) Rank() (int, bool) {
	r, ok := happyPath[s]
	return r, ok
}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusPreparing:
		return "Preparing"
	case StatusReady:
		return "Ready"
	case StatusOutForDelivery:
		return "Out for Delivery"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

type Role string

const (
	RoleCustomer        Role = "customer"
	RoleRestaurantOwner Role = "restaurant_owner"
	RoleRider           Role = "rider"
)

// advance lists the single forward step each role may take from a status.
// Customers never advance; they may only request cancellation, and the
// server decides eligibility.
var advance = map[Role]map[Status]Status{
	RoleRestaurantOwner: {
		StatusPending:   StatusConfirmed,
		StatusConfirmed: StatusPreparing,
		StatusPreparing: StatusReady,
	},
	RoleRider: {
		StatusReady:          StatusOutForDelivery,
		StatusOutForDelivery: StatusDelivered,
	},
}

// CanTransition reports whether role may move an order from one status to
// another. Skipping states and moving backward are never allowed.
func CanTransition(role Role, from, to Status) bool {
	next, ok := advance[role][from]
	return ok && next == to
}

// NextStatus returns the only status role may advance an order to from the
// given status, if any.
func NextStatus(role Role, from Status) (Status, bool) {
	next, ok := advance[role][from]
	return next, ok
}

type OrderItem struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID                 string          `json:"id"`
	Number             string          `json:"order_number"`
	Status             Status          `json:"status"`
	RestaurantID       string          `json:"restaurant_id"`
	RestaurantName     string          `json:"restaurant_name,omitempty"`
	CustomerID         string          `json:"customer_id"`
	CustomerName       string          `json:"customer_name,omitempty"`
	RiderID            string          `json:"rider_id,omitempty"`
	Items              []OrderItem     `json:"items"`
	DeliveryAddress    Address         `json:"delivery_address"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	DeliveryFee        decimal.Decimal `json:"delivery_fee"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	PaymentStatus      string          `json:"payment_status,omitempty"`
	EstimatedMinutes   int             `json:"estimated_delivery_time,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	DeliveredAt        *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
}
