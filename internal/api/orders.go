package api

import (
	"context"
	"net/http"
	"net/url"

	"quickbite/internal/model"
)

// OrderFilters narrows order listings; zero values are omitted.
type OrderFilters struct {
	Status       model.Status
	RestaurantID string
	Limit        int
	Offset       int
}

type createOrderRequest struct {
	AddressID string `json:"address_id"`
}

type cancelOrderRequest struct {
	Reason string `json:"cancellation_reason"`
}

type updateStatusRequest struct {
	Status model.Status `json:"status"`
}

type orderList struct {
	Orders []model.Order `json:"orders"`
}

func (f OrderFilters) query() url.Values {
	q := pageQuery(f.Limit, f.Offset)
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.RestaurantID != "" {
		q.Set("restaurant_id", f.RestaurantID)
	}
	return q
}

// CreateOrder places an order from the current cart against the given
// delivery address. The server computes subtotal, fee and total.
func (c *Client) CreateOrder(ctx context.Context, addressID string) (*model.Order, error) {
	var order model.Order
	req := createOrderRequest{AddressID: addressID}
	if err := c.do(ctx, http.MethodPost, "/orders", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, f OrderFilters) ([]model.Order, error) {
	var out orderList
	if err := c.do(ctx, http.MethodGet, "/orders", f.query(), nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+id, nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder requests cancellation; eligibility by current status is the
// server's call, the client only surfaces the verdict.
func (c *Client) CancelOrder(ctx context.Context, id, reason string) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodPut, "/orders/"+id+"/cancel", nil, cancelOrderRequest{Reason: reason}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// TrackOrder returns the live view of a single order.
func (c *Client) TrackOrder(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+id+"/track", nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus is the restaurant-owner transition endpoint
// (confirmed, preparing, ready).
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status model.Status) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodPut, "/orders/"+id+"/status", nil, updateStatusRequest{Status: status}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListRestaurantOrders(ctx context.Context, f OrderFilters) ([]model.Order, error) {
	var out orderList
	if err := c.do(ctx, http.MethodGet, "/orders/restaurant/my-orders", f.query(), nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}
