package api

import (
	"context"
	"net/http"

	"quickbite/internal/model"
)

type riderStatusRequest struct {
	Status           model.Status `json:"status"`
	EstimatedMinutes int          `json:"estimated_delivery_time,omitempty"`
}

func (c *Client) ListRiderOrders(ctx context.Context, f OrderFilters) ([]model.Order, error) {
	var out orderList
	if err := c.do(ctx, http.MethodGet, "/rider/orders", f.query(), nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// ListAvailableOrders returns ready, unassigned orders, for reference only;
// assignment itself is server-owned.
func (c *Client) ListAvailableOrders(ctx context.Context, limit, offset int) ([]model.Order, error) {
	var out orderList
	if err := c.do(ctx, http.MethodGet, "/rider/orders/available", pageQuery(limit, offset), nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// UpdateDeliveryStatus is the rider transition endpoint (out_for_delivery,
// delivered). estimatedMinutes is optional; zero omits it.
func (c *Client) UpdateDeliveryStatus(ctx context.Context, id string, status model.Status, estimatedMinutes int) (*model.Order, error) {
	var order model.Order
	req := riderStatusRequest{Status: status, EstimatedMinutes: estimatedMinutes}
	if err := c.do(ctx, http.MethodPut, "/rider/orders/"+id+"/status", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) RiderStats(ctx context.Context) (*model.RiderStats, error) {
	var stats model.RiderStats
	if err := c.do(ctx, http.MethodGet, "/rider/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
