package api

import (
	"context"
	"net/http"

	"quickbite/internal/model"
)

type addCartItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context) (*model.Cart, error) {
	var cart model.Cart
	if err := c.do(ctx, http.MethodGet, "/cart", nil, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddCartItem(ctx context.Context, menuItemID string, quantity int) error {
	req := addCartItemRequest{MenuItemID: menuItemID, Quantity: quantity}
	return c.do(ctx, http.MethodPost, "/cart/items", nil, req, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, cartItemID string, quantity int) error {
	req := updateCartItemRequest{Quantity: quantity}
	return c.do(ctx, http.MethodPut, "/cart/items/"+cartItemID, nil, req, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, cartItemID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/items/"+cartItemID, nil, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, nil, nil)
}
