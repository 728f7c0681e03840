package api

import (
	"context"
	"net/http"

	"quickbite/internal/model"
)

type addressList struct {
	Addresses []model.Address `json:"addresses"`
}

func (c *Client) ListAddresses(ctx context.Context) ([]model.Address, error) {
	var out addressList
	if err := c.do(ctx, http.MethodGet, "/addresses", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

func (c *Client) CreateAddress(ctx context.Context, addr model.Address) (*model.Address, error) {
	var created model.Address
	if err := c.do(ctx, http.MethodPost, "/addresses", nil, addr, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateAddress(ctx context.Context, addr model.Address) (*model.Address, error) {
	var updated model.Address
	if err := c.do(ctx, http.MethodPut, "/addresses/"+addr.ID, nil, addr, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/addresses/"+id, nil, nil, nil)
}

func (c *Client) SetDefaultAddress(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/addresses/"+id+"/default", nil, nil, nil)
}
