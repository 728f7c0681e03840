package api

import (
	"context"
	"net/http"
	"net/url"

	"quickbite/internal/model"
)

type restaurantList struct {
	Restaurants []model.Restaurant `json:"restaurants"`
}

type menuList struct {
	Items []model.MenuItem `json:"items"`
}

type reviewList struct {
	Reviews []model.Review `json:"reviews"`
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// SearchRestaurants lists restaurants, optionally narrowed by city and a
// free-text query.
func (c *Client) SearchRestaurants(ctx context.Context, city, query string) ([]model.Restaurant, error) {
	q := url.Values{}
	if city != "" {
		q.Set("city", city)
	}
	if query != "" {
		q.Set("q", query)
	}
	var out restaurantList
	if err := c.do(ctx, http.MethodGet, "/restaurants", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Restaurants, nil
}

func (c *Client) GetRestaurant(ctx context.Context, id string) (*model.Restaurant, error) {
	var r model.Restaurant
	if err := c.do(ctx, http.MethodGet, "/restaurants/"+id, nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) GetMenu(ctx context.Context, restaurantID string) ([]model.MenuItem, error) {
	var out menuList
	if err := c.do(ctx, http.MethodGet, "/restaurants/"+restaurantID+"/menu", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// MyRestaurants lists restaurants owned by the authenticated owner.
func (c *Client) MyRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	var out restaurantList
	if err := c.do(ctx, http.MethodGet, "/restaurants/my-restaurants", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Restaurants, nil
}

func (c *Client) ListReviews(ctx context.Context, restaurantID string) ([]model.Review, error) {
	var out reviewList
	if err := c.do(ctx, http.MethodGet, "/restaurants/"+restaurantID+"/reviews", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Reviews, nil
}

func (c *Client) MyReview(ctx context.Context, restaurantID string) (*model.Review, error) {
	var r model.Review
	if err := c.do(ctx, http.MethodGet, "/restaurants/"+restaurantID+"/reviews/my", nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) CreateReview(ctx context.Context, restaurantID string, rating int, comment string) (*model.Review, error) {
	var r model.Review
	req := createReviewRequest{Rating: rating, Comment: comment}
	if err := c.do(ctx, http.MethodPost, "/restaurants/"+restaurantID+"/reviews", nil, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
