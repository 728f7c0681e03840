package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  Role   `json:"role"`
}

type Address struct {
	ID          string `json:"id"`
	Label       string `json:"label,omitempty"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"`
	ZipCode     string `json:"zip_code,omitempty"`
	IsDefault   bool   `json:"is_default"`
}

type Restaurant struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Name        string          `json:"name"`
	City        string          `json:"city"`
	Cuisine     string          `json:"cuisine,omitempty"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Rating      float64         `json:"rating,omitempty"`
	IsOpen      bool            `json:"is_open"`
}

type MenuItem struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Available    bool            `json:"available"`
}

type Review struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type RiderStats struct {
	Delivered  int             `json:"delivered"`
	InProgress int             `json:"in_progress"`
	Earnings   decimal.Decimal `json:"earnings"`
}
