package model

import "github.com/shopspring/decimal"

// CartItem.UnitPrice is the price captured when the item was added; it does
// not track later menu price changes.
type CartItem struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is bound to at most one restaurant; an empty cart has no binding.
type Cart struct {
	ID             string     `json:"id,omitempty"`
	RestaurantID   string     `json:"restaurant_id,omitempty"`
	RestaurantName string     `json:"restaurant_name,omitempty"`
	RestaurantCity string     `json:"restaurant_city,omitempty"`
	Items          []CartItem `json:"items"`
}

func (c Cart) Empty() bool { return len(c.Items) == 0 }

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// FindByMenuItem returns the line for a menu item, if present.
func (c Cart) FindByMenuItem(menuItemID string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.MenuItemID == menuItemID {
			return it, true
		}
	}
	return CartItem{}, false
}

// Quantity returns the line quantity for a menu item, zero if absent.
func (c Cart) Quantity(menuItemID string) int {
	it, ok := c.FindByMenuItem(menuItemID)
	if !ok {
		return 0
	}
	return it.Quantity
}
