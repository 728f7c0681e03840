package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quickbite/internal/model"
)

// crossRestaurantMessage matches the production backend's wording; the
// client recognizes the conflict by status code plus this text.
const crossRestaurantMessage = "You already have items from another restaurant in your cart. Please clear your cart to add items from this restaurant."

type addItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	s.mu.Lock()
	cart := s.carts[userID]
	var out model.Cart
	if cart != nil {
		out = *cart
		out.Items = append([]model.CartItem(nil), cart.Items...)
	}
	s.mu.Unlock()
	if out.Items == nil {
		out.Items = []model.CartItem{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		writeErr(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.menu[req.MenuItemID]
	if !ok || !item.Available {
		writeErr(w, http.StatusNotFound, "menu item not found")
		return
	}

	cart := s.carts[userID]
	if cart != nil && len(cart.Items) > 0 && cart.RestaurantID != item.RestaurantID {
		writeErr(w, http.StatusConflict, crossRestaurantMessage)
		return
	}

	if cart == nil || len(cart.Items) == 0 {
		rest := s.restaurants[item.RestaurantID]
		cart = &model.Cart{
			ID:             uuid.NewString(),
			RestaurantID:   rest.ID,
			RestaurantName: rest.Name,
			RestaurantCity: rest.City,
		}
		s.carts[userID] = cart
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].MenuItemID == item.ID {
			cart.Items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, model.CartItem{
			ID:         uuid.NewString(),
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   req.Quantity,
			UnitPrice:  item.Price, // price snapshot at add time
		})
	}
	writeJSON(w, http.StatusCreated, cart)
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	itemID := chi.URLParam(r, "id")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		writeErr(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	if cart == nil {
		writeErr(w, http.StatusNotFound, "cart is empty")
		return
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = req.Quantity
			writeJSON(w, http.StatusOK, cart)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "cart item not found")
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	itemID := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	if cart == nil {
		writeErr(w, http.StatusNotFound, "cart is empty")
		return
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			if len(cart.Items) == 0 {
				// last line gone: the restaurant binding is released
				delete(s.carts, userID)
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
			return
		}
	}
	writeErr(w, http.StatusNotFound, "cart item not found")
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	s.mu.Lock()
	delete(s.carts, userID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
