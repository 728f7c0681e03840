package fakeapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quickbite/internal/model"
)

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleSearchRestaurants(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	query := strings.ToLower(r.URL.Query().Get("q"))

	s.mu.Lock()
	var out []model.Restaurant
	for _, rest := range s.restaurants {
		if city != "" && !strings.EqualFold(strings.TrimSpace(rest.City), strings.TrimSpace(city)) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(rest.Name), query) {
			continue
		}
		out = append(out, rest)
	}
	s.mu.Unlock()
	if out == nil {
		out = []model.Restaurant{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.Restaurant{"restaurants": out})
}

func (s *Server) handleMyRestaurants(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	s.mu.Lock()
	var out []model.Restaurant
	for _, rest := range s.restaurants {
		if rest.OwnerID == userID {
			out = append(out, rest)
		}
	}
	s.mu.Unlock()
	if out == nil {
		out = []model.Restaurant{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.Restaurant{"restaurants": out})
}

func (s *Server) handleGetRestaurant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	rest, ok := s.restaurants[id]
	s.mu.Unlock()
	if !ok {
		writeErr(w, http.StatusNotFound, "restaurant not found")
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (s *Server) handleGetMenu(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	var out []model.MenuItem
	for _, it := range s.menu {
		if it.RestaurantID == id {
			out = append(out, it)
		}
	}
	s.mu.Unlock()
	if out == nil {
		out = []model.MenuItem{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.MenuItem{"items": out})
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	out := append([]model.Review(nil), s.reviews[id]...)
	s.mu.Unlock()
	if out == nil {
		out = []model.Review{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.Review{"reviews": out})
}

func (s *Server) handleMyReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rev := range s.reviews[id] {
		if rev.UserID == userID {
			writeJSON(w, http.StatusOK, rev)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "no review yet")
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	id := chi.URLParam(r, "id")

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeErr(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.restaurants[id]; !ok {
		writeErr(w, http.StatusNotFound, "restaurant not found")
		return
	}
	for _, rev := range s.reviews[id] {
		if rev.UserID == userID {
			writeErr(w, http.StatusConflict, "you have already reviewed this restaurant")
			return
		}
	}
	rev := model.Review{
		ID:           uuid.NewString(),
		RestaurantID: id,
		UserID:       userID,
		UserName:     s.users[userID].user.Name,
		Rating:       req.Rating,
		Comment:      req.Comment,
		CreatedAt:    time.Now().UTC(),
	}
	s.reviews[id] = append(s.reviews[id], rev)
	writeJSON(w, http.StatusCreated, rev)
}
