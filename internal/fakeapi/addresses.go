package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quickbite/internal/model"
)

func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	s.mu.Lock()
	out := append([]model.Address(nil), s.addresses[userID]...)
	s.mu.Unlock()
	if out == nil {
		out = []model.Address{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.Address{"addresses": out})
}

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	var addr model.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if addr.AddressLine == "" || addr.City == "" {
		writeErr(w, http.StatusBadRequest, "address_line and city are required")
		return
	}
	addr.ID = uuid.NewString()

	s.mu.Lock()
	if addr.IsDefault {
		s.clearDefaultLocked(userID)
	}
	s.addresses[userID] = append(s.addresses[userID], addr)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, addr)
}

func (s *Server) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	id := chi.URLParam(r, "id")
	var addr model.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	for i := range list {
		if list[i].ID == id {
			addr.ID = id
			if addr.IsDefault {
				s.clearDefaultLocked(userID)
			}
			list[i] = addr
			writeJSON(w, http.StatusOK, addr)
			return
		}
	}
	writeErr(w, http.StatusNotFound, "address not found")
}

func (s *Server) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	for i := range list {
		if list[i].ID == id {
			s.addresses[userID] = append(list[:i], list[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "address deleted"})
			return
		}
	}
	writeErr(w, http.StatusNotFound, "address not found")
}

func (s *Server) handleSetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	for i := range list {
		if list[i].ID == id {
			s.clearDefaultLocked(userID)
			list[i].IsDefault = true
			writeJSON(w, http.StatusOK, list[i])
			return
		}
	}
	writeErr(w, http.StatusNotFound, "address not found")
}

func (s *Server) clearDefaultLocked(userID string) {
	list := s.addresses[userID]
	for i := range list {
		list[i].IsDefault = false
	}
}
