package fakeapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"quickbite/internal/model"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	unreadOnly := r.URL.Query().Get("unread") == "true"

	s.mu.Lock()
	var out []model.Notification
	for _, n := range s.notifications[userID] {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	s.mu.Unlock()

	if offset > 0 {
		if offset > len(out) {
			offset = len(out)
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	if out == nil {
		out = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.Notification{"notifications": out})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	s.mu.Lock()
	count := 0
	for _, n := range s.notifications[userID] {
		if !n.Read {
			count++
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.notifications[userID]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			writeJSON(w, http.StatusOK, map[string]string{"message": "marked read"})
			return
		}
	}
	writeErr(w, http.StatusNotFound, "notification not found")
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestUser(r)
	s.mu.Lock()
	list := s.notifications[userID]
	for i := range list {
		list[i].Read = true
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "all marked read"})
}
