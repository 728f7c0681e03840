package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"quickbite/internal/model"
)

type ctxKey string

const (
	ctxUserID ctxKey = "user_id"
	ctxRole   ctxKey = "role"
)

type signupRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Phone    string     `json:"phone"`
	Role     model.Role `json:"role"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeErr(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleCustomer
	}

	s.mu.Lock()
	_, exists := s.byEmail[req.Email]
	s.mu.Unlock()
	if exists {
		writeErr(w, http.StatusConflict, "email already registered")
		return
	}

	u := s.SeedUser(req.Name, req.Email, req.Password, req.Role)
	tok, err := s.TokenFor(u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: tok, User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	id, ok := s.byEmail[creds.Email]
	var rec *userRecord
	if ok {
		rec = s.users[id]
	}
	s.mu.Unlock()

	if rec == nil || bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(creds.Password)) != nil {
		writeErr(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	tok, err := s.TokenFor(rec.user.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: tok, User: rec.user})
}

// TokenFor mints a signed token for a seeded user; tests use it to skip the
// login round-trip.
func (s *Server) TokenFor(userID string) (string, error) {
	s.mu.Lock()
	rec, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		return "", jwt.ErrTokenMalformed
	}

	claims := jwt.MapClaims{
		"sub":  rec.user.ID,
		"name": rec.user.Name,
		"role": string(rec.user.Role),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(tokenString string) (userID string, role model.Role, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", jwt.ErrTokenUnverifiable
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims.GetSubject()
	roleStr, _ := claims["role"].(string)
	return sub, model.Role(roleStr), nil
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeErr(w, http.StatusUnauthorized, "invalid token format")
			return
		}
		userID, role, err := s.parseToken(parts[1])
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, userID)
		ctx = context.WithValue(ctx, ctxRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestUser(r *http.Request) (string, model.Role) {
	userID, _ := r.Context().Value(ctxUserID).(string)
	role, _ := r.Context().Value(ctxRole).(model.Role)
	return userID, role
}
