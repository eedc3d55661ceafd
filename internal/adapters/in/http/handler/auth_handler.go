// internal/adapters/in/http/handler/auth_handler.go
package handler

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// AuthHandler serves /auth/login and /auth/logout.
type AuthHandler struct {
	sessions SessionResolver
}

func NewAuthHandler(sessions SessionResolver) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Subject   string     `json:"subject"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Cart      cartDTO    `json:"cart"`
	Warning   string     `json:"warning,omitempty"`
}

// Login: POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	var req loginReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	cred, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil && cred.Token == "" {
		writeUsecaseErr(w, err)
		return
	}

	resp := loginResp{Subject: cred.Subject, Cart: toCartDTO(s.Cart)}
	if !cred.ExpiresAt.IsZero() {
		t := cred.ExpiresAt
		resp.ExpiresAt = &t
	}
	if err != nil {
		// logged in, but the cart could not be refreshed
		log.Printf("[auth_handler] login ok, cart sync failed: %v", err)
		resp.Warning = "cart could not be synchronised"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout: POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r, h.sessions)
	if !ok {
		return
	}

	if err := s.Auth.Logout(r.Context()); err != nil {
		log.Printf("[auth_handler] logout: %v", err)
	}
	writeJSON(w, http.StatusOK, toCartDTO(s.Cart))
}
