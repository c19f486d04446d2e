package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/example/marketplace-backend/internal/auth"
)

// AuthHandlers implements a development sign-up/login surface. Deployed
// environments use the managed identity provider; this registry only exists
// so the HTTP server can be exercised without it.
type AuthHandlers struct {
	jwtService *auth.JWTService

	mu    sync.RWMutex
	users map[string]*devUser // keyed by email
}

type devUser struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
}

func NewAuthHandlers(jwtService *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{
		jwtService: jwtService,
		users:      make(map[string]*devUser),
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	SignupType string `json:"signup_type,omitempty"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a dev account. The signup type maps to the same role set
// the identity provider assigns on account confirmation.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}
	if req.Email == "" {
		respondFailure(w, http.StatusBadRequest, "email is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	u := &devUser{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         auth.RoleForSignupType(req.SignupType),
	}

	h.mu.Lock()
	if _, exists := h.users[req.Email]; exists {
		h.mu.Unlock()
		respondFailure(w, http.StatusConflict, "email already registered")
		return
	}
	h.users[req.Email] = u
	h.mu.Unlock()

	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    map[string]string{"id": u.ID, "email": u.Email, "role": u.Role},
	})
}

// Login checks credentials and issues a token.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}

	h.mu.RLock()
	u, ok := h.users[req.Email]
	h.mu.RUnlock()
	if !ok || !auth.CheckPassword(req.Password, u.PasswordHash) {
		respondFailure(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		respondFailure(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"token":      token,
		"expires_at": expiresAt,
		"user":       map[string]string{"id": u.ID, "email": u.Email, "role": u.Role},
	})
}
