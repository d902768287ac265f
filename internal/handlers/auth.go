package handlers

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Accounts is the account API the auth handlers need.
type Accounts interface {
	SignUp(ctx context.Context, email, password, fullName string) (models.User, string, error)
	SignIn(ctx context.Context, email, password string) (models.User, string, error)
	SignOut(ctx context.Context, token string) error
	Me(ctx context.Context, userID uuid.UUID) (models.User, error)
}

// User Signup Request
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// User Signin Request
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Auth Response
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

type AuthHandler struct {
	accounts Accounts
	log      *zap.Logger
}

func NewAuthHandler(accounts Accounts, log *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, log: log}
}

// SignUp handles user registration
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, token, err := h.accounts.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User:    &user,
		Token:   token,
	})
}

// SignIn handles user login
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, token, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Signed in successfully",
		User:    &user,
		Token:   token,
	})
}

// SignOut invalidates the caller's session. Signing out without a session
// still succeeds.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SignOut(r.Context(), middleware.Token(r)); err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Signed out successfully"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	user, err := h.accounts.Me(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "OK", User: &user})
}
