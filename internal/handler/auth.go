package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lozanotech/task-manager-api/internal/ctxkeys"
	"github.com/lozanotech/task-manager-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /users. Success returns the public user shape plus
// the first session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.authService.Register(input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  user.Profile(),
		"token": token,
	})
}

// Login handles POST /users/login. Bad credentials are a 400 with a fixed
// message, never a hint about which half was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.authService.Login(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "Unable to log in")
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  user.Profile(),
		"token": token,
	})
}

// Logout handles POST /users/logout: revokes only the token that
// authenticated this request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	token := ctxkeys.Token(r.Context())

	err := h.authService.Logout(user.ID, token)
	if err != nil {
		slog.Error("logout failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// LogoutAll handles POST /users/logoutAll: revokes every session of the user.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.authService.LogoutAll(user.ID)
	if err != nil {
		slog.Error("logout all failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
}
