package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lozanotech/task-manager-api/internal/ctxkeys"
	"github.com/lozanotech/task-manager-api/internal/service"
	"github.com/lozanotech/task-manager-api/internal/storage"
)

// maxAvatarUpload caps the whole multipart body; the per-file 1MB limit is
// enforced by validation afterwards.
const maxAvatarUpload = 2 << 20

type AccountHandler struct {
	userService   *service.UserService
	avatarService *service.AvatarService
}

func NewAccountHandler(userService *service.UserService, avatarService *service.AvatarService) *AccountHandler {
	return &AccountHandler{
		userService:   userService,
		avatarService: avatarService,
	}
}

// Me handles GET /users/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	writeJSON(w, http.StatusOK, user.Profile())
}

// UpdateMe handles PATCH /users/me. The body is decoded as a loose map so a
// key outside the allow-list rejects the whole request, whatever its value.
func (h *AccountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var fields map[string]any
	err := json.NewDecoder(r.Body).Decode(&fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.userService.UpdateProfile(user.ID, fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated.Profile())
}

// DeleteMe handles DELETE /users/me and returns the deleted profile.
func (h *AccountHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	deleted, err := h.userService.DeleteAccount(user.ID)
	if err != nil {
		slog.Error("account deletion failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, deleted.Profile())
}

// UploadAvatar handles POST /users/me/avatar (multipart field "avatar").
func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarUpload)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer func() { _ = file.Close() }()

	err = h.avatarService.Upload(user.ID, header)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar handles DELETE /users/me/avatar.
func (h *AccountHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.avatarService.Delete(user.ID)
	if err != nil {
		slog.Error("avatar deletion failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Avatar handles GET /users/{id}/avatar. Public route: serves the stored
// 250x250 PNG or 404.
func (h *AccountHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	avatar, err := h.avatarService.Avatar(id)
	if err != nil {
		if errors.Is(err, storage.ErrAvatarNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		slog.Error("avatar fetch failed", "error", err, "user_id", id)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(avatar)
}
