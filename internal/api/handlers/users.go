package handlers

import (
	"io"
	"net/http"

	"github.com/daria-hk/contacts-api/internal/api/middleware"
	"github.com/daria-hk/contacts-api/internal/services"
	"github.com/daria-hk/contacts-api/internal/utils"
)

// UserHandler serves the current-user profile endpoints.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GET /users/me
// Me godoc
// @Summary Current user profile
// @Description No more than 10 requests per minute per client
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 429 {object} utils.Payload
// @Router /api/users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Current user",
		Data:    user,
	})
}

// PATCH /users/avatar
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	const maxAvatarSize = 5 << 20 // 5 MB
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid file upload form",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "No file provided",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Failed to read file",
		})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	user := middleware.CurrentUser(r.Context())
	updated, err := h.users.UpdateAvatar(r.Context(), user, data, contentType)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Avatar updated",
		Data:    updated,
	})
}
