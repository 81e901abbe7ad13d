package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/daria-hk/contacts-api/internal/api/middleware"
	"github.com/daria-hk/contacts-api/internal/apperrors"
	"github.com/daria-hk/contacts-api/internal/models"
	"github.com/daria-hk/contacts-api/internal/repositories"
	"github.com/daria-hk/contacts-api/internal/services"
	"github.com/daria-hk/contacts-api/internal/utils"
	"github.com/google/uuid"
)

const maxNameLen = 50

// ContactHandler serves the owner-scoped contact CRUD endpoints.
type ContactHandler struct {
	contacts *services.ContactService
}

func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// GET /contacts?skip=&limit=&q=
// List godoc
// @Summary List the current user's contacts
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset for pagination"
// @Param limit query int false "Page size (default 100)"
// @Param q query string false "Substring match on first name, last name, or email"
// @Success 200 {object} utils.Payload
// @Router /api/contacts [get]
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	query := r.URL.Query().Get("q")

	user := middleware.CurrentUser(r.Context())
	contacts, err := h.contacts.List(r.Context(), user, skip, limit, query)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Contacts",
		Data:    contacts,
	})
}

// GET /contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	user := middleware.CurrentUser(r.Context())
	contact, err := h.contacts.Get(r.Context(), user, id)
	if err != nil {
		notFoundOr(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Contact",
		Data:    contact,
	})
}

// POST /contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FirstName string       `json:"first_name"`
		LastName  string       `json:"last_name"`
		Email     string       `json:"email"`
		Phone     string       `json:"phone"`
		Birthday  *models.Date `json:"birthday"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		invalidInput(w)
		return
	}

	if input.FirstName == "" || len(input.FirstName) > maxNameLen ||
		input.LastName == "" || len(input.LastName) > maxNameLen ||
		input.Phone == "" || len(input.Phone) > maxNameLen ||
		!validEmail(input.Email) {
		invalidInput(w)
		return
	}

	user := middleware.CurrentUser(r.Context())
	contact, err := h.contacts.Create(r.Context(), user, &models.Contact{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Birthday:  input.Birthday,
	})
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Contact created",
		Data:    contact,
	})
}

// PUT /contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	var input struct {
		FirstName *string      `json:"first_name"`
		LastName  *string      `json:"last_name"`
		Email     *string      `json:"email"`
		Phone     *string      `json:"phone"`
		Birthday  *models.Date `json:"birthday"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		invalidInput(w)
		return
	}

	if (input.FirstName != nil && (*input.FirstName == "" || len(*input.FirstName) > maxNameLen)) ||
		(input.LastName != nil && (*input.LastName == "" || len(*input.LastName) > maxNameLen)) ||
		(input.Phone != nil && (*input.Phone == "" || len(*input.Phone) > maxNameLen)) ||
		(input.Email != nil && !validEmail(*input.Email)) {
		invalidInput(w)
		return
	}

	user := middleware.CurrentUser(r.Context())
	contact, err := h.contacts.Update(r.Context(), user, id, repositories.ContactUpdate{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Birthday:  input.Birthday,
	})
	if err != nil {
		notFoundOr(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Contact updated",
		Data:    contact,
	})
}

// DELETE /contacts/{id}
func (h *ContactHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	user := middleware.CurrentUser(r.Context())
	contact, err := h.contacts.Remove(r.Context(), user, id)
	if err != nil {
		notFoundOr(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Contact deleted",
		Data:    contact,
	})
}

// GET /contacts/birthdays
func (h *ContactHandler) Birthdays(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	contacts, err := h.contacts.Birthdays(r.Context(), user)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Upcoming birthdays",
		Data:    contacts,
	})
}

// contactID parses the {id} path segment. A malformed id is treated like a
// missing contact so ids of other shapes leak nothing.
func contactID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "contact not found",
		})
		return uuid.Nil, false
	}
	return id, true
}

// notFoundOr keeps the contact-specific 404 message; other errors go through
// the shared mapping.
func notFoundOr(w http.ResponseWriter, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "contact not found",
		})
		return
	}
	utils.ErrorResponse(w, err)
}

func invalidInput(w http.ResponseWriter) {
	utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
		Success: false,
		Message: "Invalid input",
	})
}
