package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/estatehub/internal/domain"
)

// UserHandler serves /users
type UserHandler struct {
	users  domain.UserRepository
	logger *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users domain.UserRepository, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{users: users, logger: logger}
}

type createUserRequest struct {
	Email        string  `json:"email"`
	PasswordHash string  `json:"password_hash"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Phone        *string `json:"phone"`
	RoleID       int64   `json:"role_id"`
	AgencyID     *int64  `json:"agency_id"`
}

type updateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, users, http.StatusOK)
}

// Get handles GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, user, http.StatusOK)
}

// Create handles POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, userCreateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := bareEmail(userCreateSchema, "/email", req.Email); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.Create(r.Context(), domain.NewUser{
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		RoleID:       req.RoleID,
		AgencyID:     req.AgencyID,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user created", slog.Int64("user_id", user.ID))
	writeJSON(w, user, http.StatusCreated)
}

// Update handles PUT /users/{id}. Only the name can change.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateUserRequest
	if err := decodeBody(r, userUpdateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.UpdateName(r.Context(), id, req.FirstName, req.LastName)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, user, http.StatusOK)
}

// Delete handles DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user deleted", slog.Int64("user_id", id))
	writeJSON(w, DeletedResponse{ID: id, Deleted: true}, http.StatusOK)
}

// Favorites handles GET /users/{id}/favorites
func (h *UserHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	listings, err := h.users.ListFavorites(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, listings, http.StatusOK)
}
