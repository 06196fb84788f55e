package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/estatehub/internal/domain"
)

// ViewingHandler serves viewings and viewing registrations
type ViewingHandler struct {
	viewings domain.ViewingRepository
	logger   *slog.Logger
}

// NewViewingHandler creates a new viewing handler
func NewViewingHandler(viewings domain.ViewingRepository, logger *slog.Logger) *ViewingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewingHandler{viewings: viewings, logger: logger}
}

type createViewingRequest struct {
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

type registrationRequest struct {
	UserID int64 `json:"user_id"`
}

// List handles GET /listings/{id}/viewings
func (h *ViewingHandler) List(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	viewings, err := h.viewings.ListForListing(r.Context(), listingID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, viewings, http.StatusOK)
}

// Create handles POST /listings/{id}/viewings
func (h *ViewingHandler) Create(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req createViewingRequest
	if err := decodeBody(r, viewingCreateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		writeError(w, r, h.logger, &ValidationError{
			Message: "end_time must be after start_time",
			Fields:  []FieldError{{Field: "/end_time", Message: "must be after start_time"}},
		})
		return
	}

	viewing, err := h.viewings.Create(r.Context(), listingID, req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, viewing, http.StatusCreated)
}

// Registrations handles GET /viewings/{id}/registrations
func (h *ViewingHandler) Registrations(w http.ResponseWriter, r *http.Request) {
	viewingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	regs, err := h.viewings.ListRegistrations(r.Context(), viewingID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, regs, http.StatusOK)
}

// Register handles POST /viewings/{id}/registrations
func (h *ViewingHandler) Register(w http.ResponseWriter, r *http.Request) {
	viewingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req registrationRequest
	if err := decodeBody(r, registrationSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	reg, err := h.viewings.Register(r.Context(), viewingID, req.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, reg, http.StatusCreated)
}

// ReviewHandler serves reviews of agents
type ReviewHandler struct {
	reviews domain.ReviewRepository
	logger  *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews domain.ReviewRepository, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{reviews: reviews, logger: logger}
}

type createReviewRequest struct {
	ReviewerID int64   `json:"reviewer_id"`
	Rating     int     `json:"rating"`
	Comment    *string `json:"comment"`
}

// List handles GET /agents/{id}/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	agentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	reviews, err := h.reviews.ListForAgent(r.Context(), agentID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, reviews, http.StatusOK)
}

// Create handles POST /agents/{id}/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	agentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req createReviewRequest
	if err := decodeBody(r, reviewCreateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	review, err := h.reviews.Create(r.Context(), agentID, req.ReviewerID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, review, http.StatusCreated)
}
