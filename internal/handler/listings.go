package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/estatehub/internal/domain"
)

// ListingHandler serves /listings and the images nested under a listing
type ListingHandler struct {
	listings domain.ListingRepository
	images   domain.ImageRepository
	logger   *slog.Logger
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listings domain.ListingRepository, images domain.ImageRepository, logger *slog.Logger) *ListingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingHandler{listings: listings, images: images, logger: logger}
}

type createListingRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       int64   `json:"price"`
	LivingArea  *int64  `json:"living_area"`
	Rooms       *int64  `json:"rooms"`
	AddressID   *int64  `json:"address_id"`
	CategoryID  int64   `json:"category_id"`
	AgentID     int64   `json:"agent_id"`
	AgencyID    *int64  `json:"agency_id"`
	Status      string  `json:"status"`
}

type updateListingRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       int64   `json:"price"`
}

type listingStatusRequest struct {
	Status string `json:"status"`
}

type createImageRequest struct {
	URL         string  `json:"url"`
	Description *string `json:"description"`
	Position    int64   `json:"position"`
}

// List handles GET /listings
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, listings, http.StatusOK)
}

// Get handles GET /listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	listing, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, listing, http.StatusOK)
}

// Create handles POST /listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := decodeBody(r, listingCreateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	listing, err := h.listings.Create(r.Context(), domain.NewListing{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		LivingArea:  req.LivingArea,
		Rooms:       req.Rooms,
		AddressID:   req.AddressID,
		CategoryID:  req.CategoryID,
		AgentID:     req.AgentID,
		AgencyID:    req.AgencyID,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("listing created",
		slog.Int64("listing_id", listing.ID),
		slog.Int64("agent_id", listing.AgentID),
	)
	writeJSON(w, listing, http.StatusCreated)
}

// Update handles PUT /listings/{id}: title, description and price
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateListingRequest
	if err := decodeBody(r, listingUpdateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	listing, err := h.listings.Update(r.Context(), id, req.Title, req.Description, req.Price)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, listing, http.StatusOK)
}

// UpdateStatus handles PATCH /listings/{id}/status
func (h *ListingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req listingStatusRequest
	if err := decodeBody(r, listingStatusSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !domain.ValidListingStatus(req.Status) {
		writeError(w, r, h.logger, &ValidationError{
			Message: "status is not a known listing status",
			Fields:  []FieldError{{Field: "/status", Message: "must be one of active, upcoming, sold, archived"}},
		})
		return
	}

	listing, err := h.listings.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("listing status changed",
		slog.Int64("listing_id", id),
		slog.String("status", listing.Status),
	)
	writeJSON(w, listing, http.StatusOK)
}

// Delete handles DELETE /listings/{id}. Bids, images, viewings and favorites go with it.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.listings.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("listing deleted", slog.Int64("listing_id", id))
	writeJSON(w, DeletedResponse{ID: id, Deleted: true}, http.StatusOK)
}

// Images handles GET /listings/{id}/images
func (h *ListingHandler) Images(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	images, err := h.images.ListForListing(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, images, http.StatusOK)
}

// AddImage handles POST /listings/{id}/images
func (h *ListingHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req createImageRequest
	if err := decodeBody(r, imageCreateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	image, err := h.images.Create(r.Context(), id, req.URL, req.Description, req.Position)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, image, http.StatusCreated)
}
