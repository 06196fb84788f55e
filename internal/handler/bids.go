package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/estatehub/internal/domain"
)

// BidHandler serves bids on listings and bid acceptance
type BidHandler struct {
	bids      domain.BidRepository
	exclusive bool
	logger    *slog.Logger
}

// NewBidHandler creates a new bid handler. With exclusive set, accepting a bid
// fails when another bid on the same listing is already accepted.
func NewBidHandler(bids domain.BidRepository, exclusive bool, logger *slog.Logger) *BidHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BidHandler{bids: bids, exclusive: exclusive, logger: logger}
}

type createBidRequest struct {
	BidderID int64 `json:"bidder_id"`
	Amount   int64 `json:"amount"`
}

// List handles GET /listings/{id}/bids, highest amount first
func (h *BidHandler) List(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	bids, err := h.bids.ListForListing(r.Context(), listingID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, bids, http.StatusOK)
}

// Create handles POST /listings/{id}/bids
func (h *BidHandler) Create(w http.ResponseWriter, r *http.Request) {
	listingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req createBidRequest
	if err := decodeBody(r, bidCreateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	bid, err := h.bids.Create(r.Context(), listingID, req.BidderID, req.Amount)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("bid placed",
		slog.Int64("bid_id", bid.ID),
		slog.Int64("listing_id", listingID),
		slog.Int64("amount", bid.Amount),
	)
	writeJSON(w, bid, http.StatusCreated)
}

// Get handles GET /bids/{id}
func (h *BidHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	bid, err := h.bids.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, bid, http.StatusOK)
}

// Accept handles PATCH /bids/{id}/accept
func (h *BidHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var bid *domain.Bid
	if h.exclusive {
		bid, err = h.bids.AcceptExclusive(r.Context(), id)
	} else {
		bid, err = h.bids.Accept(r.Context(), id)
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("bid accepted",
		slog.Int64("bid_id", bid.ID),
		slog.Int64("listing_id", bid.ListingID),
		slog.Bool("exclusive", h.exclusive),
	)
	writeJSON(w, bid, http.StatusOK)
}

// FavoriteHandler serves /favorites
type FavoriteHandler struct {
	favorites domain.FavoriteRepository
	logger    *slog.Logger
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favorites domain.FavoriteRepository, logger *slog.Logger) *FavoriteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoriteHandler{favorites: favorites, logger: logger}
}

type favoriteRequest struct {
	UserID    int64 `json:"user_id"`
	ListingID int64 `json:"listing_id"`
}

// Add handles POST /favorites
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeBody(r, favoriteSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	fav, err := h.favorites.Add(r.Context(), req.UserID, req.ListingID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, fav, http.StatusCreated)
}

// Remove handles DELETE /favorites. The pair to remove is read from the body.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeBody(r, favoriteSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	fav, err := h.favorites.Remove(r.Context(), req.UserID, req.ListingID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, fav, http.StatusOK)
}
