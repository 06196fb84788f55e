package domain

import (
	"context"
	"time"
)

// Bid is an offer against a listing
type Bid struct {
	ID         int64     `db:"id" json:"id"`
	ListingID  int64     `db:"listing_id" json:"listing_id"`
	BidderID   int64     `db:"bidder_id" json:"bidder_id"`
	Amount     int64     `db:"amount" json:"amount"`
	IsAccepted bool      `db:"is_accepted" json:"is_accepted"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// BidRepository defines data access for bids
type BidRepository interface {
	// ListForListing returns bids ordered by amount descending
	ListForListing(ctx context.Context, listingID int64) ([]*Bid, error)
	GetByID(ctx context.Context, id int64) (*Bid, error)
	Create(ctx context.Context, listingID, bidderID, amount int64) (*Bid, error)
	// Accept sets the accepted flag on one bid and touches nothing else.
	// Several bids on the same listing may end up accepted.
	Accept(ctx context.Context, id int64) (*Bid, error)
	// AcceptExclusive accepts a bid only if no other bid on its listing is accepted
	AcceptExclusive(ctx context.Context, id int64) (*Bid, error)
}

// Favorite bookmarks a listing for a user
type Favorite struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	ListingID int64     `db:"listing_id" json:"listing_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FavoriteRepository defines data access for favorites
type FavoriteRepository interface {
	Add(ctx context.Context, userID, listingID int64) (*Favorite, error)
	Remove(ctx context.Context, userID, listingID int64) (*Favorite, error)
}
