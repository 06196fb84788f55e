package domain

import (
	"context"
	"time"
)

// Viewing is a scheduled window to inspect a listing. EndTime is optional.
type Viewing struct {
	ID        int64      `db:"id" json:"id"`
	ListingID int64      `db:"listing_id" json:"listing_id"`
	StartTime time.Time  `db:"start_time" json:"start_time"`
	EndTime   *time.Time `db:"end_time" json:"end_time"`
}

// Registration links a user to a viewing
type Registration struct {
	ID           int64     `db:"id" json:"id"`
	ViewingID    int64     `db:"viewing_id" json:"viewing_id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// ViewingRepository defines data access for viewings and their registrations
type ViewingRepository interface {
	ListForListing(ctx context.Context, listingID int64) ([]*Viewing, error)
	Create(ctx context.Context, listingID int64, start time.Time, end *time.Time) (*Viewing, error)
	Register(ctx context.Context, viewingID, userID int64) (*Registration, error)
	ListRegistrations(ctx context.Context, viewingID int64) ([]*Registration, error)
}
