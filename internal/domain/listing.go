package domain

import (
	"context"
	"time"
)

// Listing statuses. The status is set directly by callers; there is no transition graph.
const (
	ListingStatusActive   = "active"
	ListingStatusUpcoming = "upcoming"
	ListingStatusSold     = "sold"
	ListingStatusArchived = "archived"
)

// ListingStatuses enumerates every accepted status value
var ListingStatuses = []string{
	ListingStatusActive,
	ListingStatusUpcoming,
	ListingStatusSold,
	ListingStatusArchived,
}

// ValidListingStatus reports whether s is one of ListingStatuses
func ValidListingStatus(s string) bool {
	for _, v := range ListingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Listing is a property offered for sale or rent
type Listing struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	LivingArea  *int64    `db:"living_area" json:"living_area"`
	Rooms       *int64    `db:"rooms" json:"rooms"`
	AddressID   *int64    `db:"address_id" json:"address_id"`
	CategoryID  int64     `db:"category_id" json:"category_id"`
	AgentID     int64     `db:"agent_id" json:"agent_id"`
	AgencyID    *int64    `db:"agency_id" json:"agency_id"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NewListing holds the fields accepted when creating a listing
type NewListing struct {
	Title       string
	Description *string
	Price       int64
	LivingArea  *int64
	Rooms       *int64
	AddressID   *int64
	CategoryID  int64
	AgentID     int64
	AgencyID    *int64
	Status      string
}

// ListingRepository defines data access for listings
type ListingRepository interface {
	List(ctx context.Context) ([]*Listing, error)
	GetByID(ctx context.Context, id int64) (*Listing, error)
	Create(ctx context.Context, in NewListing) (*Listing, error)
	Update(ctx context.Context, id int64, title string, description *string, price int64) (*Listing, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*Listing, error)
	Delete(ctx context.Context, id int64) error
}

// Category groups listings (apartment, house, ...)
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CategoryRepository defines data access for listing categories
type CategoryRepository interface {
	List(ctx context.Context) ([]*Category, error)
	Create(ctx context.Context, name string) (*Category, error)
}

// Image is a picture attached to a listing. Position orders the gallery.
type Image struct {
	ID          int64   `db:"id" json:"id"`
	ListingID   int64   `db:"listing_id" json:"listing_id"`
	URL         string  `db:"url" json:"url"`
	Description *string `db:"description" json:"description"`
	Position    int64   `db:"position" json:"position"`
}

// ImageRepository defines data access for listing images
type ImageRepository interface {
	// ListForListing returns images ordered by position ascending
	ListForListing(ctx context.Context, listingID int64) ([]*Image, error)
	Create(ctx context.Context, listingID int64, url string, description *string, position int64) (*Image, error)
}
