package domain

import (
	"context"
	"time"
)

// Address is a postal address shared by agencies and listings
type Address struct {
	ID         int64  `db:"id" json:"id"`
	Street     string `db:"street" json:"street"`
	PostalCode string `db:"postal_code" json:"postal_code"`
	City       string `db:"city" json:"city"`
	Country    string `db:"country" json:"country"`
}

// AddressRepository defines data access for addresses
type AddressRepository interface {
	Create(ctx context.Context, street, postalCode, city, country string) (*Address, error)
	GetByID(ctx context.Context, id int64) (*Address, error)
}

// Agency is a real-estate organization employing agents
type Agency struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Email     string  `db:"email" json:"email"`
	Phone     *string `db:"phone" json:"phone"`
	Website   *string `db:"website" json:"website"`
	AddressID *int64  `db:"address_id" json:"address_id"`
}

// NewAgency holds the fields accepted when creating an agency
type NewAgency struct {
	Name      string
	Email     string
	Phone     *string
	Website   *string
	AddressID *int64
}

// AgencyRepository defines data access for agencies
type AgencyRepository interface {
	List(ctx context.Context) ([]*Agency, error)
	GetByID(ctx context.Context, id int64) (*Agency, error)
	Create(ctx context.Context, in NewAgency) (*Agency, error)
	ListListings(ctx context.Context, agencyID int64) ([]*Listing, error)
}

// Review is a rating of an agent left by another user
type Review struct {
	ID         int64     `db:"id" json:"id"`
	AgentID    int64     `db:"agent_id" json:"agent_id"`
	ReviewerID int64     `db:"reviewer_id" json:"reviewer_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    *string   `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ReviewRepository defines data access for agent reviews
type ReviewRepository interface {
	ListForAgent(ctx context.Context, agentID int64) ([]*Review, error)
	Create(ctx context.Context, agentID, reviewerID int64, rating int, comment *string) (*Review, error)
}
