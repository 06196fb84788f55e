package domain

import (
	"context"
	"time"
)

// User is a marketplace account: buyer, agent or administrator depending on RoleID
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"password_hash"` // stored as given, no hashing scheme
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Phone        *string   `db:"phone" json:"phone"`
	RoleID       int64     `db:"role_id" json:"role_id"`
	AgencyID     *int64    `db:"agency_id" json:"agency_id"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// NewUser holds the fields accepted when creating a user
type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	RoleID       int64
	AgencyID     *int64
}

// UserRepository defines data access for users
type UserRepository interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, in NewUser) (*User, error)
	UpdateName(ctx context.Context, id int64, firstName, lastName string) (*User, error)
	Delete(ctx context.Context, id int64) error
	ListFavorites(ctx context.Context, userID int64) ([]*Listing, error)
}

// Role is a named permission group referenced by users
type Role struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
}

// RoleRepository defines data access for roles
type RoleRepository interface {
	List(ctx context.Context) ([]*Role, error)
	Create(ctx context.Context, name string, description *string) (*Role, error)
}
