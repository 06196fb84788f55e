package repository

import (
	"context"
	"log/slog"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/pkg/database"
)

const agencyColumns = `id, name, email, phone, website, address_id`

// PostgresAgencyRepository implements domain.AgencyRepository using PostgreSQL
type PostgresAgencyRepository struct {
	postgres
}

// NewPostgresAgencyRepository creates a new agency repository
func NewPostgresAgencyRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresAgencyRepository {
	return &PostgresAgencyRepository{postgres: newPostgres(pool, logger)}
}

// List returns all agencies
func (r *PostgresAgencyRepository) List(ctx context.Context) ([]*domain.Agency, error) {
	agencies := []*domain.Agency{}
	err := r.run(ctx, "agencies.list", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &agencies, `SELECT `+agencyColumns+` FROM agencies ORDER BY id`)
	})
	if err != nil {
		return nil, err
	}
	return agencies, nil
}

// GetByID retrieves an agency by ID
func (r *PostgresAgencyRepository) GetByID(ctx context.Context, id int64) (*domain.Agency, error) {
	agency := &domain.Agency{}
	err := r.run(ctx, "agencies.get", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, agency, `SELECT `+agencyColumns+` FROM agencies WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return agency, nil
}

// Create inserts an agency
func (r *PostgresAgencyRepository) Create(ctx context.Context, in domain.NewAgency) (*domain.Agency, error) {
	agency := &domain.Agency{}
	err := r.run(ctx, "agencies.create", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, agency, `
			INSERT INTO agencies (name, email, phone, website, address_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+agencyColumns, in.Name, in.Email, in.Phone, in.Website, in.AddressID)
	})
	if err != nil {
		return nil, err
	}
	return agency, nil
}

// ListListings returns the listings published by an agency
func (r *PostgresAgencyRepository) ListListings(ctx context.Context, agencyID int64) ([]*domain.Listing, error) {
	listings := []*domain.Listing{}
	err := r.run(ctx, "agencies.listings", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &listings, `
			SELECT `+listingColumns+`
			FROM listings
			WHERE agency_id = $1
			ORDER BY id`, agencyID)
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// PostgresAddressRepository implements domain.AddressRepository using PostgreSQL
type PostgresAddressRepository struct {
	postgres
}

// NewPostgresAddressRepository creates a new address repository
func NewPostgresAddressRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresAddressRepository {
	return &PostgresAddressRepository{postgres: newPostgres(pool, logger)}
}

// Create inserts an address
func (r *PostgresAddressRepository) Create(ctx context.Context, street, postalCode, city, country string) (*domain.Address, error) {
	addr := &domain.Address{}
	err := r.run(ctx, "addresses.create", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, addr, `
			INSERT INTO addresses (street, postal_code, city, country)
			VALUES ($1, $2, $3, $4)
			RETURNING id, street, postal_code, city, country`, street, postalCode, city, country)
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

// GetByID retrieves an address by ID
func (r *PostgresAddressRepository) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	addr := &domain.Address{}
	err := r.run(ctx, "addresses.get", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, addr, `
			SELECT id, street, postal_code, city, country
			FROM addresses
			WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}
