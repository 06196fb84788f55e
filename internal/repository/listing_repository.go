package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/pkg/database"
)

const listingColumns = `id, title, description, price, living_area, rooms, address_id, category_id, agent_id, agency_id, status, created_at`

const qualifiedListingColumns = `l.id, l.title, l.description, l.price, l.living_area, l.rooms, l.address_id, l.category_id, l.agent_id, l.agency_id, l.status, l.created_at`

// PostgresListingRepository implements domain.ListingRepository using PostgreSQL
type PostgresListingRepository struct {
	postgres
}

// NewPostgresListingRepository creates a new listing repository
func NewPostgresListingRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresListingRepository {
	return &PostgresListingRepository{postgres: newPostgres(pool, logger)}
}

// List returns every listing
func (r *PostgresListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	listings := []*domain.Listing{}
	err := r.run(ctx, "listings.list", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &listings, `SELECT `+listingColumns+` FROM listings ORDER BY id`)
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// GetByID retrieves a listing by ID
func (r *PostgresListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	listing := &domain.Listing{}
	err := r.run(ctx, "listings.get", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, listing, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// Create inserts a listing. An empty status falls back to the column default.
func (r *PostgresListingRepository) Create(ctx context.Context, in domain.NewListing) (*domain.Listing, error) {
	listing := &domain.Listing{}
	query := `
		INSERT INTO listings
			(title, description, price, living_area, rooms, address_id, category_id, agent_id, agency_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE(NULLIF($10, ''), 'active'))
		RETURNING ` + listingColumns

	err := r.run(ctx, "listings.create", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, listing, query,
			in.Title,
			in.Description,
			in.Price,
			in.LivingArea,
			in.Rooms,
			in.AddressID,
			in.CategoryID,
			in.AgentID,
			in.AgencyID,
			in.Status,
		)
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// Update changes title, description and price
func (r *PostgresListingRepository) Update(ctx context.Context, id int64, title string, description *string, price int64) (*domain.Listing, error) {
	listing := &domain.Listing{}
	query := `
		UPDATE listings
		SET title = $1, description = $2, price = $3
		WHERE id = $4
		RETURNING ` + listingColumns

	err := r.run(ctx, "listings.update", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, listing, query, title, description, price, id)
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// UpdateStatus sets the status column. Any allowed status may follow any other.
func (r *PostgresListingRepository) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Listing, error) {
	listing := &domain.Listing{}
	query := `
		UPDATE listings
		SET status = $1
		WHERE id = $2
		RETURNING ` + listingColumns

	err := r.run(ctx, "listings.update_status", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, listing, query, status, id)
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes a listing together with its images, bids, viewings and favorites
func (r *PostgresListingRepository) Delete(ctx context.Context, id int64) error {
	return r.run(ctx, "listings.delete", func(ctx context.Context, q database.Querier) error {
		return execOne(ctx, q, `DELETE FROM listings WHERE id = $1`, id)
	})
}

// PostgresCategoryRepository implements domain.CategoryRepository using PostgreSQL
type PostgresCategoryRepository struct {
	postgres
}

// NewPostgresCategoryRepository creates a new category repository
func NewPostgresCategoryRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{postgres: newPostgres(pool, logger)}
}

// List returns all listing categories
func (r *PostgresCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	err := r.run(ctx, "categories.list", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &categories, `SELECT id, name FROM listing_categories ORDER BY id`)
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Create inserts a listing category
func (r *PostgresCategoryRepository) Create(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.run(ctx, "categories.create", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, category, `INSERT INTO listing_categories (name) VALUES ($1) RETURNING id, name`, name)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// execOne runs a statement that must affect exactly one row; zero rows means not found
func execOne(ctx context.Context, q database.Querier, query string, args ...interface{}) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
