package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/pkg/database"
)

const bidColumns = `id, listing_id, bidder_id, amount, is_accepted, created_at`

// PostgresBidRepository implements domain.BidRepository using PostgreSQL
type PostgresBidRepository struct {
	postgres
}

// NewPostgresBidRepository creates a new bid repository
func NewPostgresBidRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresBidRepository {
	return &PostgresBidRepository{postgres: newPostgres(pool, logger)}
}

// ListForListing returns the bids on a listing, highest amount first
func (r *PostgresBidRepository) ListForListing(ctx context.Context, listingID int64) ([]*domain.Bid, error) {
	bids := []*domain.Bid{}
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE listing_id = $1
		ORDER BY amount DESC, id ASC`

	err := r.run(ctx, "bids.list", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &bids, query, listingID)
	})
	if err != nil {
		return nil, err
	}
	return bids, nil
}

// GetByID retrieves a bid by ID
func (r *PostgresBidRepository) GetByID(ctx context.Context, id int64) (*domain.Bid, error) {
	bid := &domain.Bid{}
	err := r.run(ctx, "bids.get", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, bid, `SELECT `+bidColumns+` FROM bids WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// Create places a bid on a listing
func (r *PostgresBidRepository) Create(ctx context.Context, listingID, bidderID, amount int64) (*domain.Bid, error) {
	bid := &domain.Bid{}
	query := `
		INSERT INTO bids (listing_id, bidder_id, amount)
		VALUES ($1, $2, $3)
		RETURNING ` + bidColumns

	err := r.run(ctx, "bids.create", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, bid, query, listingID, bidderID, amount)
	})
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// Accept flips the accepted flag of one bid. Other bids on the listing and the
// listing status are left as they are.
func (r *PostgresBidRepository) Accept(ctx context.Context, id int64) (*domain.Bid, error) {
	bid := &domain.Bid{}
	query := `
		UPDATE bids
		SET is_accepted = TRUE
		WHERE id = $1
		RETURNING ` + bidColumns

	err := r.run(ctx, "bids.accept", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, bid, query, id)
	})
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// AcceptExclusive accepts a bid inside a transaction holding the listing row
// lock, failing with a conflict when another bid on the listing is already
// accepted. Accepting an already accepted bid again succeeds.
func (r *PostgresBidRepository) AcceptExclusive(ctx context.Context, id int64) (*domain.Bid, error) {
	const op = "bids.accept_exclusive"
	bid := &domain.Bid{}

	err := r.tx(ctx, op, func(ctx context.Context, tx *sqlx.Tx) error {
		var listingID int64
		if err := tx.GetContext(ctx, &listingID, `SELECT listing_id FROM bids WHERE id = $1`, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `SELECT id FROM listings WHERE id = $1 FOR UPDATE`, listingID); err != nil {
			return err
		}

		var accepted int
		if err := tx.GetContext(ctx, &accepted, `
			SELECT COUNT(1) FROM bids
			WHERE listing_id = $1 AND is_accepted AND id <> $2`, listingID, id); err != nil {
			return err
		}
		if accepted > 0 {
			return domain.Public(domain.KindConflict, op,
				fmt.Sprintf("listing %d already has an accepted bid", listingID))
		}

		return tx.GetContext(ctx, bid, `
			UPDATE bids
			SET is_accepted = TRUE
			WHERE id = $1
			RETURNING `+bidColumns, id)
	})
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// PostgresFavoriteRepository implements domain.FavoriteRepository using PostgreSQL
type PostgresFavoriteRepository struct {
	postgres
}

// NewPostgresFavoriteRepository creates a new favorite repository
func NewPostgresFavoriteRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{postgres: newPostgres(pool, logger)}
}

// Add bookmarks a listing for a user. Adding the same pair twice is a conflict.
func (r *PostgresFavoriteRepository) Add(ctx context.Context, userID, listingID int64) (*domain.Favorite, error) {
	fav := &domain.Favorite{}
	err := r.run(ctx, "favorites.add", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, fav, `
			INSERT INTO favorites (user_id, listing_id)
			VALUES ($1, $2)
			RETURNING user_id, listing_id, created_at`, userID, listingID)
	})
	if err != nil {
		return nil, err
	}
	return fav, nil
}

// Remove deletes a bookmark and returns it
func (r *PostgresFavoriteRepository) Remove(ctx context.Context, userID, listingID int64) (*domain.Favorite, error) {
	fav := &domain.Favorite{}
	err := r.run(ctx, "favorites.remove", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, fav, `
			DELETE FROM favorites
			WHERE user_id = $1 AND listing_id = $2
			RETURNING user_id, listing_id, created_at`, userID, listingID)
	})
	if err != nil {
		return nil, err
	}
	return fav, nil
}
