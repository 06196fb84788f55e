package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/pkg/database"
)

// PostgresViewingRepository implements domain.ViewingRepository using PostgreSQL
type PostgresViewingRepository struct {
	postgres
}

// NewPostgresViewingRepository creates a new viewing repository
func NewPostgresViewingRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresViewingRepository {
	return &PostgresViewingRepository{postgres: newPostgres(pool, logger)}
}

// ListForListing returns the viewings scheduled for a listing
func (r *PostgresViewingRepository) ListForListing(ctx context.Context, listingID int64) ([]*domain.Viewing, error) {
	viewings := []*domain.Viewing{}
	err := r.run(ctx, "viewings.list", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &viewings, `
			SELECT id, listing_id, start_time, end_time
			FROM viewings
			WHERE listing_id = $1
			ORDER BY id`, listingID)
	})
	if err != nil {
		return nil, err
	}
	return viewings, nil
}

// Create schedules a viewing. end may be nil; when set the database requires it
// to be after start.
func (r *PostgresViewingRepository) Create(ctx context.Context, listingID int64, start time.Time, end *time.Time) (*domain.Viewing, error) {
	viewing := &domain.Viewing{}
	err := r.run(ctx, "viewings.create", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, viewing, `
			INSERT INTO viewings (listing_id, start_time, end_time)
			VALUES ($1, $2, $3)
			RETURNING id, listing_id, start_time, end_time`, listingID, start, end)
	})
	if err != nil {
		return nil, err
	}
	return viewing, nil
}

// Register signs a user up for a viewing. A second registration of the same pair is a conflict.
func (r *PostgresViewingRepository) Register(ctx context.Context, viewingID, userID int64) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := r.run(ctx, "viewings.register", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, reg, `
			INSERT INTO viewing_registrations (viewing_id, user_id)
			VALUES ($1, $2)
			RETURNING id, viewing_id, user_id, registered_at`, viewingID, userID)
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// ListRegistrations returns the registrations for a viewing
func (r *PostgresViewingRepository) ListRegistrations(ctx context.Context, viewingID int64) ([]*domain.Registration, error) {
	regs := []*domain.Registration{}
	err := r.run(ctx, "viewings.registrations", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &regs, `
			SELECT id, viewing_id, user_id, registered_at
			FROM viewing_registrations
			WHERE viewing_id = $1
			ORDER BY registered_at, id`, viewingID)
	})
	if err != nil {
		return nil, err
	}
	return regs, nil
}
