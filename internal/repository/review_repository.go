package repository

import (
	"context"
	"log/slog"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/pkg/database"
)

const reviewColumns = `id, agent_id, reviewer_id, rating, comment, created_at`

// PostgresReviewRepository implements domain.ReviewRepository using PostgreSQL
type PostgresReviewRepository struct {
	postgres
}

// NewPostgresReviewRepository creates a new review repository
func NewPostgresReviewRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresReviewRepository {
	return &PostgresReviewRepository{postgres: newPostgres(pool, logger)}
}

// ListForAgent returns the reviews left for an agent
func (r *PostgresReviewRepository) ListForAgent(ctx context.Context, agentID int64) ([]*domain.Review, error) {
	reviews := []*domain.Review{}
	err := r.run(ctx, "reviews.list", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &reviews, `
			SELECT `+reviewColumns+`
			FROM agent_reviews
			WHERE agent_id = $1
			ORDER BY id`, agentID)
	})
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// Create stores a review. One review per (agent, reviewer) pair.
func (r *PostgresReviewRepository) Create(ctx context.Context, agentID, reviewerID int64, rating int, comment *string) (*domain.Review, error) {
	review := &domain.Review{}
	err := r.run(ctx, "reviews.create", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, review, `
			INSERT INTO agent_reviews (agent_id, reviewer_id, rating, comment)
			VALUES ($1, $2, $3, $4)
			RETURNING `+reviewColumns, agentID, reviewerID, rating, comment)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// PostgresImageRepository implements domain.ImageRepository using PostgreSQL
type PostgresImageRepository struct {
	postgres
}

// NewPostgresImageRepository creates a new image repository
func NewPostgresImageRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresImageRepository {
	return &PostgresImageRepository{postgres: newPostgres(pool, logger)}
}

// ListForListing returns a listing's images by ascending position
func (r *PostgresImageRepository) ListForListing(ctx context.Context, listingID int64) ([]*domain.Image, error) {
	images := []*domain.Image{}
	err := r.run(ctx, "images.list", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &images, `
			SELECT id, listing_id, url, description, position
			FROM images
			WHERE listing_id = $1
			ORDER BY position ASC, id ASC`, listingID)
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// Create attaches an image to a listing
func (r *PostgresImageRepository) Create(ctx context.Context, listingID int64, url string, description *string, position int64) (*domain.Image, error) {
	image := &domain.Image{}
	err := r.run(ctx, "images.create", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, image, `
			INSERT INTO images (listing_id, url, description, position)
			VALUES ($1, $2, $3, $4)
			RETURNING id, listing_id, url, description, position`, listingID, url, description, position)
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}
