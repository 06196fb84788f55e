package repository

import (
	"context"
	"log/slog"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/pkg/database"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, role_id, agency_id, is_active, created_at`

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	postgres
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresUserRepository {
	return &PostgresUserRepository{postgres: newPostgres(pool, logger)}
}

// List returns every user
func (r *PostgresUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users := []*domain.User{}
	err := r.run(ctx, "users.list", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user := &domain.User{}
	err := r.run(ctx, "users.get", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a user and returns the stored row
func (r *PostgresUserRepository) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	user := &domain.User{}
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, phone, role_id, agency_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	err := r.run(ctx, "users.create", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, user, query,
			in.Email,
			in.PasswordHash,
			in.FirstName,
			in.LastName,
			in.Phone,
			in.RoleID,
			in.AgencyID,
		)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateName changes the first and last name of a user
func (r *PostgresUserRepository) UpdateName(ctx context.Context, id int64, firstName, lastName string) (*domain.User, error) {
	user := &domain.User{}
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2
		WHERE id = $3
		RETURNING ` + userColumns

	err := r.run(ctx, "users.update", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, user, query, firstName, lastName, id)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user. Listings, bids, favorites and reviews of the user cascade.
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	return r.run(ctx, "users.delete", func(ctx context.Context, q database.Querier) error {
		return execOne(ctx, q, `DELETE FROM users WHERE id = $1`, id)
	})
}

// ListFavorites returns the listings a user has bookmarked
func (r *PostgresUserRepository) ListFavorites(ctx context.Context, userID int64) ([]*domain.Listing, error) {
	listings := []*domain.Listing{}
	query := `
		SELECT ` + qualifiedListingColumns + `
		FROM listings l
		JOIN favorites f ON l.id = f.listing_id
		WHERE f.user_id = $1
		ORDER BY f.created_at, l.id`

	err := r.run(ctx, "users.favorites", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &listings, query, userID)
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// PostgresRoleRepository implements domain.RoleRepository using PostgreSQL
type PostgresRoleRepository struct {
	postgres
}

// NewPostgresRoleRepository creates a new role repository
func NewPostgresRoleRepository(pool *database.ConnectionPool, logger *slog.Logger) *PostgresRoleRepository {
	return &PostgresRoleRepository{postgres: newPostgres(pool, logger)}
}

// List returns all roles
func (r *PostgresRoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	roles := []*domain.Role{}
	err := r.run(ctx, "roles.list", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &roles, `SELECT id, name, description FROM roles ORDER BY id`)
	})
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// Create inserts a role
func (r *PostgresRoleRepository) Create(ctx context.Context, name string, description *string) (*domain.Role, error) {
	role := &domain.Role{}
	err := r.run(ctx, "roles.create", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, role, `
			INSERT INTO roles (name, description)
			VALUES ($1, $2)
			RETURNING id, name, description`, name, description)
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}
