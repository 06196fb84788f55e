package repository

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/pkg/database"
)

// openTestPool connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when the variable is unset.
func openTestPool(t *testing.T) *database.ConnectionPool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	pool := database.NewFromDB(db, "postgres", slog.New(slog.NewJSONHandler(io.Discard, nil)))
	t.Cleanup(func() { pool.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := database.Migrate(ctx, pool, database.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.GetDB().ExecContext(ctx, `
		TRUNCATE agent_reviews, viewing_registrations, viewings, favorites, bids, images,
			listings, listing_categories, users, agencies, addresses, roles
		RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

type fixture struct {
	users      *PostgresUserRepository
	listings   *PostgresListingRepository
	bids       *PostgresBidRepository
	images     *PostgresImageRepository
	favorites  *PostgresFavoriteRepository
	agentID    int64
	categoryID int64
	addressID  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := openTestPool(t)
	ctx := context.Background()

	role, err := NewPostgresRoleRepository(pool, nil).Create(ctx, "agent", nil)
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	cat, err := NewPostgresCategoryRepository(pool, nil).Create(ctx, "apartment")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	addr, err := NewPostgresAddressRepository(pool, nil).Create(ctx, "Main Street 1", "11122", "Stockholm", "Sweden")
	if err != nil {
		t.Fatalf("create address: %v", err)
	}

	f := &fixture{
		users:      NewPostgresUserRepository(pool, nil),
		listings:   NewPostgresListingRepository(pool, nil),
		bids:       NewPostgresBidRepository(pool, nil),
		images:     NewPostgresImageRepository(pool, nil),
		favorites:  NewPostgresFavoriteRepository(pool, nil),
		categoryID: cat.ID,
		addressID:  addr.ID,
	}

	agent, err := f.users.Create(ctx, domain.NewUser{
		Email:        "agent@example.com",
		PasswordHash: "x",
		FirstName:    "Ada",
		LastName:     "Agent",
		RoleID:       role.ID,
	})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	f.agentID = agent.ID
	return f
}

func (f *fixture) listing(t *testing.T, price int64) *domain.Listing {
	t.Helper()
	l, err := f.listings.Create(context.Background(), domain.NewListing{
		Title:      "Flat",
		Price:      price,
		AddressID:  &f.addressID,
		CategoryID: f.categoryID,
		AgentID:    f.agentID,
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

func TestUserEmailUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	agent, err := f.users.GetByID(ctx, f.agentID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if agent.Email != "agent@example.com" || !agent.IsActive {
		t.Errorf("unexpected user: %+v", agent)
	}

	_, err = f.users.Create(ctx, domain.NewUser{
		Email:        "agent@example.com",
		PasswordHash: "y",
		FirstName:    "Other",
		LastName:     "Agent",
		RoleID:       agent.RoleID,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestListingDeleteThenNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, 100)

	if l.Status != domain.ListingStatusActive {
		t.Errorf("expected default status active, got %q", l.Status)
	}
	if err := f.listings.Delete(ctx, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.listings.GetByID(ctx, l.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := f.listings.Delete(ctx, l.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListingStatusCheckConstraint(t *testing.T) {
	f := newFixture(t)
	l := f.listing(t, 100)

	_, err := f.listings.UpdateStatus(context.Background(), l.ID, "demolished")
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation kind, got %v", err)
	}
}

func TestBidOrderingAndAcceptance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, 100)

	var ids []int64
	for _, amount := range []int64{150, 300, 200} {
		b, err := f.bids.Create(ctx, l.ID, f.agentID, amount)
		if err != nil {
			t.Fatalf("create bid: %v", err)
		}
		ids = append(ids, b.ID)
	}

	bids, err := f.bids.ListForListing(ctx, l.ID)
	if err != nil {
		t.Fatalf("list bids: %v", err)
	}
	if len(bids) != 3 || bids[0].Amount != 300 || bids[1].Amount != 200 || bids[2].Amount != 150 {
		t.Fatalf("bids not ordered by amount desc: %+v", bids)
	}

	if _, err := f.bids.Accept(ctx, ids[0]); err != nil {
		t.Fatalf("accept: %v", err)
	}
	other, err := f.bids.GetByID(ctx, ids[1])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if other.IsAccepted {
		t.Errorf("accepting one bid flipped another")
	}

	_, err = f.bids.AcceptExclusive(ctx, ids[1])
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected exclusive accept to conflict, got %v", err)
	}
	if _, err := f.bids.AcceptExclusive(ctx, ids[0]); err != nil {
		t.Fatalf("re-accepting the accepted bid: %v", err)
	}
	if _, err := f.bids.AcceptExclusive(ctx, 999999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBidRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	l := f.listing(t, 100)

	_, err := f.bids.Create(context.Background(), l.ID, f.agentID, 0)
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation kind, got %v", err)
	}
}

func TestImagesOrderedByPosition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, 100)

	for _, pos := range []int64{3, 1, 2} {
		if _, err := f.images.Create(ctx, l.ID, "https://img.example.com/a.jpg", nil, pos); err != nil {
			t.Fatalf("create image: %v", err)
		}
	}

	images, err := f.images.ListForListing(ctx, l.ID)
	if err != nil {
		t.Fatalf("list images: %v", err)
	}
	for i := 1; i < len(images); i++ {
		if images[i-1].Position > images[i].Position {
			t.Fatalf("images not ordered by position: %+v", images)
		}
	}
}

func TestFavoritesCascadeWithListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, 100)

	if _, err := f.favorites.Add(ctx, f.agentID, l.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	if _, err := f.favorites.Add(ctx, f.agentID, l.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected duplicate favorite to conflict, got %v", err)
	}

	favs, err := f.users.ListFavorites(ctx, f.agentID)
	if err != nil || len(favs) != 1 {
		t.Fatalf("expected one favorite, got %d (%v)", len(favs), err)
	}

	if err := f.listings.Delete(ctx, l.ID); err != nil {
		t.Fatalf("delete listing: %v", err)
	}
	favs, err = f.users.ListFavorites(ctx, f.agentID)
	if err != nil || len(favs) != 0 {
		t.Fatalf("expected favorites to cascade, got %d (%v)", len(favs), err)
	}
	if _, err := f.favorites.Remove(ctx, f.agentID, l.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := openTestPool(t)
	applied, err := database.Migrate(context.Background(), pool, database.Migrations())
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected nothing to apply, got %v", applied)
	}
}
