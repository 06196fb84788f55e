package repository

import (
	"context"
	"sync"
	"time"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/observability/metrics"
	"github.com/yourorg/estatehub/pkg/cache"
)

const lookupKey = "list"

// cachedList holds one lookup table's list. version is bumped on every write so
// a read that started before the write never stores what it loaded.
type cachedList[T any] struct {
	table   string
	cache   *cache.Cache[[]*T]
	mu      sync.Mutex
	version uint64
}

func newCachedList[T any](table string, ttl time.Duration) *cachedList[T] {
	return &cachedList[T]{table: table, cache: cache.New[[]*T](ttl)}
}

func (c *cachedList[T]) get(ctx context.Context, load func(context.Context) ([]*T, error)) ([]*T, error) {
	if rows, ok := c.cache.Get(lookupKey); ok {
		metrics.ObserveCacheLookup(c.table, true)
		return rows, nil
	}
	metrics.ObserveCacheLookup(c.table, false)

	c.mu.Lock()
	started := c.version
	c.mu.Unlock()

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.version == started {
		c.cache.Set(lookupKey, rows)
	}
	c.mu.Unlock()
	return rows, nil
}

func (c *cachedList[T]) invalidate() {
	c.mu.Lock()
	c.version++
	c.cache.Delete(lookupKey)
	c.mu.Unlock()
}

// CachedCategoryRepository serves category lists from memory for ttl and drops
// the cached list whenever this process creates a category.
type CachedCategoryRepository struct {
	next domain.CategoryRepository
	list *cachedList[domain.Category]
}

// NewCachedCategoryRepository wraps next with a TTL cache
func NewCachedCategoryRepository(next domain.CategoryRepository, ttl time.Duration) *CachedCategoryRepository {
	return &CachedCategoryRepository{next: next, list: newCachedList[domain.Category]("categories", ttl)}
}

func (r *CachedCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return r.list.get(ctx, r.next.List)
}

func (r *CachedCategoryRepository) Create(ctx context.Context, name string) (*domain.Category, error) {
	category, err := r.next.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	r.list.invalidate()
	return category, nil
}

// CachedRoleRepository is the role counterpart of CachedCategoryRepository
type CachedRoleRepository struct {
	next domain.RoleRepository
	list *cachedList[domain.Role]
}

// NewCachedRoleRepository wraps next with a TTL cache
func NewCachedRoleRepository(next domain.RoleRepository, ttl time.Duration) *CachedRoleRepository {
	return &CachedRoleRepository{next: next, list: newCachedList[domain.Role]("roles", ttl)}
}

func (r *CachedRoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	return r.list.get(ctx, r.next.List)
}

func (r *CachedRoleRepository) Create(ctx context.Context, name string, description *string) (*domain.Role, error) {
	role, err := r.next.Create(ctx, name, description)
	if err != nil {
		return nil, err
	}
	r.list.invalidate()
	return role, nil
}
