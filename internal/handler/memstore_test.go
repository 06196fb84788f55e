package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yourorg/estatehub/internal/domain"
)

// memStore is an in-memory stand-in for every repository. It enforces the
// constraints the schema enforces (unique email, foreign keys, cascades) and
// counts calls so tests can assert a request never reached storage.
type memStore struct {
	mu     sync.Mutex
	calls  int
	nextID int64

	roles         map[int64]*domain.Role
	addresses     map[int64]*domain.Address
	agencies      map[int64]*domain.Agency
	users         map[int64]*domain.User
	categories    map[int64]*domain.Category
	listings      map[int64]*domain.Listing
	images        map[int64]*domain.Image
	bids          map[int64]*domain.Bid
	favorites     map[[2]int64]*domain.Favorite
	viewings      map[int64]*domain.Viewing
	registrations map[int64]*domain.Registration
	reviews       map[int64]*domain.Review
}

func newMemStore() *memStore {
	return &memStore{
		roles:         map[int64]*domain.Role{},
		addresses:     map[int64]*domain.Address{},
		agencies:      map[int64]*domain.Agency{},
		users:         map[int64]*domain.User{},
		categories:    map[int64]*domain.Category{},
		listings:      map[int64]*domain.Listing{},
		images:        map[int64]*domain.Image{},
		bids:          map[int64]*domain.Bid{},
		favorites:     map[[2]int64]*domain.Favorite{},
		viewings:      map[int64]*domain.Viewing{},
		registrations: map[int64]*domain.Registration{},
		reviews:       map[int64]*domain.Review{},
	}
}

func (m *memStore) repositories() Repositories {
	return Repositories{
		Users:      memUsers{m},
		Roles:      memRoles{m},
		Listings:   memListings{m},
		Categories: memCategories{m},
		Images:     memImages{m},
		Bids:       memBids{m},
		Favorites:  memFavorites{m},
		Viewings:   memViewings{m},
		Reviews:    memReviews{m},
		Agencies:   memAgencies{m},
		Addresses:  memAddresses{m},
	}
}

func (m *memStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// enter locks the store and records a repository call
func (m *memStore) enter() func() {
	m.mu.Lock()
	m.calls++
	return m.mu.Unlock
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func notFound(op string) error { return domain.E(domain.KindNotFound, op, domain.ErrNotFound) }
func conflict(op string) error { return domain.E(domain.KindConflict, op, domain.ErrConflict) }

func sortedValues[T any](in map[int64]*T) []*T {
	keys := make([]int64, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		out = append(out, in[k])
	}
	return out
}

type memUsers struct{ m *memStore }

func (r memUsers) List(ctx context.Context) ([]*domain.User, error) {
	defer r.m.enter()()
	return sortedValues(r.m.users), nil
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	defer r.m.enter()()
	u, ok := r.m.users[id]
	if !ok {
		return nil, notFound("users.get")
	}
	return u, nil
}

func (r memUsers) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	defer r.m.enter()()
	for _, u := range r.m.users {
		if u.Email == in.Email {
			return nil, conflict("users.create")
		}
	}
	if _, ok := r.m.roles[in.RoleID]; !ok {
		return nil, conflict("users.create")
	}
	u := &domain.User{
		ID:           r.m.id(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		RoleID:       in.RoleID,
		AgencyID:     in.AgencyID,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	r.m.users[u.ID] = u
	return u, nil
}

func (r memUsers) UpdateName(ctx context.Context, id int64, firstName, lastName string) (*domain.User, error) {
	defer r.m.enter()()
	u, ok := r.m.users[id]
	if !ok {
		return nil, notFound("users.update")
	}
	u.FirstName, u.LastName = firstName, lastName
	return u, nil
}

func (r memUsers) Delete(ctx context.Context, id int64) error {
	defer r.m.enter()()
	if _, ok := r.m.users[id]; !ok {
		return notFound("users.delete")
	}
	delete(r.m.users, id)
	for k := range r.m.favorites {
		if k[0] == id {
			delete(r.m.favorites, k)
		}
	}
	return nil
}

func (r memUsers) ListFavorites(ctx context.Context, userID int64) ([]*domain.Listing, error) {
	defer r.m.enter()()
	out := []*domain.Listing{}
	for _, l := range sortedValues(r.m.listings) {
		if _, ok := r.m.favorites[[2]int64{userID, l.ID}]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

type memRoles struct{ m *memStore }

func (r memRoles) List(ctx context.Context) ([]*domain.Role, error) {
	defer r.m.enter()()
	return sortedValues(r.m.roles), nil
}

func (r memRoles) Create(ctx context.Context, name string, description *string) (*domain.Role, error) {
	defer r.m.enter()()
	for _, role := range r.m.roles {
		if role.Name == name {
			return nil, conflict("roles.create")
		}
	}
	role := &domain.Role{ID: r.m.id(), Name: name, Description: description}
	r.m.roles[role.ID] = role
	return role, nil
}

type memAddresses struct{ m *memStore }

func (r memAddresses) Create(ctx context.Context, street, postalCode, city, country string) (*domain.Address, error) {
	defer r.m.enter()()
	a := &domain.Address{ID: r.m.id(), Street: street, PostalCode: postalCode, City: city, Country: country}
	r.m.addresses[a.ID] = a
	return a, nil
}

func (r memAddresses) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	defer r.m.enter()()
	a, ok := r.m.addresses[id]
	if !ok {
		return nil, notFound("addresses.get")
	}
	return a, nil
}

type memAgencies struct{ m *memStore }

func (r memAgencies) List(ctx context.Context) ([]*domain.Agency, error) {
	defer r.m.enter()()
	return sortedValues(r.m.agencies), nil
}

func (r memAgencies) GetByID(ctx context.Context, id int64) (*domain.Agency, error) {
	defer r.m.enter()()
	a, ok := r.m.agencies[id]
	if !ok {
		return nil, notFound("agencies.get")
	}
	return a, nil
}

func (r memAgencies) Create(ctx context.Context, in domain.NewAgency) (*domain.Agency, error) {
	defer r.m.enter()()
	for _, a := range r.m.agencies {
		if a.Name == in.Name || a.Email == in.Email {
			return nil, conflict("agencies.create")
		}
	}
	a := &domain.Agency{ID: r.m.id(), Name: in.Name, Email: in.Email, Phone: in.Phone, Website: in.Website, AddressID: in.AddressID}
	r.m.agencies[a.ID] = a
	return a, nil
}

func (r memAgencies) ListListings(ctx context.Context, agencyID int64) ([]*domain.Listing, error) {
	defer r.m.enter()()
	out := []*domain.Listing{}
	for _, l := range sortedValues(r.m.listings) {
		if l.AgencyID != nil && *l.AgencyID == agencyID {
			out = append(out, l)
		}
	}
	return out, nil
}

type memCategories struct{ m *memStore }

func (r memCategories) List(ctx context.Context) ([]*domain.Category, error) {
	defer r.m.enter()()
	return sortedValues(r.m.categories), nil
}

func (r memCategories) Create(ctx context.Context, name string) (*domain.Category, error) {
	defer r.m.enter()()
	for _, c := range r.m.categories {
		if c.Name == name {
			return nil, conflict("categories.create")
		}
	}
	c := &domain.Category{ID: r.m.id(), Name: name}
	r.m.categories[c.ID] = c
	return c, nil
}

type memListings struct{ m *memStore }

func (r memListings) List(ctx context.Context) ([]*domain.Listing, error) {
	defer r.m.enter()()
	return sortedValues(r.m.listings), nil
}

func (r memListings) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	defer r.m.enter()()
	l, ok := r.m.listings[id]
	if !ok {
		return nil, notFound("listings.get")
	}
	return l, nil
}

func (r memListings) Create(ctx context.Context, in domain.NewListing) (*domain.Listing, error) {
	defer r.m.enter()()
	if _, ok := r.m.categories[in.CategoryID]; !ok {
		return nil, conflict("listings.create")
	}
	if _, ok := r.m.users[in.AgentID]; !ok {
		return nil, conflict("listings.create")
	}
	if in.AddressID != nil {
		if _, ok := r.m.addresses[*in.AddressID]; !ok {
			return nil, conflict("listings.create")
		}
	}
	status := in.Status
	if status == "" {
		status = domain.ListingStatusActive
	}
	l := &domain.Listing{
		ID:          r.m.id(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		LivingArea:  in.LivingArea,
		Rooms:       in.Rooms,
		AddressID:   in.AddressID,
		CategoryID:  in.CategoryID,
		AgentID:     in.AgentID,
		AgencyID:    in.AgencyID,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	r.m.listings[l.ID] = l
	return l, nil
}

func (r memListings) Update(ctx context.Context, id int64, title string, description *string, price int64) (*domain.Listing, error) {
	defer r.m.enter()()
	l, ok := r.m.listings[id]
	if !ok {
		return nil, notFound("listings.update")
	}
	l.Title, l.Description, l.Price = title, description, price
	return l, nil
}

func (r memListings) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Listing, error) {
	defer r.m.enter()()
	l, ok := r.m.listings[id]
	if !ok {
		return nil, notFound("listings.status")
	}
	l.Status = status
	return l, nil
}

func (r memListings) Delete(ctx context.Context, id int64) error {
	defer r.m.enter()()
	if _, ok := r.m.listings[id]; !ok {
		return notFound("listings.delete")
	}
	delete(r.m.listings, id)
	for k, b := range r.m.bids {
		if b.ListingID == id {
			delete(r.m.bids, k)
		}
	}
	for k, img := range r.m.images {
		if img.ListingID == id {
			delete(r.m.images, k)
		}
	}
	for k, v := range r.m.viewings {
		if v.ListingID == id {
			delete(r.m.viewings, k)
		}
	}
	for k := range r.m.favorites {
		if k[1] == id {
			delete(r.m.favorites, k)
		}
	}
	return nil
}

type memImages struct{ m *memStore }

func (r memImages) ListForListing(ctx context.Context, listingID int64) ([]*domain.Image, error) {
	defer r.m.enter()()
	out := []*domain.Image{}
	for _, img := range sortedValues(r.m.images) {
		if img.ListingID == listingID {
			out = append(out, img)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r memImages) Create(ctx context.Context, listingID int64, url string, description *string, position int64) (*domain.Image, error) {
	defer r.m.enter()()
	if _, ok := r.m.listings[listingID]; !ok {
		return nil, conflict("images.create")
	}
	img := &domain.Image{ID: r.m.id(), ListingID: listingID, URL: url, Description: description, Position: position}
	r.m.images[img.ID] = img
	return img, nil
}

type memBids struct{ m *memStore }

func (r memBids) ListForListing(ctx context.Context, listingID int64) ([]*domain.Bid, error) {
	defer r.m.enter()()
	out := []*domain.Bid{}
	for _, b := range sortedValues(r.m.bids) {
		if b.ListingID == listingID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out, nil
}

func (r memBids) GetByID(ctx context.Context, id int64) (*domain.Bid, error) {
	defer r.m.enter()()
	b, ok := r.m.bids[id]
	if !ok {
		return nil, notFound("bids.get")
	}
	return b, nil
}

func (r memBids) Create(ctx context.Context, listingID, bidderID, amount int64) (*domain.Bid, error) {
	defer r.m.enter()()
	if _, ok := r.m.listings[listingID]; !ok {
		return nil, conflict("bids.create")
	}
	if _, ok := r.m.users[bidderID]; !ok {
		return nil, conflict("bids.create")
	}
	b := &domain.Bid{ID: r.m.id(), ListingID: listingID, BidderID: bidderID, Amount: amount, CreatedAt: time.Now()}
	r.m.bids[b.ID] = b
	return b, nil
}

func (r memBids) Accept(ctx context.Context, id int64) (*domain.Bid, error) {
	defer r.m.enter()()
	b, ok := r.m.bids[id]
	if !ok {
		return nil, notFound("bids.accept")
	}
	b.IsAccepted = true
	return b, nil
}

func (r memBids) AcceptExclusive(ctx context.Context, id int64) (*domain.Bid, error) {
	defer r.m.enter()()
	b, ok := r.m.bids[id]
	if !ok {
		return nil, notFound("bids.accept_exclusive")
	}
	for _, other := range r.m.bids {
		if other.ListingID == b.ListingID && other.ID != id && other.IsAccepted {
			return nil, domain.Public(domain.KindConflict, "bids.accept_exclusive", "listing already has an accepted bid")
		}
	}
	b.IsAccepted = true
	return b, nil
}

type memFavorites struct{ m *memStore }

func (r memFavorites) Add(ctx context.Context, userID, listingID int64) (*domain.Favorite, error) {
	defer r.m.enter()()
	key := [2]int64{userID, listingID}
	if _, ok := r.m.favorites[key]; ok {
		return nil, conflict("favorites.add")
	}
	if _, ok := r.m.users[userID]; !ok {
		return nil, conflict("favorites.add")
	}
	if _, ok := r.m.listings[listingID]; !ok {
		return nil, conflict("favorites.add")
	}
	f := &domain.Favorite{UserID: userID, ListingID: listingID, CreatedAt: time.Now()}
	r.m.favorites[key] = f
	return f, nil
}

func (r memFavorites) Remove(ctx context.Context, userID, listingID int64) (*domain.Favorite, error) {
	defer r.m.enter()()
	key := [2]int64{userID, listingID}
	f, ok := r.m.favorites[key]
	if !ok {
		return nil, notFound("favorites.remove")
	}
	delete(r.m.favorites, key)
	return f, nil
}

type memViewings struct{ m *memStore }

func (r memViewings) ListForListing(ctx context.Context, listingID int64) ([]*domain.Viewing, error) {
	defer r.m.enter()()
	out := []*domain.Viewing{}
	for _, v := range sortedValues(r.m.viewings) {
		if v.ListingID == listingID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r memViewings) Create(ctx context.Context, listingID int64, start time.Time, end *time.Time) (*domain.Viewing, error) {
	defer r.m.enter()()
	if _, ok := r.m.listings[listingID]; !ok {
		return nil, conflict("viewings.create")
	}
	v := &domain.Viewing{ID: r.m.id(), ListingID: listingID, StartTime: start, EndTime: end}
	r.m.viewings[v.ID] = v
	return v, nil
}

func (r memViewings) Register(ctx context.Context, viewingID, userID int64) (*domain.Registration, error) {
	defer r.m.enter()()
	if _, ok := r.m.viewings[viewingID]; !ok {
		return nil, conflict("viewings.register")
	}
	for _, reg := range r.m.registrations {
		if reg.ViewingID == viewingID && reg.UserID == userID {
			return nil, conflict("viewings.register")
		}
	}
	reg := &domain.Registration{ID: r.m.id(), ViewingID: viewingID, UserID: userID, RegisteredAt: time.Now()}
	r.m.registrations[reg.ID] = reg
	return reg, nil
}

func (r memViewings) ListRegistrations(ctx context.Context, viewingID int64) ([]*domain.Registration, error) {
	defer r.m.enter()()
	out := []*domain.Registration{}
	for _, reg := range sortedValues(r.m.registrations) {
		if reg.ViewingID == viewingID {
			out = append(out, reg)
		}
	}
	return out, nil
}

type memReviews struct{ m *memStore }

func (r memReviews) ListForAgent(ctx context.Context, agentID int64) ([]*domain.Review, error) {
	defer r.m.enter()()
	out := []*domain.Review{}
	for _, rv := range sortedValues(r.m.reviews) {
		if rv.AgentID == agentID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r memReviews) Create(ctx context.Context, agentID, reviewerID int64, rating int, comment *string) (*domain.Review, error) {
	defer r.m.enter()()
	if _, ok := r.m.users[agentID]; !ok {
		return nil, conflict("reviews.create")
	}
	if _, ok := r.m.users[reviewerID]; !ok {
		return nil, conflict("reviews.create")
	}
	rv := &domain.Review{ID: r.m.id(), AgentID: agentID, ReviewerID: reviewerID, Rating: rating, Comment: comment, CreatedAt: time.Now()}
	r.m.reviews[rv.ID] = rv
	return rv, nil
}
