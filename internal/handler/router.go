package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/observability/metrics"
	"github.com/yourorg/estatehub/internal/observability/tracing"
	"github.com/yourorg/estatehub/internal/security/audit"
	"github.com/yourorg/estatehub/internal/security/middleware"
	"github.com/yourorg/estatehub/internal/security/ratelimit"
	"github.com/yourorg/estatehub/pkg/database"
)

const defaultMaxBodyBytes = 1 << 20

// Repositories is the data access the API is served from
type Repositories struct {
	Users      domain.UserRepository
	Roles      domain.RoleRepository
	Listings   domain.ListingRepository
	Categories domain.CategoryRepository
	Images     domain.ImageRepository
	Bids       domain.BidRepository
	Favorites  domain.FavoriteRepository
	Viewings   domain.ViewingRepository
	Reviews    domain.ReviewRepository
	Agencies   domain.AgencyRepository
	Addresses  domain.AddressRepository
}

// Options configures the optional parts of the HTTP stack. Nil fields switch
// the matching middleware off.
type Options struct {
	Logger             *slog.Logger
	Conns              database.Acquirer
	Limiter            ratelimit.Allower
	Audit              *audit.Logger
	CORSAllowedOrigins []string
	ExclusiveBidAccept bool
	HealthChecks       map[string]Check
	MaxBodyBytes       int64
}

// NewRouter wires every route onto a gorilla/mux router and wraps it with the
// request-level middleware chain
func NewRouter(repos Repositories, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	users := NewUserHandler(repos.Users, log)
	listings := NewListingHandler(repos.Listings, repos.Images, log)
	bids := NewBidHandler(repos.Bids, opts.ExclusiveBidAccept, log)
	favorites := NewFavoriteHandler(repos.Favorites, log)
	viewings := NewViewingHandler(repos.Viewings, log)
	reviews := NewReviewHandler(repos.Reviews, log)
	lookups := NewLookupHandler(repos.Categories, repos.Roles, repos.Agencies, repos.Addresses, log)
	health := NewHealthHandler(opts.HealthChecks, log)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, ErrorResponse{Error: "route not found", Kind: domain.KindNotFound}, http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, ErrorResponse{Error: "method not allowed", Kind: domain.KindValidation}, http.StatusMethodNotAllowed)
	})
	r.Use(metrics.HTTPMetricsMiddleware)

	r.HandleFunc("/healthz", health.Health).Methods(http.MethodGet)
	r.HandleFunc("/readyz", health.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(middleware.MaxBodySize(opts.MaxBodyBytes))
	api.Use(middleware.ValidateJSONContentType(log))
	if opts.Limiter != nil {
		api.Use(middleware.RateLimitMiddleware(opts.Limiter, log))
	}
	if opts.Audit != nil {
		api.Use(middleware.AuditMiddleware(opts.Audit))
	}
	if opts.Conns != nil {
		api.Use(database.ConnMiddleware(opts.Conns, log))
	}

	api.HandleFunc("/users", users.List).Methods(http.MethodGet)
	api.HandleFunc("/users", users.Create).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", users.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", users.Update).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", users.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/favorites", users.Favorites).Methods(http.MethodGet)

	api.HandleFunc("/roles", lookups.Roles).Methods(http.MethodGet)
	api.HandleFunc("/roles", lookups.CreateRole).Methods(http.MethodPost)

	api.HandleFunc("/listings", listings.List).Methods(http.MethodGet)
	api.HandleFunc("/listings", listings.Create).Methods(http.MethodPost)
	api.HandleFunc("/listings/{id}", listings.Get).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id}", listings.Update).Methods(http.MethodPut)
	api.HandleFunc("/listings/{id}", listings.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/listings/{id}/status", listings.UpdateStatus).Methods(http.MethodPatch)
	api.HandleFunc("/listings/{id}/images", listings.Images).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id}/images", listings.AddImage).Methods(http.MethodPost)

	api.HandleFunc("/listings/{id}/bids", bids.List).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id}/bids", bids.Create).Methods(http.MethodPost)
	api.HandleFunc("/bids/{id}", bids.Get).Methods(http.MethodGet)
	api.HandleFunc("/bids/{id}/accept", bids.Accept).Methods(http.MethodPatch)

	api.HandleFunc("/favorites", favorites.Add).Methods(http.MethodPost)
	api.HandleFunc("/favorites", favorites.Remove).Methods(http.MethodDelete)

	api.HandleFunc("/listings/{id}/viewings", viewings.List).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id}/viewings", viewings.Create).Methods(http.MethodPost)
	api.HandleFunc("/viewings/{id}/registrations", viewings.Registrations).Methods(http.MethodGet)
	api.HandleFunc("/viewings/{id}/registrations", viewings.Register).Methods(http.MethodPost)

	api.HandleFunc("/agents/{id}/reviews", reviews.List).Methods(http.MethodGet)
	api.HandleFunc("/agents/{id}/reviews", reviews.Create).Methods(http.MethodPost)

	api.HandleFunc("/categories", lookups.Categories).Methods(http.MethodGet)
	api.HandleFunc("/categories", lookups.CreateCategory).Methods(http.MethodPost)
	api.HandleFunc("/agencies", lookups.Agencies).Methods(http.MethodGet)
	api.HandleFunc("/agencies", lookups.CreateAgency).Methods(http.MethodPost)
	api.HandleFunc("/agencies/{id}", lookups.Agency).Methods(http.MethodGet)
	api.HandleFunc("/agencies/{id}/listings", lookups.AgencyListings).Methods(http.MethodGet)
	api.HandleFunc("/addresses", lookups.CreateAddress).Methods(http.MethodPost)
	api.HandleFunc("/addresses/{id}", lookups.Address).Methods(http.MethodGet)

	var h http.Handler = r
	h = middleware.CORS(opts.CORSAllowedOrigins)(h)
	h = middleware.Recovery(log)(h)
	h = middleware.RequestID(log)(h)
	return tracing.Handler(h, "estatehub")
}
