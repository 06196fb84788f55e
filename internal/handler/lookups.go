package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/estatehub/internal/domain"
)

// LookupHandler serves the reference data listings and users point at:
// categories, roles, agencies and addresses
type LookupHandler struct {
	categories domain.CategoryRepository
	roles      domain.RoleRepository
	agencies   domain.AgencyRepository
	addresses  domain.AddressRepository
	logger     *slog.Logger
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(
	categories domain.CategoryRepository,
	roles domain.RoleRepository,
	agencies domain.AgencyRepository,
	addresses domain.AddressRepository,
	logger *slog.Logger,
) *LookupHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LookupHandler{
		categories: categories,
		roles:      roles,
		agencies:   agencies,
		addresses:  addresses,
		logger:     logger,
	}
}

type nameRequest struct {
	Name string `json:"name"`
}

type createRoleRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type createAgencyRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	Website   *string `json:"website"`
	AddressID *int64  `json:"address_id"`
}

type createAddressRequest struct {
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Categories handles GET /categories
func (h *LookupHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, categories, http.StatusOK)
}

// CreateCategory handles POST /categories
func (h *LookupHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, categoryCreateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, category, http.StatusCreated)
}

// Roles handles GET /roles
func (h *LookupHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, roles, http.StatusOK)
}

// CreateRole handles POST /roles
func (h *LookupHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := decodeBody(r, roleCreateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	role, err := h.roles.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, role, http.StatusCreated)
}

// Agencies handles GET /agencies
func (h *LookupHandler) Agencies(w http.ResponseWriter, r *http.Request) {
	agencies, err := h.agencies.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, agencies, http.StatusOK)
}

// Agency handles GET /agencies/{id}
func (h *LookupHandler) Agency(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	agency, err := h.agencies.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, agency, http.StatusOK)
}

// CreateAgency handles POST /agencies
func (h *LookupHandler) CreateAgency(w http.ResponseWriter, r *http.Request) {
	var req createAgencyRequest
	if err := decodeBody(r, agencyCreateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := bareEmail(agencyCreateSchema, "/email", req.Email); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	agency, err := h.agencies.Create(r.Context(), domain.NewAgency{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Website:   req.Website,
		AddressID: req.AddressID,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, agency, http.StatusCreated)
}

// AgencyListings handles GET /agencies/{id}/listings
func (h *LookupHandler) AgencyListings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	listings, err := h.agencies.ListListings(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, listings, http.StatusOK)
}

// CreateAddress handles POST /addresses
func (h *LookupHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req createAddressRequest
	if err := decodeBody(r, addressCreateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	addr, err := h.addresses.Create(r.Context(), req.Street, req.PostalCode, req.City, req.Country)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, addr, http.StatusCreated)
}

// Address handles GET /addresses/{id}
func (h *LookupHandler) Address(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	addr, err := h.addresses.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, addr, http.StatusOK)
}
