package api

import (
	"net/http"

	"github.com/onnwee/orgcatalog/internal/catalog"
)

// OrganizationHandlers holds dependencies for organization HTTP handlers.
type OrganizationHandlers struct {
	svc *catalog.Service
}

// NewOrganizationHandlers creates a new OrganizationHandlers instance.
func NewOrganizationHandlers(svc *catalog.Service) *OrganizationHandlers {
	return &OrganizationHandlers{svc: svc}
}

// List handles GET /organizations - lists organizations with optional pagination.
func (h *OrganizationHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	finish := cacheStatusContext(r)
	orgs, err := h.svc.ListOrganizations(r.Context(), r.URL.String(), page)
	finish()
	if err != nil {
		failFromService(w, r, err)
		return
	}

	if orgs == nil {
		orgs = []catalog.Organization{}
	}
	writeJSON(w, r.Context(), http.StatusOK, orgs)
}

// Get handles GET /organizations/{id} - fetches one organization with its
// building, phones, and activities.
func (h *OrganizationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	finish := cacheStatusContext(r)
	org, err := h.svc.GetOrganization(r.Context(), r.URL.String(), id)
	finish()
	if err != nil {
		failFromService(w, r, err)
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, org)
}

// ByName handles GET /organizations/by-name?name=... - searches organizations
// by case-insensitive name substring.
func (h *OrganizationHandlers) ByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "name is required")
		return
	}

	orgs, err := h.svc.FindOrganizationsByName(r.Context(), name)
	if err != nil {
		failFromService(w, r, err)
		return
	}

	if orgs == nil {
		orgs = []catalog.Organization{}
	}
	writeJSON(w, r.Context(), http.StatusOK, orgs)
}

// ByBuilding handles GET /organizations/by-building/{id} - lists organizations
// housed in the building.
func (h *OrganizationHandlers) ByBuilding(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	page, err := parsePage(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	finish := cacheStatusContext(r)
	orgs, err := h.svc.OrganizationsByBuilding(r.Context(), r.URL.String(), id, page)
	finish()
	if err != nil {
		failFromService(w, r, err)
		return
	}

	if orgs == nil {
		orgs = []catalog.Organization{}
	}
	writeJSON(w, r.Context(), http.StatusOK, orgs)
}

// ByActivity handles GET /organizations/by-activity/{id} - lists organizations
// associated with the activity or any of its descendants.
func (h *OrganizationHandlers) ByActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	page, err := parsePage(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	finish := cacheStatusContext(r)
	orgs, err := h.svc.OrganizationsByActivity(r.Context(), r.URL.String(), id, page)
	finish()
	if err != nil {
		failFromService(w, r, err)
		return
	}

	if orgs == nil {
		orgs = []catalog.Organization{}
	}
	writeJSON(w, r.Context(), http.StatusOK, orgs)
}

// ByLocation handles GET /organizations/by-location - lists organizations
// around a point, within either a radius in meters or a bounding rectangle.
//
// Query parameters: lat and lon (required), plus either radius or the full
// rectangle min_lat, max_lat, min_lon, max_lon.
func (h *OrganizationHandlers) ByLocation(w http.ResponseWriter, r *http.Request) {
	lat, err := requiredFloat(r, "lat")
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	lon, err := requiredFloat(r, "lon")
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	q := catalog.LocationQuery{Latitude: lat, Longitude: lon}
	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"radius", &q.RadiusMeters},
		{"min_lat", &q.MinLat},
		{"max_lat", &q.MaxLat},
		{"min_lon", &q.MinLng},
		{"max_lon", &q.MaxLng},
	} {
		v, err := queryFloat(r, p.name)
		if err != nil {
			fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		*p.dst = v
	}

	page, err := parsePage(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	finish := cacheStatusContext(r)
	orgs, err := h.svc.OrganizationsByLocation(r.Context(), r.URL.String(), q, page)
	finish()
	if err != nil {
		failFromService(w, r, err)
		return
	}

	if orgs == nil {
		orgs = []catalog.Organization{}
	}
	writeJSON(w, r.Context(), http.StatusOK, orgs)
}
