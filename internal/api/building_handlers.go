// Package api provides HTTP handlers for the organization catalog API.
package api

import (
	"net/http"

	"github.com/onnwee/orgcatalog/internal/catalog"
)

// BuildingHandlers holds dependencies for building HTTP handlers.
type BuildingHandlers struct {
	svc *catalog.Service
}

// NewBuildingHandlers creates a new BuildingHandlers instance.
func NewBuildingHandlers(svc *catalog.Service) *BuildingHandlers {
	return &BuildingHandlers{svc: svc}
}

// List handles GET /buildings - lists buildings with optional pagination.
func (h *BuildingHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	finish := cacheStatusContext(r)
	buildings, err := h.svc.ListBuildings(r.Context(), r.URL.String(), page)
	finish()
	if err != nil {
		failFromService(w, r, err)
		return
	}

	if buildings == nil {
		buildings = []catalog.Building{}
	}
	writeJSON(w, r.Context(), http.StatusOK, buildings)
}

// Get handles GET /buildings/{id} - fetches one building.
func (h *BuildingHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	finish := cacheStatusContext(r)
	building, err := h.svc.GetBuilding(r.Context(), r.URL.String(), id)
	finish()
	if err != nil {
		failFromService(w, r, err)
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, building)
}

// ByAddress handles GET /buildings/by-address?address=... - finds the first
// building whose address contains the given substring.
func (h *BuildingHandlers) ByAddress(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, "address is required")
		return
	}

	finish := cacheStatusContext(r)
	building, err := h.svc.FindBuildingByAddress(r.Context(), r.URL.String(), address)
	finish()
	if err != nil {
		failFromService(w, r, err)
		return
	}

	writeJSON(w, r.Context(), http.StatusOK, building)
}
