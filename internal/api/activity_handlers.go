package api

import (
	"net/http"

	"github.com/onnwee/orgcatalog/internal/catalog"
)

// ActivityHandlers holds dependencies for activity taxonomy HTTP handlers.
type ActivityHandlers struct {
	svc *catalog.Service
}

// NewActivityHandlers creates a new ActivityHandlers instance.
func NewActivityHandlers(svc *catalog.Service) *ActivityHandlers {
	return &ActivityHandlers{svc: svc}
}

// List handles GET /activities - lists the activity taxonomy as id/name pairs.
func (h *ActivityHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	finish := cacheStatusContext(r)
	activities, err := h.svc.ListActivities(r.Context(), r.URL.String(), page)
	finish()
	if err != nil {
		failFromService(w, r, err)
		return
	}

	if activities == nil {
		activities = []catalog.ActivityRef{}
	}
	writeJSON(w, r.Context(), http.StatusOK, activities)
}
