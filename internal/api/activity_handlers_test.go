package api

import (
	"net/http"
	"testing"

	"github.com/onnwee/orgcatalog/internal/catalog"
)

func TestActivityList(t *testing.T) {
	mux := newTestRouter(t)

	rr := doGet(t, mux, "/activities")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var activities []catalog.ActivityRef
	decodeBody(t, rr, &activities)
	if len(activities) != 4 {
		t.Fatalf("expected 4 activities, got %d", len(activities))
	}
	if activities[0].ID != 1 || activities[0].Name != "Food" {
		t.Errorf("unexpected first activity: %+v", activities[0])
	}
}

func TestActivityList_Pagination(t *testing.T) {
	mux := newTestRouter(t)

	rr := doGet(t, mux, "/activities?limit=2&offset=2")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var activities []catalog.ActivityRef
	decodeBody(t, rr, &activities)
	if len(activities) != 2 || activities[0].ID != 3 || activities[1].ID != 4 {
		t.Errorf("expected activities 3 and 4, got %+v", activities)
	}
}

func TestActivityList_InvalidPagination(t *testing.T) {
	mux := newTestRouter(t)
	wantError(t, doGet(t, mux, "/activities?limit=bogus"), http.StatusBadRequest, ErrCodeValidation)
}
