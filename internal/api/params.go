package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/onnwee/orgcatalog/internal/cache"
	"github.com/onnwee/orgcatalog/internal/catalog"
	"github.com/onnwee/orgcatalog/internal/middleware"
)

// pathID parses the {id} path segment as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer, got %q", raw)
	}
	return id, nil
}

// parsePage reads optional limit/offset query parameters. Absent parameters
// leave the zero Page, which the repository treats as unbounded.
func parsePage(r *http.Request) (catalog.Page, error) {
	var page catalog.Page
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return page, fmt.Errorf("limit must be a non-negative integer, got %q", raw)
		}
		page.Limit = limit
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return page, fmt.Errorf("offset must be a non-negative integer, got %q", raw)
		}
		page.Offset = offset
	}

	return page, nil
}

// queryFloat parses an optional float query parameter. Returns nil when the
// parameter is absent.
func queryFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return &v, nil
}

// requiredFloat parses a mandatory float query parameter.
func requiredFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return v, nil
}

// cacheStatusContext installs a cache outcome recorder on the request
// context. Call the returned finish func after the service call so the
// logging middleware sees the hit/miss outcome.
func cacheStatusContext(r *http.Request) func() {
	ctx, status := cache.WithStatus(r.Context())
	*r = *r.WithContext(ctx)
	return func() {
		if v := status.Value(); v != "" {
			*r = *r.WithContext(middleware.SetCacheStatus(r.Context(), v))
		}
	}
}
