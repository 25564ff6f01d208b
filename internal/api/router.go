package api

import "net/http"

// RouterConfig carries the handler sets mounted by NewRouter. Metrics is the
// Prometheus exposition handler and may be nil to leave /metrics unmounted.
// SpatialLimit, when set, wraps the by-location route with its own tighter
// rate limit; spatial queries are the most expensive in the system.
type RouterConfig struct {
	Buildings     *BuildingHandlers
	Organizations *OrganizationHandlers
	Activities    *ActivityHandlers
	Health        *HealthHandlers
	Metrics       http.Handler
	SpatialLimit  func(http.Handler) http.Handler
}

// NewRouter mounts the catalog routes on a ServeMux. All catalog endpoints
// are read-only; non-GET methods get 405 from the mux method patterns.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /buildings", cfg.Buildings.List)
	mux.HandleFunc("GET /buildings/by-address", cfg.Buildings.ByAddress)
	mux.HandleFunc("GET /buildings/{id}", cfg.Buildings.Get)

	mux.HandleFunc("GET /organizations", cfg.Organizations.List)
	mux.HandleFunc("GET /organizations/by-name", cfg.Organizations.ByName)
	byLocation := http.Handler(http.HandlerFunc(cfg.Organizations.ByLocation))
	if cfg.SpatialLimit != nil {
		byLocation = cfg.SpatialLimit(byLocation)
	}
	mux.Handle("GET /organizations/by-location", byLocation)
	mux.HandleFunc("GET /organizations/by-building/{id}", cfg.Organizations.ByBuilding)
	mux.HandleFunc("GET /organizations/by-activity/{id}", cfg.Organizations.ByActivity)
	mux.HandleFunc("GET /organizations/{id}", cfg.Organizations.Get)

	mux.HandleFunc("GET /activities", cfg.Activities.List)

	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.HandleFunc("GET /ready", cfg.Health.Ready)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	return mux
}
