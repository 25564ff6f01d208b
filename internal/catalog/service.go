package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/onnwee/orgcatalog/internal/cache"
	"github.com/onnwee/orgcatalog/internal/geo"
)

// LocationQuery carries the parameters of an organizations-by-location
// request: a center point plus either a radius in meters or a full bounding
// rectangle. Exactly one of the two must be supplied.
type LocationQuery struct {
	Latitude  float64
	Longitude float64

	RadiusMeters *float64

	MinLat *float64
	MaxLat *float64
	MinLng *float64
	MaxLng *float64
}

// Service is the query façade over the catalog. It layers cache-aside on
// top of the repository, performs input validation and existence checks,
// and maps missing rows to NotFound outcomes distinct from empty results.
//
// Dependencies are injected at construction and never reached through
// globals. The cache may be nil, which disables caching entirely; cache
// failures at runtime are absorbed inside the cache layer either way.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService creates a Service. A nil logger falls back to slog.Default().
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		cache:  c,
		logger: logger,
	}
}

// cached runs the cache-aside state machine around resolve: check the cache
// under (tag, identity), on a miss resolve from the repository and write the
// result back with the class TTL. identity is the caller's canonical request
// identity; an empty identity disables caching for the call.
func cached[T any](ctx context.Context, s *Service, tag, identity string, ttl cacheTTL, resolve func(context.Context) (T, error)) (T, error) {
	var zero T
	if s.cache == nil || identity == "" {
		return resolve(ctx)
	}

	key := cache.Key(tag, identity)

	var hit T
	if s.cache.Get(ctx, key, &hit) {
		return hit, nil
	}

	out, err := resolve(ctx)
	if err != nil {
		return zero, err
	}

	s.cache.Set(ctx, key, out, ttl.duration())
	return out, nil
}

// ListBuildings returns buildings with optional pagination.
func (s *Service) ListBuildings(ctx context.Context, identity string, page Page) ([]Building, error) {
	return cached(ctx, s, cache.TagBuildings, identity, ttlLookup, func(ctx context.Context) ([]Building, error) {
		return s.repo.ListBuildings(ctx, page)
	})
}

// GetBuilding returns one building or a NotFound outcome.
func (s *Service) GetBuilding(ctx context.Context, identity string, id int64) (*Building, error) {
	return cached(ctx, s, cache.TagBuildingID, identity, ttlLookup, func(ctx context.Context) (*Building, error) {
		return s.repo.GetBuilding(ctx, id)
	})
}

// FindBuildingByAddress returns the first building whose address contains
// the substring, or a NotFound outcome.
func (s *Service) FindBuildingByAddress(ctx context.Context, identity, address string) (*Building, error) {
	return cached(ctx, s, cache.TagBuildingAddress, identity, ttlLookup, func(ctx context.Context) (*Building, error) {
		if address == "" {
			return nil, &ValidationError{Msg: "address must not be empty"}
		}
		return s.repo.FindBuildingByAddress(ctx, address)
	})
}

// ListOrganizations returns organizations with optional pagination.
func (s *Service) ListOrganizations(ctx context.Context, identity string, page Page) ([]Organization, error) {
	return cached(ctx, s, cache.TagAllOrgs, identity, ttlLookup, func(ctx context.Context) ([]Organization, error) {
		return s.repo.ListOrganizations(ctx, page)
	})
}

// GetOrganization returns one organization with its building, phones, and
// activities, or a NotFound outcome.
func (s *Service) GetOrganization(ctx context.Context, identity string, id int64) (*OrganizationDetail, error) {
	return cached(ctx, s, cache.TagOrgID, identity, ttlLookup, func(ctx context.Context) (*OrganizationDetail, error) {
		return s.repo.GetOrganization(ctx, id)
	})
}

// FindOrganizationsByName searches organizations by case-insensitive name
// substring. The search is neither cached nor paginated.
func (s *Service) FindOrganizationsByName(ctx context.Context, name string) ([]Organization, error) {
	if name == "" {
		return nil, &ValidationError{Msg: "name must not be empty"}
	}
	return s.repo.FindOrganizationsByName(ctx, name)
}

// OrganizationsByBuilding returns organizations owned by the building. The
// building must exist; a missing building is a NotFound outcome, while an
// existing building with no organizations yields an empty list.
func (s *Service) OrganizationsByBuilding(ctx context.Context, identity string, buildingID int64, page Page) ([]Organization, error) {
	return cached(ctx, s, cache.TagOrgsByBuilding, identity, ttlSpatial, func(ctx context.Context) ([]Organization, error) {
		if _, err := s.repo.GetBuilding(ctx, buildingID); err != nil {
			return nil, err
		}
		return s.repo.OrganizationsByBuilding(ctx, buildingID, page)
	})
}

// OrganizationsByActivity returns organizations associated with the
// activity or any of its descendants. The activity must exist; the
// existence check here is the sole source of NotFound, the descendant
// resolver itself assumes a valid id.
func (s *Service) OrganizationsByActivity(ctx context.Context, identity string, activityID int64, page Page) ([]Organization, error) {
	return cached(ctx, s, cache.TagOrgsByActivity, identity, ttlSpatial, func(ctx context.Context) ([]Organization, error) {
		if _, err := s.repo.GetActivity(ctx, activityID); err != nil {
			return nil, err
		}
		ids, err := s.repo.ActivityDescendantIDs(ctx, activityID)
		if err != nil {
			return nil, err
		}
		return s.repo.OrganizationsByActivities(ctx, ids, page)
	})
}

// OrganizationsByLocation dispatches a location query to the radius or
// envelope path. Supplying neither a radius nor a full rectangle, or a
// rectangle with min >= max on either axis, is a validation error raised
// before any store access.
func (s *Service) OrganizationsByLocation(ctx context.Context, identity string, q LocationQuery, page Page) ([]Organization, error) {
	return cached(ctx, s, cache.TagOrgsByLocation, identity, ttlSpatial, func(ctx context.Context) ([]Organization, error) {
		switch {
		case q.RadiusMeters != nil:
			center := geo.Point{Lat: q.Latitude, Lng: q.Longitude}
			if !center.Valid() {
				return nil, &ValidationError{Msg: "center point outside WGS84 domain"}
			}
			if *q.RadiusMeters <= 0 {
				return nil, &ValidationError{Msg: "radius must be greater than zero"}
			}
			return s.repo.OrganizationsByRadius(ctx, center, *q.RadiusMeters, page)

		case q.MinLat != nil && q.MaxLat != nil && q.MinLng != nil && q.MaxLng != nil:
			env := geo.Envelope{
				MinLat: *q.MinLat,
				MaxLat: *q.MaxLat,
				MinLng: *q.MinLng,
				MaxLng: *q.MaxLng,
			}
			if err := env.Validate(); err != nil {
				return nil, &ValidationError{Msg: err.Error()}
			}
			return s.repo.OrganizationsByEnvelope(ctx, env, page)

		default:
			return nil, &ValidationError{
				Msg: "provide either 'radius' or all rectangle parameters (min_lat, max_lat, min_lon, max_lon)",
			}
		}
	})
}

// ListActivities returns the activity taxonomy as id/name pairs.
func (s *Service) ListActivities(ctx context.Context, identity string, page Page) ([]ActivityRef, error) {
	return cached(ctx, s, cache.TagAllActivities, identity, ttlTaxonomy, func(ctx context.Context) ([]ActivityRef, error) {
		return s.repo.ListActivities(ctx, page)
	})
}

// cacheTTL selects the staleness class for a query.
type cacheTTL int

const (
	ttlLookup cacheTTL = iota
	ttlSpatial
	ttlTaxonomy
)

func (t cacheTTL) duration() time.Duration {
	switch t {
	case ttlSpatial:
		return cache.TTLSpatial
	case ttlTaxonomy:
		return cache.TTLTaxonomy
	default:
		return cache.TTLLookup
	}
}
