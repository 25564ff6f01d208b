package catalog

import (
	"context"

	"github.com/onnwee/orgcatalog/internal/geo"
)

// Repository defines the read operations of the catalog store. All
// implementations must honor the contracts below:
//
//   - Lookup-by-id methods return ErrNotFound (or a wrapping NotFoundError)
//     when the row does not exist; list methods return an empty slice, never
//     an error, for an empty result.
//   - Spatial methods exclude buildings whose derived location is absent.
//   - OrganizationsByRadius orders by ascending geodesic distance from the
//     center with organization id as the tie-break, so pagination is stable
//     across identical requests.
//   - OrganizationsByActivities deduplicates organizations associated with
//     more than one of the given activity ids.
//   - ActivityDescendantIDs returns the closure of DescendantIDs for the
//     given activity: the id itself plus all descendants. An unknown id
//     yields the singleton set; existence checks belong to the caller.
type Repository interface {
	ListBuildings(ctx context.Context, page Page) ([]Building, error)
	GetBuilding(ctx context.Context, id int64) (*Building, error)
	FindBuildingByAddress(ctx context.Context, address string) (*Building, error)

	ListOrganizations(ctx context.Context, page Page) ([]Organization, error)
	GetOrganization(ctx context.Context, id int64) (*OrganizationDetail, error)
	FindOrganizationsByName(ctx context.Context, name string) ([]Organization, error)
	OrganizationsByBuilding(ctx context.Context, buildingID int64, page Page) ([]Organization, error)
	OrganizationsByActivities(ctx context.Context, activityIDs []int64, page Page) ([]Organization, error)
	OrganizationsByRadius(ctx context.Context, center geo.Point, radiusMeters float64, page Page) ([]Organization, error)
	OrganizationsByEnvelope(ctx context.Context, env geo.Envelope, page Page) ([]Organization, error)

	GetActivity(ctx context.Context, id int64) (*Activity, error)
	ActivityDescendantIDs(ctx context.Context, id int64) ([]int64, error)
	ListActivities(ctx context.Context, page Page) ([]ActivityRef, error)
}
