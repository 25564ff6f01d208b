// Package catalog provides the data model, repositories, and query service
// for the organization catalog: buildings, organizations, phones, and the
// three-level activity taxonomy.
package catalog

import (
	"github.com/onnwee/orgcatalog/internal/geo"
)

// Activity tree levels permitted by the taxonomy. A root activity has
// level 1 and a child's level is always its parent's level plus one.
const (
	MinActivityLevel = 1
	MaxActivityLevel = 3
)

// Building represents a building with a postal address and coordinates.
// Location is the derived geodetic point (SRID 4326) used by spatial
// predicates; it may be nil even when Latitude/Longitude are set, in which
// case the building is excluded from spatial results rather than erred on.
type Building struct {
	ID        int64      `json:"id" cbor:"id"`
	Address   string     `json:"address" cbor:"address"`
	Latitude  float64    `json:"latitude" cbor:"latitude"`
	Longitude float64    `json:"longitude" cbor:"longitude"`
	Location  *geo.Point `json:"location,omitempty" cbor:"location,omitempty"`
}

// Activity is a node in the activity taxonomy. ParentID is nil for roots.
type Activity struct {
	ID       int64  `json:"id" cbor:"id"`
	Name     string `json:"name" cbor:"name"`
	ParentID *int64 `json:"parent_id,omitempty" cbor:"parent_id,omitempty"`
	Level    int    `json:"level" cbor:"level"`
}

// ActivityRef is the id/name pair returned by the taxonomy listing.
type ActivityRef struct {
	ID   int64  `json:"id" cbor:"id"`
	Name string `json:"name" cbor:"name"`
}

// Phone is a phone number owned by exactly one organization.
type Phone struct {
	ID             int64  `json:"id" cbor:"id"`
	Number         string `json:"number" cbor:"number"`
	OrganizationID int64  `json:"organization_id" cbor:"organization_id"`
}

// Organization is the list-shaped view of an organization: every
// organization belongs to exactly one building.
type Organization struct {
	ID         int64  `json:"id" cbor:"id"`
	Name       string `json:"name" cbor:"name"`
	BuildingID int64  `json:"building_id" cbor:"building_id"`
}

// OrganizationDetail is the detail-shaped view with its related entities
// eagerly fetched: the owning building, owned phones, and associated
// activities. The fetch plan is explicit per response shape; nothing is
// loaded lazily.
type OrganizationDetail struct {
	Organization
	Building   Building   `json:"building" cbor:"building"`
	Phones     []Phone    `json:"phones" cbor:"phones"`
	Activities []Activity `json:"activities" cbor:"activities"`
}

// Page carries optional limit/offset pagination. A Limit of zero or less
// means unbounded; an Offset of zero or less means no offset.
type Page struct {
	Limit  int
	Offset int
}
