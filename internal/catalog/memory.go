package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/onnwee/orgcatalog/internal/geo"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. The zero value is not usable; construct
// with NewInMemoryRepository and populate through the Add methods.
type InMemoryRepository struct {
	buildings     map[int64]*Building
	organizations map[int64]*Organization
	phones        map[int64]*Phone
	activities    map[int64]*Activity
	orgActivities map[int64]map[int64]bool
}

// NewInMemoryRepository creates a new empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		buildings:     make(map[int64]*Building),
		organizations: make(map[int64]*Organization),
		phones:        make(map[int64]*Phone),
		activities:    make(map[int64]*Activity),
		orgActivities: make(map[int64]map[int64]bool),
	}
}

// AddBuilding stores a building. A copy is kept to avoid external mutation.
func (r *InMemoryRepository) AddBuilding(b Building) {
	if b.Location != nil {
		loc := *b.Location
		b.Location = &loc
	}
	r.buildings[b.ID] = &b
}

// AddActivity stores an activity taxonomy node.
func (r *InMemoryRepository) AddActivity(a Activity) {
	if a.ParentID != nil {
		pid := *a.ParentID
		a.ParentID = &pid
	}
	r.activities[a.ID] = &a
}

// AddOrganization stores an organization with its activity associations.
func (r *InMemoryRepository) AddOrganization(o Organization, activityIDs ...int64) {
	r.organizations[o.ID] = &o
	assoc := make(map[int64]bool, len(activityIDs))
	for _, id := range activityIDs {
		assoc[id] = true
	}
	r.orgActivities[o.ID] = assoc
}

// AddPhone stores a phone number.
func (r *InMemoryRepository) AddPhone(p Phone) {
	r.phones[p.ID] = &p
}

// ListBuildings returns all buildings ordered by id.
func (r *InMemoryRepository) ListBuildings(ctx context.Context, page Page) ([]Building, error) {
	out := make([]Building, 0, len(r.buildings))
	for _, id := range sortedKeys(r.buildings) {
		out = append(out, copyBuilding(r.buildings[id]))
	}
	return pageSlice(out, page), nil
}

// GetBuilding retrieves a building by id.
func (r *InMemoryRepository) GetBuilding(ctx context.Context, id int64) (*Building, error) {
	b, ok := r.buildings[id]
	if !ok {
		return nil, &NotFoundError{Resource: "building", ID: id}
	}
	out := copyBuilding(b)
	return &out, nil
}

// FindBuildingByAddress returns the lowest-id building whose address
// contains the given substring, case-insensitively.
func (r *InMemoryRepository) FindBuildingByAddress(ctx context.Context, address string) (*Building, error) {
	needle := strings.ToLower(address)
	for _, id := range sortedKeys(r.buildings) {
		b := r.buildings[id]
		if strings.Contains(strings.ToLower(b.Address), needle) {
			out := copyBuilding(b)
			return &out, nil
		}
	}
	return nil, &NotFoundError{Resource: "building"}
}

// ListOrganizations returns all organizations ordered by id.
func (r *InMemoryRepository) ListOrganizations(ctx context.Context, page Page) ([]Organization, error) {
	out := make([]Organization, 0, len(r.organizations))
	for _, id := range sortedKeys(r.organizations) {
		out = append(out, *r.organizations[id])
	}
	return pageSlice(out, page), nil
}

// GetOrganization retrieves an organization with its building, phones, and
// activities eagerly attached.
func (r *InMemoryRepository) GetOrganization(ctx context.Context, id int64) (*OrganizationDetail, error) {
	o, ok := r.organizations[id]
	if !ok {
		return nil, &NotFoundError{Resource: "organization", ID: id}
	}

	detail := &OrganizationDetail{
		Organization: *o,
		Phones:       []Phone{},
		Activities:   []Activity{},
	}

	if b, ok := r.buildings[o.BuildingID]; ok {
		detail.Building = copyBuilding(b)
	}
	for _, pid := range sortedKeys(r.phones) {
		if p := r.phones[pid]; p.OrganizationID == id {
			detail.Phones = append(detail.Phones, *p)
		}
	}
	for aid := range r.orgActivities[id] {
		if a, ok := r.activities[aid]; ok {
			detail.Activities = append(detail.Activities, *a)
		}
	}
	sort.Slice(detail.Activities, func(i, j int) bool {
		return detail.Activities[i].ID < detail.Activities[j].ID
	})

	return detail, nil
}

// FindOrganizationsByName returns organizations whose name contains the
// given substring, case-insensitively, anywhere in the name.
func (r *InMemoryRepository) FindOrganizationsByName(ctx context.Context, name string) ([]Organization, error) {
	needle := strings.ToLower(name)
	out := []Organization{}
	for _, id := range sortedKeys(r.organizations) {
		o := r.organizations[id]
		if strings.Contains(strings.ToLower(o.Name), needle) {
			out = append(out, *o)
		}
	}
	return out, nil
}

// OrganizationsByBuilding returns organizations owned by the building.
func (r *InMemoryRepository) OrganizationsByBuilding(ctx context.Context, buildingID int64, page Page) ([]Organization, error) {
	out := []Organization{}
	for _, id := range sortedKeys(r.organizations) {
		o := r.organizations[id]
		if o.BuildingID == buildingID {
			out = append(out, *o)
		}
	}
	return pageSlice(out, page), nil
}

// OrganizationsByActivities returns organizations having at least one
// association in the given activity id set. Each organization appears once
// regardless of how many of its activities match.
func (r *InMemoryRepository) OrganizationsByActivities(ctx context.Context, activityIDs []int64, page Page) ([]Organization, error) {
	wanted := make(map[int64]bool, len(activityIDs))
	for _, id := range activityIDs {
		wanted[id] = true
	}

	out := []Organization{}
	for _, id := range sortedKeys(r.organizations) {
		for aid := range r.orgActivities[id] {
			if wanted[aid] {
				out = append(out, *r.organizations[id])
				break
			}
		}
	}
	return pageSlice(out, page), nil
}

// OrganizationsByRadius returns organizations whose building lies within
// radiusMeters of center, ordered by ascending geodesic distance with
// organization id as the tie-break. Buildings without a derived location
// are excluded.
func (r *InMemoryRepository) OrganizationsByRadius(ctx context.Context, center geo.Point, radiusMeters float64, page Page) ([]Organization, error) {
	type ranked struct {
		org      Organization
		distance float64
	}

	matches := []ranked{}
	for _, id := range sortedKeys(r.organizations) {
		o := r.organizations[id]
		b, ok := r.buildings[o.BuildingID]
		if !ok || b.Location == nil {
			continue
		}
		d := geo.DistanceMeters(center, *b.Location)
		if d <= radiusMeters {
			matches = append(matches, ranked{org: *o, distance: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].org.ID < matches[j].org.ID
	})

	out := make([]Organization, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.org)
	}
	return pageSlice(out, page), nil
}

// OrganizationsByEnvelope returns organizations whose building location
// intersects the envelope. Buildings without a derived location are
// excluded. Ordering is by organization id.
func (r *InMemoryRepository) OrganizationsByEnvelope(ctx context.Context, env geo.Envelope, page Page) ([]Organization, error) {
	out := []Organization{}
	for _, id := range sortedKeys(r.organizations) {
		o := r.organizations[id]
		b, ok := r.buildings[o.BuildingID]
		if !ok || b.Location == nil {
			continue
		}
		if env.Contains(*b.Location) {
			out = append(out, *o)
		}
	}
	return pageSlice(out, page), nil
}

// GetActivity retrieves an activity by id.
func (r *InMemoryRepository) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	a, ok := r.activities[id]
	if !ok {
		return nil, &NotFoundError{Resource: "activity", ID: id}
	}
	out := *a
	if a.ParentID != nil {
		pid := *a.ParentID
		out.ParentID = &pid
	}
	return &out, nil
}

// ActivityDescendantIDs computes the descendant closure of the activity
// via a worklist traversal over a parent-indexed map.
func (r *InMemoryRepository) ActivityDescendantIDs(ctx context.Context, id int64) ([]int64, error) {
	childrenOf := make(map[int64][]int64, len(r.activities))
	for _, aid := range sortedKeys(r.activities) {
		a := r.activities[aid]
		if a.ParentID != nil {
			childrenOf[*a.ParentID] = append(childrenOf[*a.ParentID], a.ID)
		}
	}
	return DescendantIDs(id, childrenOf), nil
}

// ListActivities returns id/name pairs for all activities ordered by id.
func (r *InMemoryRepository) ListActivities(ctx context.Context, page Page) ([]ActivityRef, error) {
	out := make([]ActivityRef, 0, len(r.activities))
	for _, id := range sortedKeys(r.activities) {
		a := r.activities[id]
		out = append(out, ActivityRef{ID: a.ID, Name: a.Name})
	}
	return pageSlice(out, page), nil
}

func copyBuilding(b *Building) Building {
	out := *b
	if b.Location != nil {
		loc := *b.Location
		out.Location = &loc
	}
	return out
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func pageSlice[T any](s []T, page Page) []T {
	if page.Offset > 0 {
		if page.Offset >= len(s) {
			return []T{}
		}
		s = s[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(s) {
		s = s[:page.Limit]
	}
	return s
}
