package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/onnwee/orgcatalog/internal/geo"
	"github.com/onnwee/orgcatalog/internal/tracing"
)

// PostgresRepository implements Repository using PostgreSQL with PostGIS.
// All spatial predicates run against buildings.location, a
// GEOGRAPHY(POINT, 4326) column, so radius filtering and distance ordering
// are geodesic, not planar.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

const buildingColumns = `b.id, b.address, b.latitude, b.longitude,
	ST_Y(b.location::geometry), ST_X(b.location::geometry)`

const organizationColumns = `o.id, o.name, o.building_id`

// ListBuildings returns buildings ordered by id.
func (r *PostgresRepository) ListBuildings(ctx context.Context, page Page) ([]Building, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "buildings", tracing.DBOperationQuery)

	query := `SELECT ` + buildingColumns + ` FROM buildings b ORDER BY b.id`
	query, args := applyPage(query, nil, page)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	defer rows.Close()

	buildings, err := scanBuildings(rows)
	endSpan(err)
	return buildings, err
}

// GetBuilding retrieves a building by id. Returns a NotFoundError when no
// such row exists.
func (r *PostgresRepository) GetBuilding(ctx context.Context, id int64) (*Building, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "buildings", tracing.DBOperationQuery)

	row := r.db.QueryRowContext(ctx,
		`SELECT `+buildingColumns+` FROM buildings b WHERE b.id = $1`, id)

	b, err := scanBuilding(row)
	if errors.Is(err, sql.ErrNoRows) {
		endSpan(nil)
		return nil, &NotFoundError{Resource: "building", ID: id}
	}
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to get building %d: %w", id, err)
	}
	endSpan(nil)
	return b, nil
}

// FindBuildingByAddress returns the lowest-id building whose address
// contains the substring, case-insensitively.
func (r *PostgresRepository) FindBuildingByAddress(ctx context.Context, address string) (*Building, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "buildings", tracing.DBOperationQuery)

	row := r.db.QueryRowContext(ctx,
		`SELECT `+buildingColumns+` FROM buildings b
		 WHERE b.address ILIKE '%' || $1 || '%'
		 ORDER BY b.id
		 LIMIT 1`, address)

	b, err := scanBuilding(row)
	if errors.Is(err, sql.ErrNoRows) {
		endSpan(nil)
		return nil, &NotFoundError{Resource: "building"}
	}
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to find building by address: %w", err)
	}
	endSpan(nil)
	return b, nil
}

// ListOrganizations returns organizations ordered by id.
func (r *PostgresRepository) ListOrganizations(ctx context.Context, page Page) ([]Organization, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "organizations", tracing.DBOperationQuery)

	query := `SELECT ` + organizationColumns + ` FROM organizations o ORDER BY o.id`
	query, args := applyPage(query, nil, page)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	orgs, err := scanOrganizations(rows)
	endSpan(err)
	return orgs, err
}

// GetOrganization retrieves an organization with its building, phones, and
// activities. The related entities are fetched with three explicit queries;
// no per-row lazy loading happens anywhere.
func (r *PostgresRepository) GetOrganization(ctx context.Context, id int64) (*OrganizationDetail, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "organizations", tracing.DBOperationQuery)

	row := r.db.QueryRowContext(ctx,
		`SELECT `+organizationColumns+`, `+buildingColumns+`
		 FROM organizations o
		 JOIN buildings b ON b.id = o.building_id
		 WHERE o.id = $1`, id)

	detail := &OrganizationDetail{Phones: []Phone{}, Activities: []Activity{}}
	var locLat, locLng sql.NullFloat64
	err := row.Scan(
		&detail.ID, &detail.Name, &detail.BuildingID,
		&detail.Building.ID, &detail.Building.Address,
		&detail.Building.Latitude, &detail.Building.Longitude,
		&locLat, &locLng,
	)
	if errors.Is(err, sql.ErrNoRows) {
		endSpan(nil)
		return nil, &NotFoundError{Resource: "organization", ID: id}
	}
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to get organization %d: %w", id, err)
	}
	detail.Building.Location = locationFrom(locLat, locLng)

	phoneRows, err := r.db.QueryContext(ctx,
		`SELECT id, number, organization_id FROM phones WHERE organization_id = $1 ORDER BY id`, id)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to get phones for organization %d: %w", id, err)
	}
	defer phoneRows.Close()
	for phoneRows.Next() {
		var p Phone
		if err := phoneRows.Scan(&p.ID, &p.Number, &p.OrganizationID); err != nil {
			endSpan(err)
			return nil, fmt.Errorf("failed to scan phone: %w", err)
		}
		detail.Phones = append(detail.Phones, p)
	}
	if err := phoneRows.Err(); err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to read phones: %w", err)
	}

	activityRows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.name, a.parent_id, a.level
		 FROM activities a
		 JOIN organization_activities oa ON oa.activity_id = a.id
		 WHERE oa.organization_id = $1
		 ORDER BY a.id`, id)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to get activities for organization %d: %w", id, err)
	}
	defer activityRows.Close()
	for activityRows.Next() {
		var a Activity
		var parentID sql.NullInt64
		if err := activityRows.Scan(&a.ID, &a.Name, &parentID, &a.Level); err != nil {
			endSpan(err)
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if parentID.Valid {
			a.ParentID = &parentID.Int64
		}
		detail.Activities = append(detail.Activities, a)
	}
	if err := activityRows.Err(); err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}

	endSpan(nil)
	return detail, nil
}

// FindOrganizationsByName returns organizations whose name contains the
// substring, case-insensitively, anywhere in the name.
func (r *PostgresRepository) FindOrganizationsByName(ctx context.Context, name string) ([]Organization, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "organizations", tracing.DBOperationQuery)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations o
		 WHERE o.name ILIKE '%' || $1 || '%'
		 ORDER BY o.id`, name)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to find organizations by name: %w", err)
	}
	defer rows.Close()

	orgs, err := scanOrganizations(rows)
	endSpan(err)
	return orgs, err
}

// OrganizationsByBuilding returns organizations owned by the building.
func (r *PostgresRepository) OrganizationsByBuilding(ctx context.Context, buildingID int64, page Page) ([]Organization, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "organizations", tracing.DBOperationQuery)

	query := `SELECT ` + organizationColumns + ` FROM organizations o
		 WHERE o.building_id = $1 ORDER BY o.id`
	query, args := applyPage(query, []any{buildingID}, page)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to query organizations by building: %w", err)
	}
	defer rows.Close()

	orgs, err := scanOrganizations(rows)
	endSpan(err)
	return orgs, err
}

// OrganizationsByActivities returns deduplicated organizations having at
// least one association in the given activity id set.
func (r *PostgresRepository) OrganizationsByActivities(ctx context.Context, activityIDs []int64, page Page) ([]Organization, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "organizations", tracing.DBOperationQuery)

	query := `SELECT DISTINCT ` + organizationColumns + `
		 FROM organizations o
		 JOIN organization_activities oa ON oa.organization_id = o.id
		 WHERE oa.activity_id = ANY($1)
		 ORDER BY o.id`
	query, args := applyPage(query, []any{pq.Array(activityIDs)}, page)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to query organizations by activities: %w", err)
	}
	defer rows.Close()

	orgs, err := scanOrganizations(rows)
	endSpan(err)
	return orgs, err
}

// OrganizationsByRadius returns organizations whose building location lies
// within radiusMeters of center, ordered by ascending geodesic distance with
// organization id as the tie-break. Buildings with a NULL location are
// excluded by the predicate, not erred on.
func (r *PostgresRepository) OrganizationsByRadius(ctx context.Context, center geo.Point, radiusMeters float64, page Page) ([]Organization, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "organizations", tracing.DBOperationQuery)

	query := `SELECT ` + organizationColumns + `
		 FROM organizations o
		 JOIN buildings b ON b.id = o.building_id
		 WHERE b.location IS NOT NULL
		   AND ST_DWithin(b.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		 ORDER BY ST_Distance(b.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography), o.id`
	query, args := applyPage(query, []any{center.Lng, center.Lat, radiusMeters}, page)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to query organizations by radius: %w", err)
	}
	defer rows.Close()

	orgs, err := scanOrganizations(rows)
	endSpan(err)
	return orgs, err
}

// OrganizationsByEnvelope returns organizations whose building location
// intersects the axis-aligned envelope. Ordering is by organization id.
func (r *PostgresRepository) OrganizationsByEnvelope(ctx context.Context, env geo.Envelope, page Page) ([]Organization, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "organizations", tracing.DBOperationQuery)

	query := `SELECT ` + organizationColumns + `
		 FROM organizations o
		 JOIN buildings b ON b.id = o.building_id
		 WHERE b.location IS NOT NULL
		   AND ST_Intersects(b.location::geometry, ST_MakeEnvelope($1, $2, $3, $4, 4326))
		 ORDER BY o.id`
	query, args := applyPage(query, []any{env.MinLng, env.MinLat, env.MaxLng, env.MaxLat}, page)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to query organizations by envelope: %w", err)
	}
	defer rows.Close()

	orgs, err := scanOrganizations(rows)
	endSpan(err)
	return orgs, err
}

// GetActivity retrieves an activity by id.
func (r *PostgresRepository) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "activities", tracing.DBOperationQuery)

	var a Activity
	var parentID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, parent_id, level FROM activities WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &parentID, &a.Level)
	if errors.Is(err, sql.ErrNoRows) {
		endSpan(nil)
		return nil, &NotFoundError{Resource: "activity", ID: id}
	}
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to get activity %d: %w", id, err)
	}
	if parentID.Valid {
		a.ParentID = &parentID.Int64
	}
	endSpan(nil)
	return &a, nil
}

// ActivityDescendantIDs computes the descendant closure of the activity
// with a recursive CTE. UNION rather than UNION ALL deduplicates visited
// rows, so the recursion terminates even on a malformed cyclic parent
// chain. An unknown id produces the singleton set, matching the resolver
// contract.
func (r *PostgresRepository) ActivityDescendantIDs(ctx context.Context, id int64) ([]int64, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "activities", tracing.DBOperationQuery)

	rows, err := r.db.QueryContext(ctx,
		`WITH RECURSIVE activity_tree AS (
			SELECT id, parent_id FROM activities WHERE id = $1
			UNION
			SELECT a.id, a.parent_id
			FROM activities a
			JOIN activity_tree t ON a.parent_id = t.id
		)
		SELECT id FROM activity_tree`, id)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to resolve activity tree for %d: %w", id, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var treeID int64
		if err := rows.Scan(&treeID); err != nil {
			endSpan(err)
			return nil, fmt.Errorf("failed to scan activity tree id: %w", err)
		}
		ids = append(ids, treeID)
	}
	if err := rows.Err(); err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to read activity tree: %w", err)
	}

	if len(ids) == 0 {
		ids = []int64{id}
	}
	endSpan(nil)
	return ids, nil
}

// ListActivities returns id/name pairs for all activities ordered by id.
func (r *PostgresRepository) ListActivities(ctx context.Context, page Page) ([]ActivityRef, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "activities", tracing.DBOperationQuery)

	query := `SELECT id, name FROM activities ORDER BY id`
	query, args := applyPage(query, nil, page)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	out := []ActivityRef{}
	for rows.Next() {
		var ref ActivityRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			endSpan(err)
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		endSpan(err)
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}
	endSpan(nil)
	return out, nil
}

// applyPage appends LIMIT and OFFSET clauses for positive page values.
func applyPage(query string, args []any, page Page) (string, []any) {
	if page.Limit > 0 {
		args = append(args, page.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if page.Offset > 0 {
		args = append(args, page.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuildingInto(s rowScanner, b *Building) error {
	var locLat, locLng sql.NullFloat64
	if err := s.Scan(&b.ID, &b.Address, &b.Latitude, &b.Longitude, &locLat, &locLng); err != nil {
		return err
	}
	b.Location = locationFrom(locLat, locLng)
	return nil
}

func scanBuilding(row *sql.Row) (*Building, error) {
	var b Building
	if err := scanBuildingInto(row, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBuildings(rows *sql.Rows) ([]Building, error) {
	out := []Building{}
	for rows.Next() {
		var b Building
		if err := scanBuildingInto(rows, &b); err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read buildings: %w", err)
	}
	return out, nil
}

func scanOrganizations(rows *sql.Rows) ([]Organization, error) {
	out := []Organization{}
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.BuildingID); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read organizations: %w", err)
	}
	return out, nil
}

func locationFrom(lat, lng sql.NullFloat64) *geo.Point {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
}
