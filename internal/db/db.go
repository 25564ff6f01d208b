// Package db provides database connection handling for the catalog API.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/onnwee/orgcatalog/internal/config"
)

// PostGISRequirement documents that the application requires PostgreSQL with PostGIS.
// PostGIS enables geographic queries over building locations.
const PostGISRequirement = "PostGIS extension is required for geo queries"

// VersionQuery is the SQL query to verify PostGIS is available.
const VersionQuery = "SELECT PostGIS_Version()"

// Open connects to PostgreSQL using the configured URL and pool settings,
// then pings to verify the connection.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// VerifyPostGIS checks that the PostGIS extension is installed and returns
// its version string.
func VerifyPostGIS(ctx context.Context, db *sql.DB) (string, error) {
	var version string
	if err := db.QueryRowContext(ctx, VersionQuery).Scan(&version); err != nil {
		return "", fmt.Errorf("postgis version query failed (%s): %w", PostGISRequirement, err)
	}
	return version, nil
}
