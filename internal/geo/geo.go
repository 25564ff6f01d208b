// Package geo provides geodesic distance and envelope utilities for
// spatial queries over WGS84 (SRID 4326) coordinates.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distance.
const EarthRadiusMeters = 6371008.8

// Point represents a geographic coordinate with latitude and longitude
// in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within the WGS84 coordinate domain.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceMeters returns the great-circle distance between two points in
// meters, computed with the haversine formula. Spatial filtering must use
// geodesic distance; planar Euclidean math drifts badly away from the
// equator.
func DistanceMeters(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Envelope is an axis-aligned bounding rectangle in WGS84 degrees.
type Envelope struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Validate checks the min < max precondition on both axes and that all
// corners are inside the coordinate domain.
func (e Envelope) Validate() error {
	if e.MinLat >= e.MaxLat {
		return fmt.Errorf("min latitude %v must be lower than max latitude %v", e.MinLat, e.MaxLat)
	}
	if e.MinLng >= e.MaxLng {
		return fmt.Errorf("min longitude %v must be lower than max longitude %v", e.MinLng, e.MaxLng)
	}
	corners := []Point{
		{Lat: e.MinLat, Lng: e.MinLng},
		{Lat: e.MaxLat, Lng: e.MaxLng},
	}
	for _, c := range corners {
		if !c.Valid() {
			return fmt.Errorf("envelope corner (%v, %v) outside WGS84 domain", c.Lat, c.Lng)
		}
	}
	return nil
}

// Contains reports whether the point lies inside the envelope, borders
// included, matching the closed-boundary semantics of ST_Intersects.
func (e Envelope) Contains(p Point) bool {
	return p.Lat >= e.MinLat && p.Lat <= e.MaxLat &&
		p.Lng >= e.MinLng && p.Lng <= e.MaxLng
}
