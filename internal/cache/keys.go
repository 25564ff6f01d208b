// Package cache provides a fail-open cache-aside layer over Redis for
// catalog query responses.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Namespace tags for cache keys, one per logical query class.
const (
	TagBuildings       = "buildings"
	TagBuildingID      = "building_id"
	TagBuildingAddress = "building_address"
	TagAllOrgs         = "all_orgs"
	TagOrgID           = "organization_id"
	TagOrgsByBuilding  = "orgs_by_building"
	TagOrgsByActivity  = "orgs_by_activity"
	TagOrgsByLocation  = "orgs_by_location"
	TagAllActivities   = "all_activities"
)

// Key derives a deterministic cache key from a namespace tag and the full
// request identity (the normalized URL including query parameters in their
// given order). Identical identities always produce identical keys across
// process restarts.
//
// Parameter order is not normalized: two requests that differ only in query
// parameter order hash to distinct keys and each populate their own entry.
// This amplifies misses for semantically identical queries and is accepted
// as exact-match caching.
func Key(tag, identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return tag + ":" + hex.EncodeToString(sum[:])
}
