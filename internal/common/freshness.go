// Package common provides shared utilities for Coindeck
package common

import "time"

// Freshness TTLs for market data components
const (
	FreshnessMarkets  = 3 * time.Minute  // top-coins markets page
	FreshnessCoin     = 2 * time.Minute  // single coin detail
	FreshnessPrice    = 30 * time.Second // spot price lookups
	FreshnessOverview = 5 * time.Minute  // global market overview
	FreshnessTrending = 10 * time.Minute // trending searches
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
