// Package geocache stores resolved address coordinates for the
// lifetime of the process (or beyond, with the Redis backend). Entries
// are never invalidated: street addresses do not move.
package geocache

import (
	"context"
	"strings"

	"karsdrive/internal/domain"
)

// Cache maps normalized addresses to resolved coordinates.
type Cache interface {
	// Get returns the cached coordinate and whether it was present.
	Get(ctx context.Context, address string) (domain.Coordinate, bool, error)

	// Set stores a resolved coordinate.
	Set(ctx context.Context, address string, coord domain.Coordinate) error
}

// Normalize canonicalizes an address for use as a cache key: interior
// whitespace is collapsed and case is folded.
func Normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
