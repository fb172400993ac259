// Package geo implements the spatial query surface of the map API: bounding
// box and limit validation, and zoom-aware grid clustering over a point store.
package geo

import (
	"strconv"

	"github.com/couchcryptid/hazard-map-service/internal/domain"
)

const (
	// DefaultLimit is used when the limit parameter is absent or unparseable.
	DefaultLimit = 1000
	// MaxLimit caps the result size of a single point-list request.
	MaxLimit = 5000
)

// ParseBounds validates four raw bounding box parameters. Missing or
// unparseable values, and boxes with inverted edges, fall back to the given
// default viewport rather than erroring: a client with garbage params gets the
// default view, never a 4xx. The returned box always satisfies
// South <= North and West <= East as long as fallback does.
func ParseBounds(north, south, east, west string, fallback domain.BoundingBox) domain.BoundingBox {
	n, okN := parseCoord(north)
	s, okS := parseCoord(south)
	e, okE := parseCoord(east)
	w, okW := parseCoord(west)
	if !okN || !okS || !okE || !okW {
		return fallback
	}

	box := domain.BoundingBox{North: n, South: s, East: e, West: w}
	if !box.Valid() {
		return fallback
	}
	return box
}

// ParseLimit parses a result-size limit, defaulting to DefaultLimit on a
// missing or unparseable value and clamping the rest to [1, MaxLimit].
func ParseLimit(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return DefaultLimit
	}
	if n < 1 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

func parseCoord(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts "NaN" and "Inf"; neither is a coordinate.
	if v != v || v > 1e6 || v < -1e6 {
		return 0, false
	}
	return v, true
}
