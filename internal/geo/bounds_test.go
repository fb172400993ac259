package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/hazard-map-service/internal/domain"
	"github.com/couchcryptid/hazard-map-service/internal/geo"
)

func TestParseBounds(t *testing.T) {
	fallback := domain.CalgaryViewport

	tests := []struct {
		name                     string
		north, south, east, west string
		expected                 domain.BoundingBox
	}{
		{
			name:  "valid box passes through",
			north: "51.3", south: "50.8", east: "-113.8", west: "-114.3",
			expected: domain.BoundingBox{North: 51.3, South: 50.8, East: -113.8, West: -114.3},
		},
		{
			name:  "all params missing",
			north: "", south: "", east: "", west: "",
			expected: fallback,
		},
		{
			name:  "one param missing",
			north: "51.3", south: "50.8", east: "-113.8", west: "",
			expected: fallback,
		},
		{
			name:  "non-numeric param",
			north: "fifty-one", south: "50.8", east: "-113.8", west: "-114.3",
			expected: fallback,
		},
		{
			name:  "NaN param",
			north: "NaN", south: "50.8", east: "-113.8", west: "-114.3",
			expected: fallback,
		},
		{
			name:  "inverted latitudes",
			north: "50.8", south: "51.3", east: "-113.8", west: "-114.3",
			expected: fallback,
		},
		{
			name:  "inverted longitudes",
			north: "51.3", south: "50.8", east: "-114.3", west: "-113.8",
			expected: fallback,
		},
		{
			name:  "absurd magnitude",
			north: "1e300", south: "50.8", east: "-113.8", west: "-114.3",
			expected: fallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := geo.ParseBounds(tt.north, tt.south, tt.east, tt.west, fallback)
			assert.Equal(t, tt.expected, box)
			assert.True(t, box.Valid(), "result must always be a usable box")
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{"absent", "", geo.DefaultLimit},
		{"unparseable", "abc", geo.DefaultLimit},
		{"in range", "10", 10},
		{"above cap", "99999", geo.MaxLimit},
		{"zero", "0", 1},
		{"negative", "-5", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, geo.ParseLimit(tt.raw))
		})
	}
}
