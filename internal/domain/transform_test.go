package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFireRow() map[string]string {
	return map[string]string{
		"latitude":   "53.9169",
		"longitude":  "-116.6275",
		"bright_ti4": "331.2",
		"scan":       "0.39",
		"track":      "0.36",
		"acq_date":   "2025-05-14",
		"acq_time":   "0942",
		"confidence": "h",
	}
}

func TestTransformFireRow(t *testing.T) {
	t.Run("valid VIIRS row", func(t *testing.T) {
		rec, err := TransformFireRow(validFireRow(), AlbertaBounds)
		require.NoError(t, err)

		assert.Equal(t, "FIRMS-2025-05-14-53.916--116.62", rec.ID)
		assert.Equal(t, "Fire near 53.92N 116.63W", rec.Name)
		assert.Equal(t, 53.9169, rec.Point.Lat)
		assert.Equal(t, -116.6275, rec.Point.Lng)
		assert.Equal(t, CategoryFire, rec.Category)
		assert.Equal(t, StatusActive, rec.Status)
		assert.Equal(t, SourceFIRMS, rec.Source)
		// 0.14 ha pixel * scan * track, rounded to 2 decimals.
		assert.Equal(t, 0.02, rec.SizeOrDepth)
		assert.Equal(t, time.Date(2025, 5, 14, 9, 42, 0, 0, time.UTC), rec.DetectedAt)
		assert.Equal(t, "h", rec.Attributes["confidence"])
		assert.Equal(t, "Unknown", rec.Attributes["cause"])
	})

	t.Run("missing latitude", func(t *testing.T) {
		row := validFireRow()
		delete(row, "latitude")
		_, err := TransformFireRow(row, AlbertaBounds)

		require.Error(t, err)
		assert.Equal(t, RejectMalformed, ReasonOf(err))
	})

	t.Run("non-numeric longitude", func(t *testing.T) {
		row := validFireRow()
		row["longitude"] = "west-ish"
		_, err := TransformFireRow(row, AlbertaBounds)

		require.Error(t, err)
		assert.Equal(t, RejectMalformed, ReasonOf(err))
	})

	t.Run("outside target region", func(t *testing.T) {
		row := validFireRow()
		row["latitude"] = "45.5017" // Montreal
		row["longitude"] = "-73.5673"
		_, err := TransformFireRow(row, AlbertaBounds)

		require.Error(t, err)
		assert.Equal(t, RejectOutOfRegion, ReasonOf(err))
	})

	t.Run("unparseable acquisition date", func(t *testing.T) {
		row := validFireRow()
		row["acq_date"] = "14/05/2025"
		_, err := TransformFireRow(row, AlbertaBounds)

		require.Error(t, err)
		assert.Equal(t, RejectMalformed, ReasonOf(err))
	})

	t.Run("missing acq_time defaults to midnight", func(t *testing.T) {
		row := validFireRow()
		delete(row, "acq_time")
		rec, err := TransformFireRow(row, AlbertaBounds)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC), rec.DetectedAt)
	})

	t.Run("non-numeric scan", func(t *testing.T) {
		row := validFireRow()
		row["scan"] = "n/a"
		_, err := TransformFireRow(row, AlbertaBounds)

		require.Error(t, err)
		assert.Equal(t, RejectMalformed, ReasonOf(err))
	})

	t.Run("missing scan and track assume one pixel", func(t *testing.T) {
		row := validFireRow()
		delete(row, "scan")
		delete(row, "track")
		rec, err := TransformFireRow(row, AlbertaBounds)

		require.NoError(t, err)
		assert.Equal(t, 0.14, rec.SizeOrDepth)
	})

	t.Run("missing confidence defaults to nominal", func(t *testing.T) {
		row := validFireRow()
		delete(row, "confidence")
		rec, err := TransformFireRow(row, AlbertaBounds)

		require.NoError(t, err)
		assert.Equal(t, "nominal", rec.Attributes["confidence"])
	})

	t.Run("deterministic ID across re-ingestion", func(t *testing.T) {
		rec1, err := TransformFireRow(validFireRow(), AlbertaBounds)
		require.NoError(t, err)
		rec2, err := TransformFireRow(validFireRow(), AlbertaBounds)
		require.NoError(t, err)

		assert.Equal(t, rec1.ID, rec2.ID)
	})
}

func TestFireID(t *testing.T) {
	tests := []struct {
		name     string
		acqDate  string
		lat      string
		lon      string
		expected string
	}{
		{"truncates coordinates", "2025-05-14", "53.9169", "-116.6275", "FIRMS-2025-05-14-53.916--116.62"},
		{"short coordinates kept whole", "2025-05-14", "54.1", "-117.2", "FIRMS-2025-05-14-54.1--117.2"},
		{"trims whitespace", "2025-05-14", " 53.9169", "-116.6275 ", "FIRMS-2025-05-14-53.916--116.62"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FireID(tt.acqDate, tt.lat, tt.lon))
		})
	}

	t.Run("nearby same-day detections collide", func(t *testing.T) {
		// Inherited from the upstream scheme: truncation merges detections
		// that differ only past the cut-off digit.
		a := FireID("2025-05-14", "53.9169", "-116.6275")
		b := FireID("2025-05-14", "53.9161", "-116.6279")
		assert.Equal(t, a, b)
	})
}

func TestReasonOf(t *testing.T) {
	assert.Equal(t, RejectOutOfRegion, ReasonOf(&RejectError{Reason: RejectOutOfRegion}))
	assert.Equal(t, RejectMalformed, ReasonOf(assert.AnError))
}
