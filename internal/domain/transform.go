package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RejectReason classifies why a record did not make it into the store.
// Rejections are counted per run, never fatal to a batch.
type RejectReason string

const (
	RejectMalformed   RejectReason = "MALFORMED_RECORD"
	RejectOutOfRegion RejectReason = "OUT_OF_REGION"
	RejectStoreFault  RejectReason = "STORE_FAULT"
)

// RejectError carries the rejection reason for a single raw feed row.
type RejectError struct {
	Reason RejectReason
	Detail string
}

func (e *RejectError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// ReasonOf extracts the rejection reason from a transform error, falling back
// to MALFORMED_RECORD for anything unclassified.
func ReasonOf(err error) RejectReason {
	if re, ok := err.(*RejectError); ok {
		return re.Reason
	}
	return RejectMalformed
}

// viirsPixelHectares is the approximate footprint of one VIIRS fire pixel
// (375m x 375m). The size estimate derived from it is an approximation of the
// detected hot spot, not a measured fire area.
const viirsPixelHectares = 0.14

// acqLayout parses the combined FIRMS acquisition date and HHMM time.
const acqLayout = "2006-01-02 1504"

// TransformFireRow converts one raw FIRMS CSV row into a canonical fire
// detection, or rejects it with a RejectError. Rows outside the region are
// rejected before any further parsing cost is spent.
func TransformFireRow(row map[string]string, region BoundingBox) (DetectionRecord, error) {
	lat, err := requiredFloat(row, "latitude")
	if err != nil {
		return DetectionRecord{}, err
	}
	lon, err := requiredFloat(row, "longitude")
	if err != nil {
		return DetectionRecord{}, err
	}

	point := GeoPoint{Lat: lat, Lng: lon}
	if !region.Contains(point) {
		return DetectionRecord{}, &RejectError{
			Reason: RejectOutOfRegion,
			Detail: fmt.Sprintf("%.4f,%.4f outside target region", lat, lon),
		}
	}

	// FIRMS omits scan/track on some older rows; the upstream convention is
	// to assume a single nominal pixel.
	scan, err := optionalFloat(row, "scan", 1)
	if err != nil {
		return DetectionRecord{}, err
	}
	track, err := optionalFloat(row, "track", 1)
	if err != nil {
		return DetectionRecord{}, err
	}

	acqDate := strings.TrimSpace(row["acq_date"])
	acqTime := strings.TrimSpace(row["acq_time"])
	if acqTime == "" {
		acqTime = "0000"
	}
	detectedAt, err := time.ParseInLocation(acqLayout, acqDate+" "+acqTime, time.UTC)
	if err != nil {
		return DetectionRecord{}, &RejectError{
			Reason: RejectMalformed,
			Detail: fmt.Sprintf("acquisition timestamp %q %q", acqDate, acqTime),
		}
	}

	confidence := strings.TrimSpace(row["confidence"])
	if confidence == "" {
		confidence = "nominal"
	}

	return DetectionRecord{
		ID:          FireID(acqDate, row["latitude"], row["longitude"]),
		Name:        fmt.Sprintf("Fire near %.2fN %.2fW", lat, math.Abs(lon)),
		Point:       point,
		Category:    CategoryFire,
		Status:      StatusActive, // FIRMS only reports active detections
		SizeOrDepth: round2(viirsPixelHectares * scan * track),
		DetectedAt:  detectedAt,
		Source:      SourceFIRMS,
		Attributes: map[string]string{
			"confidence": confidence,
			"cause":      "Unknown",
		},
	}, nil
}

// FireID derives the stable detection ID from immutable source fields, using
// the upstream scheme: raw coordinate strings truncated to 6 and 7 characters.
// Distinct same-day detections within the truncation radius collide and merge
// via upsert; that precision tradeoff is inherited from the source scheme.
func FireID(acqDate, latStr, lonStr string) string {
	return fmt.Sprintf("FIRMS-%s-%s-%s",
		acqDate,
		truncate(strings.TrimSpace(latStr), 6),
		truncate(strings.TrimSpace(lonStr), 7),
	)
}

func requiredFloat(row map[string]string, field string) (float64, error) {
	s := strings.TrimSpace(row[field])
	if s == "" {
		return 0, &RejectError{Reason: RejectMalformed, Detail: "missing " + field}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &RejectError{Reason: RejectMalformed, Detail: "non-numeric " + field}
	}
	return v, nil
}

func optionalFloat(row map[string]string, field string, def float64) (float64, error) {
	s := strings.TrimSpace(row[field])
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &RejectError{Reason: RejectMalformed, Detail: "non-numeric " + field}
	}
	return v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
