package domain

import "time"

// Category distinguishes the hazard kinds sharing the detection shape.
type Category string

const (
	CategoryFire Category = "FIRE"
	CategoryWell Category = "WELL"
)

// Status is the lifecycle state of a detection. Fire statuses follow the
// provincial wildfire reporting states; wells are always ABANDONED.
type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusContained    Status = "CONTAINED"
	StatusUnderControl Status = "UNDER_CONTROL"
	StatusOut          Status = "OUT"
	StatusAbandoned    Status = "ABANDONED"
)

// SourceFIRMS tags records ingested from the NASA FIRMS feed. The
// clear-existing path deletes by this tag, so it must stay stable.
const SourceFIRMS = "NASA_FIRMS"

// DetectionRecord is one logical hazard detection. ID is derived
// deterministically from immutable source fields, so upsert by ID is the only
// mutation path; records leave the store only through the retention sweeper.
type DetectionRecord struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Point       GeoPoint          `json:"point"`
	Category    Category          `json:"category"`
	Status      Status            `json:"status"`
	SizeOrDepth float64           `json:"size_or_depth"` // hectares for fires, metres for wells
	DetectedAt  time.Time         `json:"detected_at"`
	LastUpdated time.Time         `json:"last_updated,omitempty"`
	Source      string            `json:"source"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Summary reports the outcome of one ingestion run.
type Summary struct {
	Skipped     bool `json:"skipped"`
	Created     int  `json:"created"`
	Updated     int  `json:"updated"`
	Rejected    int  `json:"rejected"`
	RegionTotal int  `json:"region_total"` // active fires in the region after the run
}
