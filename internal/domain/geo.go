package domain

// GeoPoint is a WGS-84 latitude/longitude coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is a rectangle in latitude/longitude space.
// A box is valid when South <= North and West <= East.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Valid reports whether the box edges are ordered correctly.
func (b BoundingBox) Valid() bool {
	return b.South <= b.North && b.West <= b.East
}

// Contains reports whether p lies inside the box, all edges inclusive.
// This is the region pre-filter semantic used during ingestion.
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.Lat >= b.South && p.Lat <= b.North &&
		p.Lng >= b.West && p.Lng <= b.East
}

// ContainsHalfOpen reports whether p lies in [South, North) x [West, East).
// Grid cells use half-open intervals so a point on a shared cell boundary
// belongs to exactly one cell.
func (b BoundingBox) ContainsHalfOpen(p GeoPoint) bool {
	return p.Lat >= b.South && p.Lat < b.North &&
		p.Lng >= b.West && p.Lng < b.East
}

// AlbertaBounds is the ingestion region filter: FIRMS serves the whole Canada
// feed and only detections inside this box are kept.
var AlbertaBounds = BoundingBox{North: 60.0, South: 48.0, East: -110.0, West: -120.0}

// AlbertaViewport is the fallback box for cluster requests with missing or
// invalid bounds: the whole province.
var AlbertaViewport = BoundingBox{North: 60.0, South: 49.0, East: -110.0, West: -120.0}

// CalgaryViewport is the fallback box for point-list requests with missing or
// invalid bounds: a sample area around Calgary, small enough that an
// unbounded client never pulls the full well dataset.
var CalgaryViewport = BoundingBox{North: 51.3, South: 50.8, East: -113.8, West: -114.3}

// ClusterCell is one occupied grid cell of a clustering response. Cells are
// computed per request and never persisted.
type ClusterCell struct {
	Center GeoPoint `json:"center"`
	Count  uint32   `json:"count"`
}
