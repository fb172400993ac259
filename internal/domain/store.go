package domain

// QueryFilter narrows a point-store read. The zero value matches everything.
type QueryFilter struct {
	Box      *BoundingBox // nil means no spatial filter; bounds are inclusive
	Category Category     // empty means any category
	Status   Status       // empty means any status
	Limit    int          // 0 means no limit
}

// SourceCount is one entry of a per-source breakdown.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Stats aggregates the record set, optionally scoped to a bounding box.
type Stats struct {
	Total      int              `json:"total"`
	ByStatus   map[Status]int   `json:"by_status"`
	ByCategory map[Category]int `json:"by_category"`
	TopSources []SourceCount    `json:"top_sources"`
}
