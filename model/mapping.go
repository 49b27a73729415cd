package model

// BBox is the corner form of an annotation's bounding box as it
// appears in an exported redaction mapping.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// SensitiveItem is a single annotation projected into the redaction
// export schema consumed by the redaction-execution service.
type SensitiveItem struct {
	OriginalText string  `json:"original_text"`
	EntityType   string  `json:"entity_type"`
	Score        float64 `json:"score"`
	Start        int     `json:"start"`
	End          int     `json:"end"`
	BBox         BBox    `json:"bbox"`
}

// PageMapping groups the sensitive items of one page
type PageMapping struct {
	Page      int             `json:"page"`
	Sensitive []SensitiveItem `json:"sensitive"`
}

// RedactionMapping is the exportable redaction job: pages in ascending
// order, each with its surviving sensitive items. Derived data, never
// persisted by the annotation store.
type RedactionMapping struct {
	Pages []PageMapping `json:"pages"`
}

// MappingStats summarizes a redaction mapping
type MappingStats struct {
	TotalItems int            `json:"total_items"`
	ByType     map[string]int `json:"by_type"`
	ByPage     map[string]int `json:"by_page"`
}
