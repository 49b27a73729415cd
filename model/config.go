package model

// MatchConfig represents the thresholds for fuzzy position matching.
// The defaults are deliberately loose: the matcher backs user-facing
// cleanup actions where a missed match is worse than an over-eager one.
type MatchConfig struct {
	// CenterDistThreshold is the maximum absolute distance between box
	// centers, in page units. Not normalized by box size.
	CenterDistThreshold float64 `json:"center_dist_threshold"`
	// SizeRatioDifference is the tolerated relative area difference;
	// boxes pass when min(area)/max(area) >= 1 - SizeRatioDifference.
	SizeRatioDifference float64 `json:"size_ratio_difference"`
	// IoUThreshold is the minimum intersection-over-union for
	// overlapping boxes.
	IoUThreshold float64 `json:"iou_threshold"`
}

// DefaultMatchConfig returns the documented default thresholds
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		CenterDistThreshold: 20.0,
		SizeRatioDifference: 0.3,
		IoUThreshold:        0.3,
	}
}
