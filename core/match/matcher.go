package match

import (
	"math"

	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

// NearIdenticalAreaRatio is the fallback acceptance ratio: boxes whose
// areas differ by less than 10% match even without measurable overlap.
// This covers detection re-runs that shift a box by more than its own
// width while keeping its footprint.
const NearIdenticalAreaRatio = 0.9

// Rect is an axis-aligned box in corner form
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// FromBox converts an annotation's (x, y, w, h) geometry to corner form
func FromBox(x, y, w, h float64) Rect {
	return Rect{X0: x, Y0: y, X1: x + w, Y1: y + h}
}

// FromAnnotation returns the annotation's bounding box in corner form
func FromAnnotation(a *model.Annotation) Rect {
	return FromBox(a.X, a.Y, a.W, a.H)
}

// Center returns the box center point
func (r Rect) Center() (float64, float64) {
	return (r.X0 + r.X1) / 2, (r.Y0 + r.Y1) / 2
}

// Area returns the box area
func (r Rect) Area() float64 {
	return (r.X1 - r.X0) * (r.Y1 - r.Y0)
}

// Matches decides whether two boxes represent the same annotation
// despite small coordinate drift (zoom changes, detection re-runs,
// history replay). Pure and symmetric. A nil config uses
// model.DefaultMatchConfig().
//
// A candidate is rejected when the absolute center distance exceeds
// CenterDistThreshold or the areas differ by more than
// SizeRatioDifference. It is accepted when the intersection-over-union
// reaches IoUThreshold, or when the areas are near-identical
// (NearIdenticalAreaRatio) regardless of overlap.
func Matches(a, b Rect, config *model.MatchConfig) bool {
	cfg := model.DefaultMatchConfig()
	if config != nil {
		cfg = *config
	}

	ax, ay := a.Center()
	bx, by := b.Center()
	if math.Hypot(ax-bx, ay-by) > cfg.CenterDistThreshold {
		return false
	}

	ratio := areaRatio(a.Area(), b.Area())
	if ratio < 1-cfg.SizeRatioDifference {
		return false
	}

	iw := math.Min(a.X1, b.X1) - math.Max(a.X0, b.X0)
	ih := math.Min(a.Y1, b.Y1) - math.Max(a.Y0, b.Y0)
	if iw > 0 && ih > 0 {
		intersection := iw * ih
		union := a.Area() + b.Area() - intersection
		if union > 0 && intersection/union >= cfg.IoUThreshold {
			return true
		}
	}

	return ratio > NearIdenticalAreaRatio
}

// areaRatio returns min/max of two areas. Two zero-area boxes count as
// identical footprints; a single zero-area box matches nothing by size.
func areaRatio(a, b float64) float64 {
	lo := math.Min(a, b)
	hi := math.Max(a, b)
	if hi == 0 {
		return 1
	}
	return lo / hi
}
