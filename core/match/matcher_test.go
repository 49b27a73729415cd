package match

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

func TestDefaultThresholds(t *testing.T) {
	t.Run("Defaults are pinned", func(t *testing.T) {
		config := model.DefaultMatchConfig()

		assert.Equal(t, 20.0, config.CenterDistThreshold, "Default CenterDistThreshold should be 20.0")
		assert.Equal(t, 0.3, config.SizeRatioDifference, "Default SizeRatioDifference should be 0.3")
		assert.Equal(t, 0.3, config.IoUThreshold, "Default IoUThreshold should be 0.3")
		assert.Equal(t, 0.9, NearIdenticalAreaRatio, "Near-identical fallback ratio should be 0.9")
	})
}

func TestFromBox(t *testing.T) {
	t.Run("Converts x/y/w/h to corner form", func(t *testing.T) {
		r := FromBox(10, 20, 30, 40)

		assert.Equal(t, Rect{X0: 10, Y0: 20, X1: 40, Y1: 60}, r)
		assert.Equal(t, 1200.0, r.Area(), "Expected area w*h")

		cx, cy := r.Center()
		assert.Equal(t, 25.0, cx)
		assert.Equal(t, 40.0, cy)
	})

	t.Run("FromAnnotation uses the record's geometry", func(t *testing.T) {
		a := &model.Annotation{X: 1, Y: 2, W: 3, H: 4}

		assert.Equal(t, FromBox(1, 2, 3, 4), FromAnnotation(a))
	})
}

func TestMatches(t *testing.T) {
	t.Run("Identical boxes match", func(t *testing.T) {
		a := FromBox(10, 10, 50, 20)

		assert.True(t, Matches(a, a, nil), "Expected a box to match itself")
	})

	t.Run("Near-identical box within thresholds matches", func(t *testing.T) {
		query := Rect{X0: 10, Y0: 10, X1: 60, Y1: 30}
		candidate := FromBox(12, 11, 49, 18)

		assert.True(t, Matches(query, candidate, nil), "Expected slightly drifted box to match")
	})

	t.Run("Distant box does not match", func(t *testing.T) {
		query := Rect{X0: 10, Y0: 10, X1: 60, Y1: 30}
		candidate := FromBox(200, 200, 10, 10)

		assert.False(t, Matches(query, candidate, nil), "Expected far-away box to not match")
	})

	t.Run("Is symmetric", func(t *testing.T) {
		boxes := []Rect{
			FromBox(10, 10, 50, 20),
			FromBox(12, 11, 49, 18),
			FromBox(200, 200, 10, 10),
			FromBox(0, 0, 0, 0),
			FromBox(5, 5, 100, 5),
		}

		for _, a := range boxes {
			for _, b := range boxes {
				assert.Equal(t, Matches(a, b, nil), Matches(b, a, nil),
					"Expected Matches(%v, %v) to be symmetric", a, b)
			}
		}
	})

	t.Run("Centers exactly at the distance threshold match", func(t *testing.T) {
		config := model.DefaultMatchConfig()
		a := FromBox(0, 0, 50, 20)
		b := FromBox(config.CenterDistThreshold, 0, 50, 20)

		assert.True(t, Matches(a, b, &config), "Expected boxes exactly at the threshold to match")
	})

	t.Run("Centers just past the distance threshold do not match", func(t *testing.T) {
		config := model.DefaultMatchConfig()
		a := FromBox(0, 0, 50, 20)
		b := FromBox(config.CenterDistThreshold+0.001, 0, 50, 20)

		assert.False(t, Matches(a, b, &config), "Expected boxes past the threshold to not match")
	})

	t.Run("Size mismatch is rejected despite nearby centers", func(t *testing.T) {
		a := FromBox(0, 0, 100, 100)
		b := FromBox(45, 45, 10, 10)

		assert.False(t, Matches(a, b, nil), "Expected boxes with very different areas to not match")
	})

	t.Run("Identical footprint without overlap matches via the area fallback", func(t *testing.T) {
		// Shifted by more than its own width, centers still within the
		// distance threshold, no overlap at all.
		a := FromBox(0, 0, 10, 10)
		b := FromBox(12, 0, 10, 10)

		assert.True(t, Matches(a, b, nil), "Expected identical-size boxes with no overlap to match")
	})

	t.Run("Low IoU with dissimilar footprint is rejected", func(t *testing.T) {
		config := model.MatchConfig{
			CenterDistThreshold: 100,
			SizeRatioDifference: 0.3,
			IoUThreshold:        0.9,
		}
		a := FromBox(0, 0, 40, 10)
		b := FromBox(10, 0, 50, 10)

		assert.False(t, Matches(a, b, &config), "Expected IoU below the threshold to not match without the fallback")
	})

	t.Run("Custom config overrides the defaults", func(t *testing.T) {
		config := model.MatchConfig{
			CenterDistThreshold: 1,
			SizeRatioDifference: 0.3,
			IoUThreshold:        0.3,
		}
		a := FromBox(0, 0, 50, 20)
		b := FromBox(5, 0, 50, 20)

		assert.False(t, Matches(a, b, &config), "Expected tight center threshold to reject the drift")
		assert.True(t, Matches(a, b, nil), "Expected the defaults to accept the same drift")
	})

	t.Run("Two zero-area boxes at the same point match", func(t *testing.T) {
		a := FromBox(10, 10, 0, 0)
		b := FromBox(10, 10, 0, 0)

		assert.True(t, Matches(a, b, nil), "Expected degenerate identical boxes to match")
	})

	t.Run("Zero-area box does not match a real box", func(t *testing.T) {
		a := FromBox(10, 10, 0, 0)
		b := FromBox(10, 10, 50, 20)

		assert.False(t, Matches(a, b, nil), "Expected degenerate box to not match a sized box")
	})

	t.Run("Non-finite geometry is rejected, not propagated", func(t *testing.T) {
		a := FromBox(math.NaN(), 10, 50, 20)
		b := FromBox(10, 10, 50, 20)

		assert.False(t, Matches(a, b, nil), "Expected NaN geometry to simply not match")
	})
}
