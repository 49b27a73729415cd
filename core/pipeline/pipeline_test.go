package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/Hideme-sub004/model"
)

func TestSearchDetector(t *testing.T) {
	t.Run("Finds every occurrence with offsets", func(t *testing.T) {
		detect := SearchDetector("cat", false)

		annotations, err := detect("cat and cat and catalog")
		require.NoError(t, err)
		require.Len(t, annotations, 3, "Expected the prefix of catalog to match too")

		assert.Equal(t, 0, annotations[0].Start)
		assert.Equal(t, 3, annotations[0].End)
		assert.Equal(t, 8, annotations[1].Start)
		assert.Equal(t, 16, annotations[2].Start)
		assert.Equal(t, model.KindSearch, annotations[0].Kind, "Expected SEARCH annotations")
	})

	t.Run("Case-insensitive matching preserves original casing", func(t *testing.T) {
		detect := SearchDetector("secret", false)

		annotations, err := detect("Secret SECRET")
		require.NoError(t, err)
		require.Len(t, annotations, 2)
		assert.Equal(t, "Secret", annotations[0].Text)
		assert.Equal(t, "SECRET", annotations[1].Text)
	})

	t.Run("Case-sensitive matching skips other casings", func(t *testing.T) {
		detect := SearchDetector("secret", true)

		annotations, err := detect("Secret secret SECRET")
		require.NoError(t, err)
		require.Len(t, annotations, 1)
		assert.Equal(t, 7, annotations[0].Start)
	})

	t.Run("Occurrences do not overlap", func(t *testing.T) {
		detect := SearchDetector("aa", false)

		annotations, err := detect("aaaa")
		require.NoError(t, err)
		assert.Len(t, annotations, 2, "Expected the scan to resume after each match")
	})

	t.Run("Empty term is an error", func(t *testing.T) {
		detect := SearchDetector("", false)

		_, err := detect("some text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search term is empty")
	})

	t.Run("No match returns nothing", func(t *testing.T) {
		detect := SearchDetector("missing", false)

		annotations, err := detect("some text")
		require.NoError(t, err)
		assert.Empty(t, annotations)
	})
}

func TestLocate(t *testing.T) {
	t.Run("Fills in geometry from the locator", func(t *testing.T) {
		annotations := []*model.Annotation{
			{Kind: model.KindSearch, Start: 4, End: 10},
		}

		located := Locate(annotations, func(start, end int) (float64, float64, float64, float64, bool) {
			return float64(start), 50, float64(end - start), 12, true
		})

		require.Len(t, located, 1)
		assert.Equal(t, 4.0, located[0].X)
		assert.Equal(t, 50.0, located[0].Y)
		assert.Equal(t, 6.0, located[0].W)
		assert.Equal(t, 12.0, located[0].H)
	})

	t.Run("Drops annotations the locator cannot place", func(t *testing.T) {
		annotations := []*model.Annotation{
			{Start: 0, End: 4},
			{Start: 100, End: 104},
		}

		located := Locate(annotations, func(start, end int) (float64, float64, float64, float64, bool) {
			if start >= 100 {
				return 0, 0, 0, 0, false
			}
			return float64(start), 0, float64(end - start), 10, true
		})

		require.Len(t, located, 1)
		assert.Equal(t, 0, located[0].Start)
	})

	t.Run("Nil locator places nothing", func(t *testing.T) {
		annotations := []*model.Annotation{{Start: 0, End: 4}}

		assert.Nil(t, Locate(annotations, nil))
	})
}
