package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValue(t *testing.T) {
	t.Run("Marshals to JSON bytes", func(t *testing.T) {
		m := Metadata{"confidence": 0.9, "source": "detector"}

		value, err := m.Value()
		require.NoError(t, err)

		b, ok := value.([]byte)
		require.True(t, ok, "Expected driver value to be []byte")
		assert.Contains(t, string(b), "detector")
	})

	t.Run("Nil metadata marshals to null", func(t *testing.T) {
		var m Metadata

		value, err := m.Value()
		require.NoError(t, err)
		assert.Equal(t, "null", string(value.([]byte)))
	})
}

func TestMetadataScan(t *testing.T) {
	t.Run("Scans JSON bytes", func(t *testing.T) {
		var m Metadata

		err := m.Scan([]byte(`{"page": 3, "color": "yellow"}`))
		require.NoError(t, err)

		assert.Equal(t, "yellow", m["color"])
		assert.Equal(t, float64(3), m["page"])
	})

	t.Run("Scans nil to an empty map", func(t *testing.T) {
		var m Metadata

		err := m.Scan(nil)
		require.NoError(t, err)

		assert.NotNil(t, m)
		assert.Empty(t, m)
	})

	t.Run("Scans another Metadata value directly", func(t *testing.T) {
		var m Metadata

		err := m.Scan(Metadata{"k": "v"})
		require.NoError(t, err)

		assert.Equal(t, "v", m["k"])
	})

	t.Run("Rejects non-byte values", func(t *testing.T) {
		var m Metadata

		err := m.Scan(42)
		assert.Error(t, err, "Expected non-byte scan source to fail")
		assert.Contains(t, err.Error(), "type assertion to []byte failed")
	})
}
