package vectors

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestTriangular(t *testing.T) {
	t.Run("Symmetric get/set", testTriangularSymmetric)
	t.Run("No offset collisions", testTriangularOffsets)
	t.Run("Out of range", testTriangularOutOfRange)
	t.Run("From slice keeps pair order", testTriangularFromSlice)
}

func testTriangularSymmetric(t *testing.T) {
	const n = 6
	tri := NewTriangular[float64](n)
	require.Equal(t, n*(n-1)/2, tri.Len())

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			tri.Set(j, i, float64(i*10+j))
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			assert.Equal(t, tri.Get(i, j), tri.Get(j, i))
		}
	}
	assert.Equal(t, 13.0, tri.Get(1, 3))
	assert.Equal(t, 13.0, tri.Get(3, 1))
}

func testTriangularOffsets(t *testing.T) {
	for n := 2; n < 12; n++ {
		tri := NewTriangular[float32](n)
		seen := make(map[int]bool)
		expected := 0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				offset, err := tri.Offset(i, j)
				require.NoError(t, err)
				assert.Equal(t, expected, offset, "pairs are laid out in libsvm order")
				assert.False(t, seen[offset], "offset %d reused for (%d, %d)", offset, i, j)
				seen[offset] = true
				expected++
			}
		}
		assert.Len(t, seen, tri.Len())
	}
}

func testTriangularOutOfRange(t *testing.T) {
	tri := NewTriangular[float64](3)

	_, err := tri.Offset(1, 1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = tri.Offset(0, 3)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = tri.Offset(-1, 2)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	assert.Panics(t, func() { tri.Get(2, 2) })
	assert.Panics(t, func() { tri.Set(0, 5, 1) })
}

func testTriangularFromSlice(t *testing.T) {
	tri, err := TriangularFromSlice(3, []float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.Equal(t, 0.1, tri.Get(1, 0))
	assert.Equal(t, 0.2, tri.Get(0, 2))
	assert.Equal(t, 0.3, tri.Get(2, 1))

	_, err = TriangularFromSlice(3, []float64{0.1})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}
