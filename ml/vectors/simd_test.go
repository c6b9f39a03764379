package vectors

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestPreferredSIMDSize(t *testing.T) {
	cases := map[int]int{0: 0, 1: 8, 7: 8, 8: 8, 9: 16, 16: 16, 17: 24}
	for n, expected := range cases {
		assert.Equal(t, expected, PreferredSIMDSize(n), "n = %d", n)
	}
}

func TestSimdOptimized(t *testing.T) {
	m := WithDimension[float64](3, 5, 2.5)
	require.Equal(t, 3, m.Rows())
	require.Equal(t, 5, m.Cols())
	require.Equal(t, 8, m.Stride())

	for r := 0; r < m.Rows(); r++ {
		assert.Len(t, m.Row(r), 5)
		assert.Equal(t, []float64{2.5, 2.5, 2.5, 2.5, 2.5}, m.Row(r))

		padded := m.PaddedRow(r)
		require.Len(t, padded, 8)
		assert.Equal(t, []float64{0, 0, 0}, padded[5:], "padding stays zero whatever the fill")
	}

	m.Set(1, 4, 7)
	assert.Equal(t, 7.0, m.Get(1, 4))
	assert.Equal(t, 7.0, m.Row(1)[4])
	assert.Equal(t, 0.0, m.PaddedRow(1)[5])

	assert.Panics(t, func() { m.Get(0, 5) }, "logical reads never reach padding")
	assert.Panics(t, func() { m.Row(3) })
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, m.Row(1))
	assert.Equal(t, []float64{1, 2, 3, 0, 0, 0, 0, 0}, m.PaddedRow(0))

	_, err = FromRows([][]float64{{1, 2}, {3}})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}
