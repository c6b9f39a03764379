package vectors

import "fmt"

// SIMDWidth is the number of lanes a padded row is rounded up to. Eight
// matches an AVX2 register of float32 values.
const SIMDWidth = 8

// PreferredSIMDSize rounds n up to the next multiple of SIMDWidth.
func PreferredSIMDSize(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + SIMDWidth - 1) / SIMDWidth * SIMDWidth
}

// SimdOptimized is a row-major matrix whose rows are padded to a multiple of
// SIMDWidth. Padding lanes are always zero.
type SimdOptimized[T Float] struct {
	rows   int
	cols   int
	stride int
	data   []T
}

func WithDimension[T Float](rows, cols int, fill T) *SimdOptimized[T] {
	stride := PreferredSIMDSize(cols)
	m := &SimdOptimized[T]{
		rows:   rows,
		cols:   cols,
		stride: stride,
		data:   make([]T, rows*stride),
	}
	if fill != 0 {
		for r := 0; r < rows; r++ {
			row := m.Row(r)
			for c := range row {
				row[c] = fill
			}
		}
	}
	return m
}

// FromRows copies rows of equal logical length into a padded matrix.
func FromRows[T Float](rows [][]T) (*SimdOptimized[T], error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	m := WithDimension[T](len(rows), cols, 0)
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrIndexOutOfRange, r, len(row), cols)
		}
		copy(m.Row(r), row)
	}
	return m, nil
}

func (m *SimdOptimized[T]) Rows() int {
	return m.rows
}

func (m *SimdOptimized[T]) Cols() int {
	return m.cols
}

// Stride is the padded length of every row.
func (m *SimdOptimized[T]) Stride() int {
	return m.stride
}

func (m *SimdOptimized[T]) Get(row, col int) T {
	return m.data[m.index(row, col)]
}

func (m *SimdOptimized[T]) Set(row, col int, value T) {
	m.data[m.index(row, col)] = value
}

// Row returns the logical part of a row. Writes go to the matrix.
func (m *SimdOptimized[T]) Row(row int) []T {
	start := m.rowStart(row)
	return m.data[start : start+m.cols : start+m.cols]
}

// PaddedRow returns the whole stride of a row, padding included. Only kernels
// that rely on zero padding should use it.
func (m *SimdOptimized[T]) PaddedRow(row int) []T {
	start := m.rowStart(row)
	return m.data[start : start+m.stride : start+m.stride]
}

func (m *SimdOptimized[T]) rowStart(row int) int {
	if row < 0 || row >= m.rows {
		panic(fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, row, m.rows))
	}
	return row * m.stride
}

func (m *SimdOptimized[T]) index(row, col int) int {
	if col < 0 || col >= m.cols {
		panic(fmt.Errorf("%w: column %d of %d", ErrIndexOutOfRange, col, m.cols))
	}
	return m.rowStart(row) + col
}
