package vectors

import "fmt"

type Float interface {
	~float32 | ~float64
}

// Triangular stores one value per unordered pair (i, j), i != j, of n items.
// Pairs are laid out as (0,1), (0,2) ... (0,n-1), (1,2) ... which is the
// order libsvm uses for rho, probA and probB.
type Triangular[T Float] struct {
	dimension int
	data      []T
}

func NewTriangular[T Float](n int) *Triangular[T] {
	if n < 0 {
		n = 0
	}
	return &Triangular[T]{
		dimension: n,
		data:      make([]T, n*(n-1)/2),
	}
}

// TriangularFromSlice wraps values already stored in pair order.
func TriangularFromSlice[T Float](n int, values []T) (*Triangular[T], error) {
	tri := NewTriangular[T](n)
	if len(values) != len(tri.data) {
		return nil, fmt.Errorf("%w: %d values for %d items, expected %d", ErrIndexOutOfRange, len(values), n, len(tri.data))
	}
	copy(tri.data, values)
	return tri, nil
}

func (t *Triangular[T]) Dimension() int {
	return t.dimension
}

func (t *Triangular[T]) Len() int {
	return len(t.data)
}

func (t *Triangular[T]) Offset(i, j int) (int, error) {
	if i > j {
		i, j = j, i
	}
	if i < 0 || j >= t.dimension || i == j {
		return 0, fmt.Errorf("%w: pair (%d, %d) for dimension %d", ErrIndexOutOfRange, i, j, t.dimension)
	}
	return i*t.dimension - i*(i+1)/2 + (j - i - 1), nil
}

func (t *Triangular[T]) Get(i, j int) T {
	return t.data[t.mustOffset(i, j)]
}

func (t *Triangular[T]) Set(i, j int, value T) {
	t.data[t.mustOffset(i, j)] = value
}

// Values exposes the flat storage in pair order.
func (t *Triangular[T]) Values() []T {
	return t.data
}

func (t *Triangular[T]) mustOffset(i, j int) int {
	offset, err := t.Offset(i, j)
	if err != nil {
		panic(err)
	}
	return offset
}
