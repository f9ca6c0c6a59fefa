package buffer

// Sample is the element type of a scratch buffer.
type Sample interface {
	~float64 | ~complex128
}

// Buffer wraps a slice with reuse-friendly semantics.
type Buffer[T Sample] struct {
	data []T
}

// New returns a zero-filled Buffer of the given length.
func New[T Sample](length int) *Buffer[T] {
	if length < 0 {
		length = 0
	}
	return &Buffer[T]{data: make([]T, length)}
}

// Data returns the underlying slice.
func (b *Buffer[T]) Data() []T {
	return b.data
}

// Len returns the current number of elements.
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Resize sets the length to n, reusing existing capacity when possible.
// Contents are unspecified after a resize; call Zero if needed.
func (b *Buffer[T]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n <= cap(b.data) {
		b.data = b.data[:n]
		return
	}
	b.data = make([]T, n)
}

// Zero sets all elements to 0.
func (b *Buffer[T]) Zero() {
	clear(b.data)
}
