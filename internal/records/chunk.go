package records

import (
	"fmt"
	"iter"
)

// Chunk groups seq into contiguous batches of size elements. Only the final
// batch may be shorter, and it is never empty. Size must be at least 1.
func Chunk[T any](seq iter.Seq[T], size int) iter.Seq[[]T] {
	if size < 1 {
		panic(fmt.Sprintf("records: chunk size must be positive, got %d", size))
	}
	return func(yield func([]T) bool) {
		batch := make([]T, 0, size)
		for v := range seq {
			batch = append(batch, v)
			if len(batch) == size {
				if !yield(batch) {
					return
				}
				batch = make([]T, 0, size)
			}
		}
		if len(batch) > 0 {
			yield(batch)
		}
	}
}
