// Package forest implements intrusive ordered structures over caller records.
//
// A record embeds one Header per structure it may join. Trees are AVL
// balanced; lists are doubly linked and back FIFO and LIFO views. No
// structure allocates nodes: linking rewrites headers in place.
//
// Nothing in this package is safe for concurrent use.
package forest

import "fmt"

// Header is the per-structure bookkeeping embedded in a record.
//
// For trees Left and Right are the children and Balance is
// height(right) - height(left). For lists Left is the previous record and
// Right the next one.
type Header[T any] struct {
	Left    *T
	Right   *T
	Balance int8
}

// Reset clears the header.
func (h *Header[T]) Reset() {
	h.Left, h.Right, h.Balance = nil, nil, 0
}

// HeaderFunc returns the header a structure uses inside rec.
type HeaderFunc[T any] func(rec *T) *Header[T]

// CorruptionError reports a structurally impossible shape. It is raised with
// panic because the structure can no longer be trusted.
type CorruptionError struct {
	Op     string
	Detail string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("forest: corrupted structure during %s: %s", e.Op, e.Detail)
}

func corrupt(op, format string, args ...any) {
	panic(&CorruptionError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
