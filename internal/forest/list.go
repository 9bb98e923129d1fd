package forest

// List is an intrusive doubly linked list. A FIFO list appends at the tail;
// a LIFO list pushes at the head. Both are read from the head.
type List[T any] struct {
	head *T
	tail *T
	size int
	mods uint64
	lifo bool
	hdr  HeaderFunc[T]
}

// NewFIFO returns an empty first-in first-out list.
func NewFIFO[T any](hdr HeaderFunc[T]) *List[T] {
	return &List[T]{hdr: hdr}
}

// NewLIFO returns an empty last-in first-out list.
func NewLIFO[T any](hdr HeaderFunc[T]) *List[T] {
	return &List[T]{hdr: hdr, lifo: true}
}

// Head returns the record at the read end.
func (l *List[T]) Head() *T { return l.head }

// Tail returns the record at the far end.
func (l *List[T]) Tail() *T { return l.tail }

// Len returns the number of linked records.
func (l *List[T]) Len() int { return l.size }

// Mods returns a counter bumped by every structural change.
func (l *List[T]) Mods() uint64 { return l.mods }

// Next returns the record following n.
func (l *List[T]) Next(n *T) *T { return l.hdr(n).Right }

// Prev returns the record preceding n.
func (l *List[T]) Prev(n *T) *T { return l.hdr(n).Left }

// Clear drops the anchors without touching records.
func (l *List[T]) Clear() {
	l.head, l.tail = nil, nil
	l.size = 0
	l.mods++
}

// Push links n at the end its discipline dictates.
func (l *List[T]) Push(n *T) {
	h := l.hdr(n)
	h.Reset()
	switch {
	case l.head == nil:
		l.head, l.tail = n, n
	case l.lifo:
		h.Right = l.head
		l.hdr(l.head).Left = n
		l.head = n
	default:
		h.Left = l.tail
		l.hdr(l.tail).Right = n
		l.tail = n
	}
	l.size++
	l.mods++
}

// Remove unlinks n, which must be linked in l.
func (l *List[T]) Remove(n *T) {
	h := l.hdr(n)
	if h.Left == nil {
		if l.head != n {
			corrupt("list remove", "record without predecessor is not the head")
		}
		l.head = h.Right
	} else {
		l.hdr(h.Left).Right = h.Right
	}
	if h.Right == nil {
		if l.tail != n {
			corrupt("list remove", "record without successor is not the tail")
		}
		l.tail = h.Left
	} else {
		l.hdr(h.Right).Left = h.Left
	}
	h.Reset()
	l.size--
	l.mods++
}

// Pop unlinks and returns the head.
func (l *List[T]) Pop() *T {
	n := l.head
	if n != nil {
		l.Remove(n)
	}
	return n
}
