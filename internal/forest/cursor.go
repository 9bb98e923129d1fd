package forest

// Cursor walks a tree in order with an explicit stack.
//
// The stack holds the records still to be returned whose left subtree has
// already been handled, so the top is always the next record. After the tree
// changes shape the stack must be rebuilt with Seek or SeekAfter; both
// re-descend from the root.
type Cursor[T any] struct {
	t       *Tree[T]
	stack   []*T
	reverse bool
}

// NewCursor returns a cursor positioned before the first record.
func (t *Tree[T]) NewCursor() *Cursor[T] {
	c := &Cursor[T]{t: t, stack: make([]*T, 0, 32)}
	c.First()
	return c
}

// NewReverseCursor returns a cursor walking from the last record backwards.
func (t *Tree[T]) NewReverseCursor() *Cursor[T] {
	c := &Cursor[T]{t: t, stack: make([]*T, 0, 32), reverse: true}
	c.First()
	return c
}

// First positions the cursor on the first record of its direction.
func (c *Cursor[T]) First() {
	c.stack = c.stack[:0]
	c.pushSpine(c.t.root)
}

func (c *Cursor[T]) near(n *T) *T {
	if c.reverse {
		return c.t.hdr(n).Right
	}
	return c.t.hdr(n).Left
}

func (c *Cursor[T]) far(n *T) *T {
	if c.reverse {
		return c.t.hdr(n).Left
	}
	return c.t.hdr(n).Right
}

func (c *Cursor[T]) pushSpine(n *T) {
	for n != nil {
		c.stack = append(c.stack, n)
		n = c.near(n)
	}
}

// Peek returns the record Next would return without advancing.
func (c *Cursor[T]) Peek() *T {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

// Next returns the next record, or nil when the walk is complete.
func (c *Cursor[T]) Next() *T {
	if len(c.stack) == 0 {
		return nil
	}
	n := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.pushSpine(c.far(n))
	return n
}

// seek rebuilds the stack for the first record at or after probe
// (strictly after when strict is set), in the cursor's direction.
func (c *Cursor[T]) seek(probe *T, strict bool) *T {
	c.stack = c.stack[:0]
	cur := c.t.root
	for cur != nil {
		r := c.t.cmp(probe, cur)
		if c.reverse {
			r = -r
		}
		switch {
		case r < 0:
			c.stack = append(c.stack, cur)
			cur = c.near(cur)
		case r > 0 || strict:
			cur = c.far(cur)
		default:
			c.stack = append(c.stack, cur)
			return cur
		}
	}
	return c.Peek()
}

// Seek positions the cursor so that Next returns the first record whose key
// is not before probe's. It returns that record.
func (c *Cursor[T]) Seek(probe *T) *T {
	return c.seek(probe, false)
}

// SeekAfter positions the cursor so that Next returns the first record whose
// key is strictly after probe's. probe need not be linked.
func (c *Cursor[T]) SeekAfter(probe *T) *T {
	return c.seek(probe, true)
}

// Resume positions the cursor on a locator computed before a mutation. It
// reports false when the locator is no longer reachable, in which case the
// caller should fall back to SeekAfter.
func (c *Cursor[T]) Resume(locator *T) bool {
	if locator == nil {
		c.stack = c.stack[:0]
		return true
	}
	return c.Seek(locator) == locator
}
