package forest

import "fmt"

// Check verifies ordering, balance factors and the size counter. It is
// linear in the tree size and meant for tests and debugging.
func (t *Tree[T]) Check() error {
	type frame struct {
		n       *T
		visited bool
	}

	heights := make(map[*T]int, t.size)
	height := func(n *T) int {
		if n == nil {
			return 0
		}
		return heights[n]
	}

	// Post-order walk with an explicit stack.
	stack := []frame{}
	if t.root != nil {
		stack = append(stack, frame{n: t.root})
	}
	count := 0
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		h := t.hdr(f.n)
		if !f.visited {
			stack[len(stack)-1].visited = true
			if h.Right != nil {
				stack = append(stack, frame{n: h.Right})
			}
			if h.Left != nil {
				stack = append(stack, frame{n: h.Left})
			}
			continue
		}
		stack = stack[:len(stack)-1]
		count++
		if count > t.size {
			return fmt.Errorf("forest: more records reachable than size %d (cycle?)", t.size)
		}

		if h.Left != nil && t.cmp(h.Left, f.n) >= 0 {
			return fmt.Errorf("forest: left child does not order before its parent")
		}
		if h.Right != nil && t.cmp(h.Right, f.n) <= 0 {
			return fmt.Errorf("forest: right child does not order after its parent")
		}

		lh, rh := height(h.Left), height(h.Right)
		if int(h.Balance) != rh-lh {
			return fmt.Errorf("forest: balance %d, want %d", h.Balance, rh-lh)
		}
		if h.Balance < -1 || h.Balance > 1 {
			return fmt.Errorf("forest: balance %d out of range", h.Balance)
		}
		heights[f.n] = 1 + max(lh, rh)
	}
	if count != t.size {
		return fmt.Errorf("forest: reachable %d, size %d", count, t.size)
	}

	// Parent-child order does not imply global order; check the in-order walk.
	c := t.NewCursor()
	var prev *T
	for n := c.Next(); n != nil; n = c.Next() {
		if prev != nil && t.cmp(prev, n) >= 0 {
			return fmt.Errorf("forest: in-order walk is not strictly increasing")
		}
		prev = n
	}
	return nil
}

// Check verifies the links and the size counter of the list.
func (l *List[T]) Check() error {
	count := 0
	var prev *T
	for n := l.head; n != nil; n = l.hdr(n).Right {
		count++
		if count > l.size {
			return fmt.Errorf("forest: list longer than size %d (cycle?)", l.size)
		}
		if l.hdr(n).Left != prev {
			return fmt.Errorf("forest: broken back link")
		}
		prev = n
	}
	if prev != l.tail {
		return fmt.Errorf("forest: tail anchor does not match last record")
	}
	if count != l.size {
		return fmt.Errorf("forest: reachable %d, size %d", count, l.size)
	}
	return nil
}
