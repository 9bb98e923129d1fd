package forest

// Compare is a three-way comparator between two records.
type Compare[T any] func(a, b *T) int

// Tree is an intrusive AVL tree. Keys are unique under cmp.
type Tree[T any] struct {
	root *T
	size int
	mods uint64
	cmp  Compare[T]
	hdr  HeaderFunc[T]
}

// step records one descent decision. dir is -1 for left, +1 for right.
type step[T any] struct {
	node *T
	dir  int8
}

// maxDepth bounds the explicit path for any tree that fits in memory.
const maxDepth = 96

// NewTree returns an empty tree ordered by cmp.
func NewTree[T any](cmp Compare[T], hdr HeaderFunc[T]) *Tree[T] {
	return &Tree[T]{cmp: cmp, hdr: hdr}
}

// Root returns the root anchor.
func (t *Tree[T]) Root() *T { return t.root }

// Len returns the number of linked records.
func (t *Tree[T]) Len() int { return t.size }

// Mods returns a counter bumped by every structural change.
func (t *Tree[T]) Mods() uint64 { return t.mods }

// Clear drops the root anchor without touching records.
func (t *Tree[T]) Clear() {
	t.root = nil
	t.size = 0
	t.mods++
}

// Insert links n. It returns false, leaving the tree unchanged, when a
// record with an equal key is already linked.
func (t *Tree[T]) Insert(n *T) bool {
	if t.root == nil {
		t.hdr(n).Reset()
		t.root = n
		t.size++
		t.mods++
		return true
	}

	var buf [maxDepth]step[T]
	path := buf[:0]

	cur := t.root
	for {
		c := t.cmp(n, cur)
		if c == 0 {
			return false
		}
		h := t.hdr(cur)
		if c < 0 {
			path = append(path, step[T]{cur, -1})
			if h.Left == nil {
				t.hdr(n).Reset()
				h.Left = n
				break
			}
			cur = h.Left
		} else {
			path = append(path, step[T]{cur, 1})
			if h.Right == nil {
				t.hdr(n).Reset()
				h.Right = n
				break
			}
			cur = h.Right
		}
	}

	t.size++
	t.mods++

	// Walk back up while the subtree height keeps growing.
	for i := len(path) - 1; i >= 0; i-- {
		p := path[i].node
		hp := t.hdr(p)
		hp.Balance += path[i].dir
		switch hp.Balance {
		case 0:
			return true
		case -1, 1:
			continue
		case -2, 2:
			sub, _ := t.rebalance(p)
			t.relink(path, i, sub)
			return true
		default:
			corrupt("insert", "balance %d out of range", hp.Balance)
		}
	}
	return true
}

// Remove unlinks n, which must be linked in t.
func (t *Tree[T]) Remove(n *T) {
	var buf [maxDepth]step[T]
	path := buf[:0]

	cur := t.root
	for cur != n {
		if cur == nil {
			corrupt("remove", "record not reachable from root")
		}
		c := t.cmp(n, cur)
		if c == 0 {
			corrupt("remove", "distinct record holds an equal key")
		}
		h := t.hdr(cur)
		if c < 0 {
			path = append(path, step[T]{cur, -1})
			cur = h.Left
		} else {
			path = append(path, step[T]{cur, 1})
			cur = h.Right
		}
	}

	hn := t.hdr(n)
	if hn.Left != nil && hn.Right != nil {
		path = t.swapSuccessor(n, path)
	}

	child := hn.Left
	if child == nil {
		child = hn.Right
	} else if hn.Right != nil {
		corrupt("remove", "node still has two children after successor swap")
	}
	t.relink(path, len(path), child)
	hn.Reset()
	t.size--
	t.mods++

	// Walk back up while the subtree height keeps shrinking.
	for i := len(path) - 1; i >= 0; i-- {
		p := path[i].node
		hp := t.hdr(p)
		hp.Balance -= path[i].dir
		switch hp.Balance {
		case -1, 1:
			return
		case 0:
			continue
		case -2, 2:
			sub, shrunk := t.rebalance(p)
			t.relink(path, i, sub)
			if !shrunk {
				return
			}
		default:
			corrupt("remove", "balance %d out of range", hp.Balance)
		}
	}
}

// swapSuccessor exchanges n, which has two children, with its in-order
// successor so that n ends up with at most one child. The returned path
// leads from the root to n's new parent.
func (t *Tree[T]) swapSuccessor(n *T, path []step[T]) []step[T] {
	hn := t.hdr(n)
	at := len(path)
	path = append(path, step[T]{n, 1})

	s := hn.Right
	hs := t.hdr(s)
	for hs.Left != nil {
		path = append(path, step[T]{s, -1})
		s = hs.Left
		hs = t.hdr(s)
	}

	sRight, sBalance := hs.Right, hs.Balance
	hs.Left, hs.Balance = hn.Left, hn.Balance
	if hn.Right == s {
		hs.Right = n
	} else {
		hs.Right = hn.Right
		t.hdr(path[len(path)-1].node).Left = n
	}
	hn.Left, hn.Right, hn.Balance = nil, sRight, sBalance

	t.relink(path, at, s)
	path[at].node = s
	return path
}

// relink points the slot that path[:i] leads to at sub.
func (t *Tree[T]) relink(path []step[T], i int, sub *T) {
	if i == 0 {
		t.root = sub
		return
	}
	parent := path[i-1]
	if parent.dir < 0 {
		t.hdr(parent.node).Left = sub
	} else {
		t.hdr(parent.node).Right = sub
	}
}

// rebalance restores |balance| <= 1 at p and returns the new subtree root
// and whether the subtree got shorter than before the rotation.
func (t *Tree[T]) rebalance(p *T) (*T, bool) {
	hp := t.hdr(p)
	if hp.Balance > 0 {
		if t.hdr(hp.Right).Balance < 0 {
			return t.rotateRightLeft(p), true
		}
		return t.rotateLeft(p)
	}
	if t.hdr(hp.Left).Balance > 0 {
		return t.rotateLeftRight(p), true
	}
	return t.rotateRight(p)
}

// rotateLeft handles the right-right case.
func (t *Tree[T]) rotateLeft(p *T) (*T, bool) {
	hp := t.hdr(p)
	r := hp.Right
	hr := t.hdr(r)

	hp.Right = hr.Left
	hr.Left = p

	if hr.Balance == 0 {
		// Only reachable from remove: height is unchanged.
		hp.Balance, hr.Balance = 1, -1
		return r, false
	}
	hp.Balance, hr.Balance = 0, 0
	return r, true
}

// rotateRight handles the left-left case.
func (t *Tree[T]) rotateRight(p *T) (*T, bool) {
	hp := t.hdr(p)
	l := hp.Left
	hl := t.hdr(l)

	hp.Left = hl.Right
	hl.Right = p

	if hl.Balance == 0 {
		hp.Balance, hl.Balance = -1, 1
		return l, false
	}
	hp.Balance, hl.Balance = 0, 0
	return l, true
}

// rotateRightLeft handles the right-left case.
func (t *Tree[T]) rotateRightLeft(p *T) *T {
	hp := t.hdr(p)
	r := hp.Right
	hr := t.hdr(r)
	rl := hr.Left
	hrl := t.hdr(rl)

	hr.Left = hrl.Right
	hrl.Right = r
	hp.Right = hrl.Left
	hrl.Left = p

	switch {
	case hrl.Balance > 0:
		hp.Balance, hr.Balance = -1, 0
	case hrl.Balance < 0:
		hp.Balance, hr.Balance = 0, 1
	default:
		hp.Balance, hr.Balance = 0, 0
	}
	hrl.Balance = 0
	return rl
}

// rotateLeftRight handles the left-right case.
func (t *Tree[T]) rotateLeftRight(p *T) *T {
	hp := t.hdr(p)
	l := hp.Left
	hl := t.hdr(l)
	lr := hl.Right
	hlr := t.hdr(lr)

	hl.Right = hlr.Left
	hlr.Left = l
	hp.Left = hlr.Right
	hlr.Right = p

	switch {
	case hlr.Balance < 0:
		hp.Balance, hl.Balance = 1, 0
	case hlr.Balance > 0:
		hp.Balance, hl.Balance = 0, -1
	default:
		hp.Balance, hl.Balance = 0, 0
	}
	hlr.Balance = 0
	return lr
}

// Find returns the record whose key equals probe's key.
func (t *Tree[T]) Find(probe *T) *T {
	return t.FindFunc(func(n *T) int { return t.cmp(probe, n) })
}

// FindFunc descends using f, which compares the sought key against a node.
func (t *Tree[T]) FindFunc(f func(n *T) int) *T {
	cur := t.root
	for cur != nil {
		c := f(cur)
		if c == 0 {
			return cur
		}
		if c < 0 {
			cur = t.hdr(cur).Left
		} else {
			cur = t.hdr(cur).Right
		}
	}
	return nil
}

// Neighbor returns the record equal to probe if linked. Otherwise match is
// nil and before/after are the closest records ordered before and after
// probe, either of which may be nil.
func (t *Tree[T]) Neighbor(probe *T) (match, before, after *T) {
	return t.NeighborFunc(func(n *T) int { return t.cmp(probe, n) })
}

// NeighborFunc is Neighbor driven by a probe function.
func (t *Tree[T]) NeighborFunc(f func(n *T) int) (match, before, after *T) {
	cur := t.root
	for cur != nil {
		c := f(cur)
		switch {
		case c == 0:
			return cur, nil, nil
		case c < 0:
			after = cur
			cur = t.hdr(cur).Left
		default:
			before = cur
			cur = t.hdr(cur).Right
		}
	}
	return nil, before, after
}

// Min returns the first record in order.
func (t *Tree[T]) Min() *T {
	cur := t.root
	if cur == nil {
		return nil
	}
	for l := t.hdr(cur).Left; l != nil; l = t.hdr(cur).Left {
		cur = l
	}
	return cur
}

// Max returns the last record in order.
func (t *Tree[T]) Max() *T {
	cur := t.root
	if cur == nil {
		return nil
	}
	for r := t.hdr(cur).Right; r != nil; r = t.hdr(cur).Right {
		cur = r
	}
	return cur
}
