package mindex_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mindex"
)

func TestInsertDeleteReinsert(t *testing.T) {
	_, p := newPool(t)
	insertKeys(t, p, 5, 3, 8, 1, 4, 7, 9, 2, 6)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, keysOf(p, 0))
	require.NoError(t, p.Check())

	five, err := p.Delete(0, keyed(5))
	require.NoError(t, err)
	require.NotNil(t, five)
	assert.Equal(t, 5, five.Key)
	assert.Equal(t, []int{1, 2, 3, 4, 6, 7, 8, 9}, keysOf(p, 0))
	assert.False(t, p.Contains(five))

	n, err := p.Insert(five)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, keysOf(p, 0))
	require.NoError(t, p.Check())
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	_, p := newPool(t)
	insertKeys(t, p, 1, 2, 3)

	rec, err := p.Delete(0, keyed(42))
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 3, p.Len())
}

func TestInsertDuplicateKey(t *testing.T) {
	reg, p := newPool(t)
	insertKeys(t, p, 1)

	n, err := p.Insert(&item{Key: 1})
	assert.Equal(t, 0, n)
	require.ErrorIs(t, err, mindex.ErrDuplicateKey)

	var ie *mindex.InsertError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 0, ie.Index)
	assert.Equal(t, err, reg.LastError())
}

func TestInsertAlreadyLinked(t *testing.T) {
	_, p := newPool(t)
	recs := insertKeys(t, p, 1)

	_, err := p.Insert(recs[0])
	require.ErrorIs(t, err, mindex.ErrAlreadyLinked)
	assert.Equal(t, 1, p.Len())
	require.NoError(t, p.Check())
}

func TestInsertRollback(t *testing.T) {
	_, p := newPool(t)
	_, err := p.RegisterIndex(1, mindex.Tree(byName()))
	require.NoError(t, err)
	_, err = p.RegisterIndex(2, mindex.FIFO[item]())
	require.NoError(t, err)

	a := &item{Key: 1, Name: "x"}
	n, err := p.Insert(a)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Index 0 accepts b, index 1 rejects the duplicate name.
	b := &item{Key: 2, Name: "x"}
	n, err = p.Insert(b)
	assert.Equal(t, 1, n)
	require.ErrorIs(t, err, mindex.ErrDuplicateKey)

	var ie *mindex.InsertError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 1, ie.Index)
	assert.Equal(t, 1, ie.Accepted)
	assert.True(t, ie.RolledBack)

	assert.False(t, p.Contains(b))
	assert.Equal(t, 0, b.LinkCount())
	for i := range 3 {
		assert.Equal(t, 1, p.IndexLen(i), "index %d", i)
	}
	assert.Equal(t, 1, p.Len())
	require.NoError(t, p.Check())

	got, err := p.Get(0, keyed(2))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInsertAcceptPolicy(t *testing.T) {
	_, p := newPool(t, mindex.WithShortfallPolicy[item](mindex.Accept))
	_, err := p.RegisterIndex(1, mindex.Tree(byName()))
	require.NoError(t, err)
	assert.Equal(t, mindex.Accept, p.Policy())

	_, err = p.Insert(&item{Key: 1, Name: "x"})
	require.NoError(t, err)

	b := &item{Key: 2, Name: "x"}
	n, err := p.Insert(b)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Less(t, n, p.IndexCount())

	assert.True(t, b.Linked(0))
	assert.False(t, b.Linked(1))
	assert.Equal(t, 2, p.IndexLen(0))
	assert.Equal(t, 1, p.IndexLen(1))
	assert.Equal(t, 2, p.Len())
	require.NoError(t, p.Check())

	// Nothing accepted still fails.
	n, err = p.Insert(&item{Key: 1, Name: "x"})
	assert.Equal(t, 0, n)
	require.ErrorIs(t, err, mindex.ErrDuplicateKey)
}

func TestCrossIndexConsistency(t *testing.T) {
	_, p := newPool(t)
	_, err := p.RegisterIndex(1, mindex.Tree(byName()))
	require.NoError(t, err)
	_, err = p.RegisterIndex(2, mindex.LIFO[item]())
	require.NoError(t, err)

	for i := range 50 {
		_, err := p.Insert(&item{Key: i, Name: fmt.Sprintf("n%03d", i)})
		require.NoError(t, err)
	}
	for i := 0; i < 50; i += 3 {
		rec, err := p.Delete(0, keyed(i))
		require.NoError(t, err)
		require.NotNil(t, rec)
	}

	for i := range 3 {
		assert.Equal(t, p.Len(), p.IndexLen(i))
	}
	for it := range p.All(0) {
		got, err := p.GetConst(1, it.Name)
		require.NoError(t, err)
		assert.Same(t, it, got)
		assert.Equal(t, 3, it.LinkCount())
	}
	require.NoError(t, p.Check())
}

func TestInsertOneDeleteOne(t *testing.T) {
	_, p := newPool(t)
	_, err := p.RegisterIndex(1, mindex.FIFO[item]())
	require.NoError(t, err)

	a := &item{Key: 1}
	require.NoError(t, p.InsertOne(1, a))
	assert.True(t, a.Linked(1))
	assert.False(t, a.Linked(0))
	assert.Equal(t, 1, p.Len())
	assert.NotZero(t, a.ID())

	require.ErrorIs(t, p.InsertOne(1, a), mindex.ErrAlreadyLinked)
	require.NoError(t, p.InsertOne(0, a))
	assert.Equal(t, 1, p.Len())

	require.NoError(t, p.DeleteOne(1, a))
	require.ErrorIs(t, p.DeleteOne(1, a), mindex.ErrNotLinked)
	assert.Equal(t, 1, p.Len())

	require.NoError(t, p.Remove(a))
	assert.Equal(t, 0, p.Len())
	require.ErrorIs(t, p.Remove(a), mindex.ErrNotLinked)
}

func TestDeleteConst(t *testing.T) {
	_, p := newPool(t)
	insertKeys(t, p, 10, 20, 30)

	rec, err := p.DeleteConst(0, int64(20))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 20, rec.Key)

	rec, err = p.DeleteConst(0, uint8(20))
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = p.DeleteConst(0, "20")
	require.Error(t, err)
	assert.Equal(t, []int{10, 30}, keysOf(p, 0))
}

func TestIndexErrors(t *testing.T) {
	reg, p := newPool(t)

	_, err := p.Get(-1, keyed(1))
	require.ErrorIs(t, err, mindex.ErrInvalidIndex)
	_, err = p.Get(mindex.MaxIndexes, keyed(1))
	require.ErrorIs(t, err, mindex.ErrInvalidIndex)
	_, err = p.Get(3, keyed(1))
	require.ErrorIs(t, err, mindex.ErrIndexNotRegistered)
	require.ErrorIs(t, reg.LastError(), mindex.ErrIndexNotRegistered)

	var ie *mindex.IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "items", ie.Pool)
	assert.Equal(t, 3, ie.Index)

	reg.ClearError()
	assert.NoError(t, reg.LastError())

	_, err = p.Insert(nil)
	require.ErrorIs(t, err, mindex.ErrNilRecord)
}

func TestRegisterIndex(t *testing.T) {
	tests := []struct {
		name string
		n    int
		spec mindex.IndexSpec[item]
		err  error
	}{
		{"zero", 0, mindex.Tree(byName()), mindex.ErrInvalidIndex},
		{"negative", -1, mindex.Tree(byName()), mindex.ErrInvalidIndex},
		{"too large", mindex.MaxIndexes, mindex.Tree(byName()), mindex.ErrInvalidIndex},
		{"missing key", 1, mindex.IndexSpec[item]{}, mindex.ErrMissingKey},
		{"ok tree", 1, mindex.Tree(byName()), nil},
		{"ok fifo", 7, mindex.FIFO[item](), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, p := newPool(t)
			n, err := p.RegisterIndex(tt.n, tt.spec)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Equal(t, -1, n)
				assert.Equal(t, 1, p.IndexCount())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.n, n)
			assert.Equal(t, 2, p.IndexCount())
		})
	}

	t.Run("in use", func(t *testing.T) {
		_, p := newPool(t)
		_, err := p.RegisterIndex(1, mindex.Tree(byName()))
		require.NoError(t, err)
		_, err = p.RegisterIndex(1, mindex.FIFO[item]())
		require.ErrorIs(t, err, mindex.ErrIndexInUse)
	})
}

func TestRegisterIndexBackfill(t *testing.T) {
	_, p := newPool(t)
	for i := range 20 {
		_, err := p.Insert(&item{Key: i, Name: fmt.Sprintf("n%02d", 19-i)})
		require.NoError(t, err)
	}

	_, err := p.RegisterIndex(1, mindex.Tree(byName()))
	require.NoError(t, err)
	assert.Equal(t, 20, p.IndexLen(1))

	first, err := p.Min(1)
	require.NoError(t, err)
	assert.Equal(t, 19, first.Key)
	require.NoError(t, p.Check())
}

func TestRegisterIndexBackfillDuplicate(t *testing.T) {
	_, p := newPool(t)
	for i := range 10 {
		_, err := p.Insert(&item{Key: i, Name: "same"})
		require.NoError(t, err)
	}

	_, err := p.RegisterIndex(1, mindex.Tree(byName()))
	require.ErrorIs(t, err, mindex.ErrDuplicateKey)
	assert.Equal(t, 1, p.IndexCount())
	for it := range p.All(0) {
		assert.Equal(t, 1, it.LinkCount())
		assert.False(t, it.Linked(1))
	}
	require.NoError(t, p.Check())

	// The slot is still free.
	_, err = p.RegisterIndex(1, mindex.FIFO[item]())
	require.NoError(t, err)
	assert.Equal(t, 10, p.IndexLen(1))
}

func TestMove(t *testing.T) {
	reg := mindex.NewRegistry()
	src, err := mindex.RegisterPool[item](reg, "src", mindex.Tree(byKey()))
	require.NoError(t, err)
	dst, err := mindex.RegisterPool[item](reg, "dst", mindex.Tree(byKey()))
	require.NoError(t, err)

	recs := insertKeys(t, src, 1, 2, 3)

	moved, err := mindex.Move(dst, src, 0, keyed(2))
	require.NoError(t, err)
	assert.Same(t, recs[1], moved)
	assert.Equal(t, []int{1, 3}, keysOf(src, 0))
	assert.Equal(t, []int{2}, keysOf(dst, 0))

	moved, err = mindex.Move(dst, src, 0, keyed(42))
	require.NoError(t, err)
	assert.Nil(t, moved)

	// A rejected move puts the record back.
	insertKeys(t, dst, 3)
	moved, err = mindex.Move(dst, src, 0, keyed(3))
	require.ErrorIs(t, err, mindex.ErrDuplicateKey)
	assert.Nil(t, moved)
	assert.Equal(t, []int{1, 3}, keysOf(src, 0))
	assert.True(t, src.Contains(recs[2]))
}

func TestIdentityUniqueAcrossRegistries(t *testing.T) {
	_, p1 := newPool(t)
	_, p2 := newPool(t)

	a := &item{Key: 1}
	_, err := p1.Insert(a)
	require.NoError(t, err)
	_, err = p1.Delete(0, keyed(1))
	require.NoError(t, err)

	b := &item{Key: 2}
	_, err = p2.Insert(b)
	require.NoError(t, err)
	_, err = p2.Insert(a)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
	require.NoError(t, p2.Check())

	calls := map[*item]int{}
	assert.Equal(t, 2, p2.Flush(func(it *item) { calls[it]++ }))
	assert.Equal(t, map[*item]int{a: 1, b: 1}, calls)
	assert.Equal(t, 0, a.LinkCount())
	assert.Equal(t, 0, b.LinkCount())
}

func TestFlushDestroysEachRecordOnce(t *testing.T) {
	_, p := newPool(t)
	_, err := p.RegisterIndex(1, mindex.FIFO[item]())
	require.NoError(t, err)
	_, err = p.RegisterIndex(2, mindex.Tree(byName()).Desc())
	require.NoError(t, err)

	recs := make([]*item, 50)
	for i := range recs {
		recs[i] = &item{Key: i, Name: fmt.Sprint(i)}
		_, err := p.Insert(recs[i])
		require.NoError(t, err)
	}
	// One record only in the FIFO.
	solo := &item{Key: 1000}
	require.NoError(t, p.InsertOne(1, solo))

	calls := map[*item]int{}
	n := p.Flush(func(it *item) { calls[it]++ })

	assert.Equal(t, 51, n)
	assert.Len(t, calls, 51)
	for it, c := range calls {
		assert.Equal(t, 1, c, "key %d", it.Key)
		assert.Equal(t, 0, it.LinkCount())
	}
	assert.Equal(t, 0, p.Len())
	for i := range 3 {
		assert.Equal(t, 0, p.IndexLen(i))
	}

	// Records can join again after a flush.
	_, err = p.Insert(recs[0])
	require.NoError(t, err)
	require.NoError(t, p.Check())
}

func TestFlushDefaultCleanupReleasesStringRef(t *testing.T) {
	reg := mindex.NewRegistry()
	p, err := mindex.RegisterPool[item](reg, "refs",
		mindex.Tree(mindex.StringRefKey(func(i *item) **string { return &i.Ref })))
	require.NoError(t, err)

	recs := make([]*item, 3)
	for i := range recs {
		s := fmt.Sprint("ref-", i)
		recs[i] = &item{Ref: &s}
		_, err := p.Insert(recs[i])
		require.NoError(t, err)
	}

	got, err := p.GetConst(0, "ref-1")
	require.NoError(t, err)
	assert.Same(t, recs[1], got)

	assert.Equal(t, 3, p.Flush(nil))
	for _, r := range recs {
		assert.Nil(t, r.Ref)
	}
}

func TestPoolDestructorOption(t *testing.T) {
	var destroyed []int
	_, p := newPool(t, mindex.WithDestructor(func(it *item) { destroyed = append(destroyed, it.Key) }))
	insertKeys(t, p, 3, 1, 2)

	p.Flush(nil)
	assert.ElementsMatch(t, []int{1, 2, 3}, destroyed)
}

func TestDoSerializesWriters(t *testing.T) {
	_, p := newPool(t)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				err := p.Do(func(p *mindex.Pool[item]) error {
					_, err := p.Insert(&item{Key: w*1000 + i})
					return err
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	p.Lock()
	defer p.Unlock()
	assert.Equal(t, 800, p.Len())
	assert.NoError(t, p.Check())
}

func TestDoReturnsError(t *testing.T) {
	_, p := newPool(t)
	sentinel := errors.New("boom")
	err := p.Do(func(*mindex.Pool[item]) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}
