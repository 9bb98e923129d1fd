package mindex_test

import (
	"cmp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mindex"
)

type item struct {
	mindex.Hooks[item]
	Key  int
	Name string
	Prio int
	Ref  *string
}

func byKey() mindex.Key[item] {
	return mindex.IntKey(func(i *item) int { return i.Key })
}

func byName() mindex.Key[item] {
	return mindex.StringKey(func(i *item) string { return i.Name })
}

// byPrio orders by priority and breaks ties by name.
func byPrio() mindex.Key[item] {
	return mindex.CustomKey(func(a, b *item) int {
		if c := cmp.Compare(a.Prio, b.Prio); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}

func newPool(t *testing.T, opts ...mindex.PoolOption[item]) (*mindex.Registry, *mindex.Pool[item]) {
	t.Helper()
	reg := mindex.NewRegistry()
	p, err := mindex.RegisterPool[item](reg, "items", mindex.Tree(byKey()), opts...)
	require.NoError(t, err)
	return reg, p
}

func insertKeys(t *testing.T, p *mindex.Pool[item], keys ...int) []*item {
	t.Helper()
	out := make([]*item, 0, len(keys))
	for _, k := range keys {
		it := &item{Key: k}
		n, err := p.Insert(it)
		require.NoError(t, err)
		require.Equal(t, p.IndexCount(), n)
		out = append(out, it)
	}
	return out
}

func keysOf(p *mindex.Pool[item], index int) []int {
	var keys []int
	for it := range p.All(index) {
		keys = append(keys, it.Key)
	}
	return keys
}

func keyed(k int) *item { return &item{Key: k} }
