package mindex_test

import (
	"cmp"
	"fmt"
	"log"

	"github.com/hupe1980/mindex"
)

type order struct {
	mindex.Hooks[order]
	ID       string
	Priority int
}

// Example_insertAndIterate registers a pool with two indexes and walks them.
func Example_insertAndIterate() {
	reg := mindex.NewRegistry()

	orders, err := mindex.RegisterPool[order](reg, "orders",
		mindex.Tree(mindex.StringKey(func(o *order) string { return o.ID })))
	if err != nil {
		log.Fatal(err)
	}

	// Highest priority first, ties broken by id.
	byPriority := mindex.CustomKey(func(a, b *order) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if _, err := orders.RegisterIndex(1, mindex.Tree(byPriority).Desc()); err != nil {
		log.Fatal(err)
	}

	for _, o := range []*order{{ID: "a", Priority: 2}, {ID: "b", Priority: 9}, {ID: "c", Priority: 5}} {
		if n, err := orders.Insert(o); n < orders.IndexCount() {
			log.Fatal(err)
		}
	}

	for o := range orders.All(1) {
		fmt.Println(o.ID, o.Priority)
	}
	// Output:
	// b 9
	// c 5
	// a 2
}

// Example_deleteWhileIterating removes records from inside the walk.
func Example_deleteWhileIterating() {
	reg := mindex.NewRegistry()
	orders, err := mindex.RegisterPool[order](reg, "orders",
		mindex.Tree(mindex.IntKey(func(o *order) int { return o.Priority })))
	if err != nil {
		log.Fatal(err)
	}
	for p := range 6 {
		if _, err := orders.Insert(&order{Priority: p}); err != nil {
			log.Fatal(err)
		}
	}

	_ = orders.Iterate(0, func(o *order) mindex.Action {
		if o.Priority%2 == 1 {
			return mindex.DeleteAndContinue
		}
		return mindex.Continue
	}, func(o *order) { fmt.Println("destroyed", o.Priority) })

	fmt.Println("left:", orders.Len())
	// Output:
	// destroyed 1
	// destroyed 3
	// destroyed 5
	// left: 3
}

// Example_neighbor finds the closest keys around a missing value.
func Example_neighbor() {
	reg := mindex.NewRegistry()
	orders, err := mindex.RegisterPool[order](reg, "orders",
		mindex.Tree(mindex.IntKey(func(o *order) int { return o.Priority })))
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range []int{10, 20, 30} {
		if _, err := orders.Insert(&order{Priority: p}); err != nil {
			log.Fatal(err)
		}
	}

	match, before, after, _ := orders.GetNeighborConst(0, 25)
	fmt.Println(match == nil, before.Priority, after.Priority)
	// Output: true 20 30
}

// Example_queue uses a FIFO index as a work queue.
func Example_queue() {
	reg := mindex.NewRegistry()
	queue, err := mindex.RegisterPool[order](reg, "queue", mindex.FIFO[order]())
	if err != nil {
		log.Fatal(err)
	}
	for _, id := range []string{"first", "second", "third"} {
		if _, err := queue.Insert(&order{ID: id}); err != nil {
			log.Fatal(err)
		}
	}

	for {
		o, _ := queue.Delete(0, nil)
		if o == nil {
			break
		}
		fmt.Println(o.ID)
	}
	// Output:
	// first
	// second
	// third
}
