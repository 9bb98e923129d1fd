// Package mindex provides an embeddable in-memory multi-index record store.
//
// Callers register pools of records and give each pool up to MaxIndexes
// indexes: AVL trees ordered by a key, or FIFO and LIFO lists. A record
// joins every index of its pool at once without any per-index node
// allocation, because the links live inside the record itself.
//
// # Records
//
// A record type embeds Hooks:
//
//	type Order struct {
//	    mindex.Hooks[Order]
//	    ID       string
//	    Priority int
//	}
//
// # Quick Start
//
//	reg := mindex.NewRegistry()
//
//	orders, err := mindex.RegisterPool[Order](reg, "orders",
//	    mindex.Tree(mindex.StringKey(func(o *Order) string { return o.ID })))
//	if err != nil {
//	    panic(err)
//	}
//	_, err = orders.RegisterIndex(1, mindex.Tree(mindex.CustomKey(byPriority)).Desc())
//
//	n, err := orders.Insert(&Order{ID: "a-1", Priority: 3})
//	if n < orders.IndexCount() {
//	    // the record was rejected, see err
//	}
//
//	o, _ := orders.GetConst(0, "a-1")
//
// # Iteration
//
// Iterate walks one index and lets the visitor delete the current record.
// Deleted records leave every index of the pool and are destroyed exactly
// once:
//
//	orders.Iterate(1, func(o *Order) mindex.Action {
//	    if o.Priority < 0 {
//	        return mindex.DeleteAndContinue
//	    }
//	    return mindex.Continue
//	}, nil)
//
// All, Range and Descend provide read-only walks.
//
// # Concurrency
//
// Pools do no implicit locking. Use Lock/Unlock or Do to make a sequence of
// calls atomic with respect to other goroutines. The registry catalogue and
// the last-error slot are guarded by their own locks.
//
// # Errors
//
// Absence is not an error: lookups and deletes return a nil record. Errors
// report misuse (unknown index, duplicate key, record already linked) and
// are also stored in the registry's last-error slot. Structural corruption
// panics with *CorruptionError.
package mindex
