// Package gapless renumbers the elements of a slots.Store so that their ids
// are contiguous again after removals.
//
// The store itself never renumbers; collaborators that want dense ids build
// a compacted copy and rewrite the ids they hold through the returned table.
package gapless

import (
	"github.com/kamstrup/intmap"
	"github.com/plus3/numset/slots"
)

// Table maps ids of the source store to ids of the compacted store.
type Table = intmap.Map[int, int]

// Compact returns a copy of src whose elements keep their relative order but
// occupy ids 0..n-1, together with the old->new id table. src is left
// untouched. If src is modified during the walk, Compact returns an error
// wrapping slots.ErrConcurrentMutation.
func Compact[T comparable](src *slots.Store[T]) (*slots.Store[T], *Table, error) {
	dst := slots.New[T]()
	table := intmap.New[int, int](src.Len())

	it := src.Iter()
	for it.Next() {
		newId := dst.Add(it.Value())
		table.Put(it.ID(), newId)
	}
	if err := it.Err(); err != nil {
		return nil, nil, err
	}

	return dst, table, nil
}

// Remap rewrites ids through table in place and returns the ids that had a
// mapping, in their original order. Ids without a mapping are dropped.
func Remap(ids []int, table *Table) []int {
	out := ids[:0]
	for _, id := range ids {
		if newId, ok := table.Get(id); ok {
			out = append(out, newId)
		}
	}
	return out
}

// Moved reports how many ids changed value in the table.
func Moved(table *Table) int {
	moved := 0
	table.ForEach(func(oldId, newId int) bool {
		if oldId != newId {
			moved++
		}
		return true
	})
	return moved
}
