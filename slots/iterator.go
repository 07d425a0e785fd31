package slots

import (
	"fmt"
	"iter"
)

// Iterator walks the occupied slots of a Store in ascending id order.
//
// An iterator is bound to the generation of its store at creation. If the
// store changes structurally before the walk ends, the next call to Next
// returns false and Err reports ErrConcurrentMutation. Iterators are
// read-only and cannot be restarted; call Store.Iter again for a new walk.
type Iterator[T comparable] struct {
	store      *Store[T]
	generation uint64
	next       int
	id         int
	value      T
	err        error
	done       bool
}

// Iter returns a new iterator positioned before the first element.
func (s *Store[T]) Iter() *Iterator[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Iterator[T]{
		store:      s,
		generation: s.generation,
		id:         -1,
	}
}

// Next advances to the next occupied slot. It returns false once the walk is
// exhausted or the store was modified since the iterator was created.
func (it *Iterator[T]) Next() bool {
	if it.done {
		return false
	}

	s := it.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != it.generation {
		it.fail(fmt.Errorf("%w: store generation %d, iterator generation %d",
			ErrConcurrentMutation, s.generation, it.generation))
		return false
	}

	for id := it.next; id < s.length; id++ {
		b, i := locate(id)
		if s.filled[b][i] {
			it.id = id
			it.value = s.blocks[b][i]
			it.next = id + 1
			return true
		}
	}

	it.next = s.length
	it.done = true
	var zero T
	it.id, it.value = -1, zero
	return false
}

func (it *Iterator[T]) fail(err error) {
	var zero T
	it.err = err
	it.done = true
	it.id, it.value = -1, zero
}

// Value returns the element at the current position.
func (it *Iterator[T]) Value() T {
	return it.value
}

// ID returns the id of the current element, or -1 when the iterator is not
// positioned on one.
func (it *Iterator[T]) ID() int {
	return it.id
}

// Err returns the error that ended the walk, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// All returns a sequence of id/value pairs in ascending id order.
// Modifying the store from within the loop body panics with an error
// wrapping ErrConcurrentMutation on the following step; queue the changes
// in a Commands buffer instead.
func (s *Store[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		it := s.Iter()
		for it.Next() {
			if !yield(it.ID(), it.Value()) {
				return
			}
		}
		if err := it.Err(); err != nil {
			panic(err)
		}
	}
}

// Values returns a sequence of the stored values in ascending id order,
// with the same mutation rules as All.
func (s *Store[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// IDs returns a sequence of the occupied ids in ascending order, with the
// same mutation rules as All.
func (s *Store[T]) IDs() iter.Seq[int] {
	return func(yield func(int) bool) {
		for id := range s.All() {
			if !yield(id) {
				return
			}
		}
	}
}
