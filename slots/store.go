// Package slots provides Store, a sparse container that gives every element a
// small, stable integer id while still behaving like an ordered list.
//
// Ids are slot indexes. Removing an element frees its slot but never shifts or
// renumbers any other element, so ids handed out to collaborators stay valid
// for as long as the element they name is stored.
package slots

import (
	"fmt"
	"hash/maphash"
	"reflect"
	"slices"
	"sync"
)

const (
	blockSize = 64
)

var hashSeed = maphash.MakeSeed()

// Store maps non-negative integer ids to values of type T.
//
// Slots are allocated in fixed-size blocks up to the highest id written, so
// large ids should be avoided: the whole id space below them is claimed.
// All methods are safe to call from multiple goroutines; each call runs under
// a single per-store lock.
type Store[T comparable] struct {
	mu         sync.Mutex
	blocks     [][blockSize]T
	filled     [][blockSize]bool
	length     int
	count      int
	generation uint64
	nilable    bool
}

// New creates an empty store.
func New[T comparable]() *Store[T] {
	return &Store[T]{
		nilable: isNilable(reflect.TypeFor[T]()),
	}
}

func isNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}

// isEmpty reports whether v is the empty sentinel. Only nil-able element
// types have one; for value kinds every value, the zero value included, is
// storable.
func (s *Store[T]) isEmpty(v T) bool {
	if !s.nilable {
		return false
	}
	return reflect.ValueOf(&v).Elem().IsNil()
}

func locate(id int) (int, int) {
	return id / blockSize, id % blockSize
}

// Get returns the value stored at id. Negative, out of range and empty ids
// report false.
func (s *Store[T]) Get(id int) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *Store[T]) get(id int) (T, bool) {
	var zero T
	if id < 0 || id >= s.length {
		return zero, false
	}
	b, i := locate(id)
	if !s.filled[b][i] {
		return zero, false
	}
	return s.blocks[b][i], true
}

// ContainsID reports whether id currently holds a value.
func (s *Store[T]) ContainsID(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.get(id)
	return ok
}

// Contains reports whether any slot holds a value equal to v.
func (s *Store[T]) Contains(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idOf(v) != -1
}

// IDOf returns the lowest id holding a value equal to v, or -1.
func (s *Store[T]) IDOf(v T) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idOf(v)
}

func (s *Store[T]) idOf(v T) int {
	if s.isEmpty(v) {
		return -1
	}
	for id := 0; id < s.length; id++ {
		b, i := locate(id)
		if s.filled[b][i] && s.blocks[b][i] == v {
			return id
		}
	}
	return -1
}

// Put stores v at id and returns the value previously held there.
//
// Putting the empty sentinel (a nil pointer, interface, map, chan or func)
// removes id instead. Every Put that stores a value counts as a structural
// change, overwrites included, and invalidates live iterators.
func (s *Store[T]) Put(id int, v T) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 0 {
		var zero T
		return zero, false, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	prev, had := s.put(id, v)
	return prev, had, nil
}

func (s *Store[T]) put(id int, v T) (T, bool) {
	if s.isEmpty(v) {
		return s.remove(id)
	}

	s.grow(id)

	b, i := locate(id)
	prev, had := s.blocks[b][i], s.filled[b][i]
	s.blocks[b][i] = v
	s.filled[b][i] = true
	if !had {
		s.count++
	}
	s.generation++
	return prev, had
}

// grow makes id addressable, appending empty blocks as needed.
func (s *Store[T]) grow(id int) {
	if id < s.length {
		return
	}
	blockIdx, _ := locate(id)
	for blockIdx >= len(s.blocks) {
		s.blocks = append(s.blocks, [blockSize]T{})
		s.filled = append(s.filled, [blockSize]bool{})
	}
	s.length = id + 1
}

// Remove clears the slot at id and returns the value it held. The slot stays
// addressable; capacity never shrinks on removal.
func (s *Store[T]) Remove(id int) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(id)
}

func (s *Store[T]) remove(id int) (T, bool) {
	var zero T
	if id < 0 || id >= s.length {
		return zero, false
	}
	b, i := locate(id)
	if !s.filled[b][i] {
		return zero, false
	}

	v := s.blocks[b][i]
	s.blocks[b][i] = zero
	s.filled[b][i] = false
	s.count--
	s.generation++
	return v, true
}

// RemoveValue removes the lowest id holding a value equal to v and reports
// whether anything was removed.
func (s *Store[T]) RemoveValue(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.remove(s.idOf(v))
	return ok
}

// Clear drops every element. Ids are addressable again from zero.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

func (s *Store[T]) clear() {
	s.blocks = nil
	s.filled = nil
	s.length = 0
	s.count = 0
	s.generation++
}

// Add appends v after the current last id and returns its new id. Adding the
// empty sentinel stores nothing and returns -1.
//
// A removed tail id is handed out again by Add, since the last id falls back
// to the highest remaining element.
func (s *Store[T]) Add(v T) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(v)
}

func (s *Store[T]) add(v T) int {
	if s.isEmpty(v) {
		return -1
	}
	id := s.lastID() + 1
	s.put(id, v)
	return id
}

// EnsureElement returns the id of an element equal to v, adding v first if
// no such element exists.
func (s *Store[T]) EnsureElement(v T) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id := s.idOf(v); id != -1 {
		return id
	}
	return s.add(v)
}

// LastID returns the highest occupied id, or -1 for an empty store.
func (s *Store[T]) LastID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastID()
}

func (s *Store[T]) lastID() int {
	id := s.length - 1
	for id >= 0 {
		b, i := locate(id)
		if s.filled[b][i] {
			break
		}
		id--
	}
	return id
}

// Len returns the number of stored elements.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// IsEmpty reports whether the store holds no elements.
func (s *Store[T]) IsEmpty() bool {
	return s.Len() == 0
}

// Cap returns the number of addressable slots: one past the highest id
// written since the store was created or last cleared.
func (s *Store[T]) Cap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length
}

// Clone returns an independent shallow copy. Elements themselves are not
// copied; only the slot table is.
func (s *Store[T]) Clone() *Store[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Store[T]{
		blocks:  slices.Clone(s.blocks),
		filled:  slices.Clone(s.filled),
		length:  s.length,
		count:   s.count,
		nilable: s.nilable,
	}
}

// Equal reports whether other holds the same values under the same ids.
// Trailing empty slots and generations are ignored.
func (s *Store[T]) Equal(other *Store[T]) bool {
	if other == nil {
		return false
	}
	if other == s {
		return true
	}

	snap := other.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count != snap.count {
		return false
	}
	n := max(s.length, snap.length)
	for id := 0; id < n; id++ {
		a, aok := s.get(id)
		b, bok := snap.get(id)
		if aok != bok || (aok && a != b) {
			return false
		}
	}
	return true
}

// Hash returns a hash of the id/value pairs. Stores that are Equal hash
// equal within one process.
func (s *Store[T]) Hash() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var h maphash.Hash
	h.SetSeed(hashSeed)
	for id := 0; id < s.length; id++ {
		b, i := locate(id)
		if !s.filled[b][i] {
			continue
		}
		maphash.WriteComparable(&h, id)
		maphash.WriteComparable(&h, s.blocks[b][i])
	}
	return h.Sum64()
}
