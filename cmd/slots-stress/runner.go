package main

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/kamstrup/intmap"
	"github.com/plus3/numset/slots"
	"github.com/plus3/numset/slots/gapless"
)

type Counters struct {
	Puts         int64
	Removes      int64
	Adds         int64
	Ensures      int64
	RemoveValues int64
	Iterations   int64
	Detections   int64
	Flushes      int64
	Compactions  int64
	Clears       int64
	Mismatches   int64
}

// runner drives a store with random operations and mirrors every change in
// a shadow model keyed by id.
type runner struct {
	store    *slots.Store[int]
	model    *intmap.Map[int, int]
	rng      *rand.Rand
	maxID    int
	logger   *slog.Logger
	commands *slots.Commands[int]
	counters Counters
}

func newRunner(store *slots.Store[int], c Config, logger *slog.Logger) *runner {
	return &runner{
		store:    store,
		model:    intmap.New[int, int](c.MaxID),
		rng:      rand.New(rand.NewSource(c.Seed)),
		maxID:    c.MaxID,
		logger:   logger,
		commands: slots.NewCommands[int](),
	}
}

func (r *runner) value() int {
	return r.rng.Intn(r.maxID * 4)
}

func (r *runner) prefill(n int) {
	for i := 0; i < n; i++ {
		r.add()
	}
}

// round performs one randomly chosen operation and checks the store
// against the model.
func (r *runner) round() {
	switch op := r.rng.Intn(100); {
	case op < 30:
		r.put()
	case op < 45:
		r.remove()
	case op < 60:
		r.add()
	case op < 70:
		r.ensure()
	case op < 78:
		r.removeValue()
	case op < 88:
		r.iterate()
	case op < 96:
		r.detect()
	case op < 99:
		r.sweep()
	default:
		if r.rng.Intn(50) == 0 {
			r.store.Clear()
			r.model.Clear()
			r.counters.Clears++
		}
	}

	if r.store.Len() != r.model.Len() {
		r.mismatch("length", "store", r.store.Len(), "model", r.model.Len())
	}
}

func (r *runner) mismatch(what string, args ...any) {
	r.counters.Mismatches++
	r.logger.Debug("mismatch: "+what, args...)
}

// modelLastID and modelIDOf answer LastID and IDOf from the model.
func (r *runner) modelLastID() int {
	last := -1
	for id := range r.model.Keys() {
		last = max(last, id)
	}
	return last
}

func (r *runner) modelIDOf(v int) int {
	found := -1
	for id, mv := range r.model.All() {
		if mv == v && (found == -1 || id < found) {
			found = id
		}
	}
	return found
}

func (r *runner) put() {
	id, v := r.rng.Intn(r.maxID), r.value()
	want, wantOk := r.model.Get(id)

	prev, had, err := r.store.Put(id, v)
	r.counters.Puts++
	if err != nil {
		r.mismatch("put failed", "id", id, "err", err)
		return
	}
	if had != wantOk || prev != want {
		r.mismatch("put previous value", "id", id, "got", prev, "want", want)
	}
	r.model.Put(id, v)
}

func (r *runner) remove() {
	id := r.rng.Intn(r.maxID)
	want, wantOk := r.model.Get(id)

	got, ok := r.store.Remove(id)
	r.counters.Removes++
	if ok != wantOk || got != want {
		r.mismatch("remove", "id", id, "got", got, "want", want)
	}
	r.model.Del(id)
}

func (r *runner) add() {
	v := r.value()
	want := r.modelLastID() + 1

	id := r.store.Add(v)
	r.counters.Adds++
	if id != want {
		r.mismatch("add id", "got", id, "want", want)
	}
	r.model.Put(id, v)
}

func (r *runner) ensure() {
	v := r.value()
	want := r.modelIDOf(v)
	existing := want != -1
	if !existing {
		want = r.modelLastID() + 1
	}

	id := r.store.EnsureElement(v)
	r.counters.Ensures++
	if id != want {
		r.mismatch("ensure id", "value", v, "got", id, "want", want)
	}
	if !existing {
		r.model.Put(id, v)
	}
}

func (r *runner) removeValue() {
	v := r.value()
	want := r.modelIDOf(v)

	ok := r.store.RemoveValue(v)
	r.counters.RemoveValues++
	if ok != (want != -1) {
		r.mismatch("remove value", "value", v, "got", ok)
	}
	if want != -1 {
		r.model.Del(want)
	}
}

// iterate walks the whole store and checks order and content.
func (r *runner) iterate() {
	r.counters.Iterations++

	last, n := -1, 0
	for id, v := range r.store.All() {
		if id <= last {
			r.mismatch("iteration order", "id", id, "previous", last)
		}
		if mv, ok := r.model.Get(id); !ok || mv != v {
			r.mismatch("iteration value", "id", id, "got", v, "want", mv)
		}
		last = id
		n++
	}
	if n != r.model.Len() {
		r.mismatch("iteration count", "got", n, "want", r.model.Len())
	}
}

// detect starts a walk, mutates the store underneath it and expects the
// next step to fail.
func (r *runner) detect() {
	it := r.store.Iter()
	if !it.Next() {
		return
	}

	r.put()

	if it.Next() {
		r.mismatch("mutation not detected", "id", it.ID())
		return
	}
	if !errors.Is(it.Err(), slots.ErrConcurrentMutation) {
		r.mismatch("unexpected iterator error", "err", it.Err())
		return
	}
	r.counters.Detections++
}

// sweep queues the removal of every odd value during a walk and applies
// the queue afterwards.
func (r *runner) sweep() {
	for id, v := range r.store.All() {
		if v%2 == 1 {
			r.commands.Remove(id)
			r.model.Del(id)
		}
	}
	if err := r.commands.Flush(r.store); err != nil {
		r.mismatch("flush", "err", err)
	}
	r.counters.Flushes++
}

// compact replaces the store with its gapless copy and renumbers the model.
func (r *runner) compact() {
	dst, table, err := gapless.Compact(r.store)
	if err != nil {
		r.mismatch("compact", "err", err)
		return
	}
	if dst.Len() != r.store.Len() {
		r.mismatch("compact length", "got", dst.Len(), "want", r.store.Len())
	}

	model := intmap.New[int, int](r.maxID)
	for oldId, v := range r.model.All() {
		newId, ok := table.Get(oldId)
		if !ok {
			r.mismatch("compact table", "id", oldId)
			continue
		}
		model.Put(newId, v)
	}

	r.logger.Debug("compacted", "elements", dst.Len(), "moved", gapless.Moved(table))
	r.store, r.model = dst, model
	r.counters.Compactions++
}
