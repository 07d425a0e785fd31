package slots

// Commands buffers store mutations so they can be queued while a store is
// being iterated and applied afterwards. A Commands value is owned by a
// single goroutine.
type Commands[T comparable] struct {
	queue []command[T]
}

type commandKind uint8

const (
	cmdPut commandKind = iota
	cmdRemove
	cmdRemoveValue
	cmdAdd
	cmdClear
	cmdDefer
)

type command[T comparable] struct {
	kind  commandKind
	id    int
	value T
	fn    func()
}

// NewCommands creates an empty command buffer.
func NewCommands[T comparable]() *Commands[T] {
	return &Commands[T]{}
}

// Put queues a Put of v at id.
func (c *Commands[T]) Put(id int, v T) {
	c.queue = append(c.queue, command[T]{kind: cmdPut, id: id, value: v})
}

// Remove queues a removal by id.
func (c *Commands[T]) Remove(id int) {
	c.queue = append(c.queue, command[T]{kind: cmdRemove, id: id})
}

// RemoveValue queues a removal by value.
func (c *Commands[T]) RemoveValue(v T) {
	c.queue = append(c.queue, command[T]{kind: cmdRemoveValue, value: v})
}

// Add queues an Add of v.
func (c *Commands[T]) Add(v T) {
	c.queue = append(c.queue, command[T]{kind: cmdAdd, value: v})
}

// Clear queues a Clear.
func (c *Commands[T]) Clear() {
	c.queue = append(c.queue, command[T]{kind: cmdClear})
}

// Defer queues a function to run at its position in the flush.
func (c *Commands[T]) Defer(fn func()) {
	c.queue = append(c.queue, command[T]{kind: cmdDefer, fn: fn})
}

// Len returns the number of queued commands.
func (c *Commands[T]) Len() int {
	return len(c.queue)
}

// Flush applies the queued commands to store in the order they were queued
// and resets the buffer. It stops at the first command that fails and
// returns its error; the remaining commands are discarded.
func (c *Commands[T]) Flush(store *Store[T]) error {
	defer c.reset()

	for _, cmd := range c.queue {
		switch cmd.kind {
		case cmdPut:
			if _, _, err := store.Put(cmd.id, cmd.value); err != nil {
				return err
			}
		case cmdRemove:
			store.Remove(cmd.id)
		case cmdRemoveValue:
			store.RemoveValue(cmd.value)
		case cmdAdd:
			store.Add(cmd.value)
		case cmdClear:
			store.Clear()
		case cmdDefer:
			cmd.fn()
		}
	}
	return nil
}

func (c *Commands[T]) reset() {
	clear(c.queue)
	c.queue = c.queue[:0]
}
