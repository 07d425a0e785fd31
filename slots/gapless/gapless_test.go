package gapless_test

import (
	"testing"

	"github.com/plus3/numset/slots"
	"github.com/plus3/numset/slots/gapless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompact(t *testing.T) {
	src := slots.New[string]()
	src.Put(3, "a")
	src.Put(7, "b")
	src.Put(8, "c")
	src.Put(40, "d")

	dst, table, err := gapless.Compact(src)
	require.NoError(t, err)

	var values []string
	for id, v := range dst.All() {
		values = append(values, v)
		assert.Less(t, id, 4)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, values)
	assert.Equal(t, 3, dst.LastID())
	assert.Equal(t, 4, table.Len())

	for oldId, newId := range map[int]int{3: 0, 7: 1, 8: 2, 40: 3} {
		got, ok := table.Get(oldId)
		assert.True(t, ok, "old id %d", oldId)
		assert.Equal(t, newId, got)
	}
	assert.Equal(t, 4, gapless.Moved(table))

	// The source keeps its ids.
	assert.Equal(t, 40, src.LastID())
	assert.Equal(t, 4, src.Len())
}

func TestCompactDenseStoreIsIdentity(t *testing.T) {
	src := slots.New[int]()
	for i := 0; i < 5; i++ {
		src.Add(i * 2)
	}

	dst, table, err := gapless.Compact(src)
	require.NoError(t, err)
	assert.True(t, dst.Equal(src))
	assert.Equal(t, 0, gapless.Moved(table))
}

func TestCompactEmpty(t *testing.T) {
	dst, table, err := gapless.Compact(slots.New[int]())
	require.NoError(t, err)
	assert.True(t, dst.IsEmpty())
	assert.Equal(t, 0, table.Len())
}

func TestRemap(t *testing.T) {
	src := slots.New[string]()
	src.Put(2, "x")
	src.Put(10, "y")
	src.Put(11, "z")
	src.Remove(10)

	_, table, err := gapless.Compact(src)
	require.NoError(t, err)

	ids := gapless.Remap([]int{11, 10, 2, 99}, table)
	assert.Equal(t, []int{1, 0}, ids)
}
