package ecs

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagedColumnReusesFreedSlots(t *testing.T) {
	col := &pagedColumn[int]{}

	for i := range 3 {
		assert.Equal(t, i, col.Append(i*10))
	}
	col.Delete(1)
	assert.False(t, col.Has(1))
	assert.Equal(t, 2, col.Len())

	assert.Equal(t, 1, col.Append(99))
	assert.Equal(t, 99, *col.Get(1).(*int))
	assert.Equal(t, 3, col.Len())
}

func TestPagedColumnAcceptsValuesAndPointers(t *testing.T) {
	col := &pagedColumn[string]{}
	s := "ptr"

	assert.Equal(t, 0, col.Append("value"))
	assert.Equal(t, 1, col.Append(&s))
	assert.Equal(t, -1, col.Append(42))
	assert.Equal(t, "ptr", *col.Get(1).(*string))
}

func TestPagedColumnIterSkipsHoles(t *testing.T) {
	col := &pagedColumn[int]{}
	for i := range pageSize*2 + 5 {
		col.Append(i)
	}
	col.Delete(0)
	col.Delete(pageSize)
	col.Delete(pageSize*2 + 4)

	indices := slices.Collect(col.Iter())
	require.Len(t, indices, pageSize*2+2)
	assert.Equal(t, 1, indices[0])
	assert.NotContains(t, indices, pageSize)
	assert.Equal(t, pageSize*2+3, indices[len(indices)-1])
}

func TestPagedColumnPointersAreStable(t *testing.T) {
	col := &pagedColumn[int]{}
	col.Append(1)
	first := col.Get(0).(*int)

	for i := range pageSize * 4 {
		col.Append(i)
	}
	assert.Same(t, first, col.Get(0).(*int))
	assert.Nil(t, col.Get(-1))
	assert.Nil(t, col.Get(pageSize*10))
}

func TestEntityEncoding(t *testing.T) {
	e := newEntity(12345, 7)
	assert.Equal(t, uint32(12345), e.Slot())
	assert.Equal(t, uint32(7), e.Generation())
	assert.Equal(t, "12345#7", e.String())
	assert.False(t, e.IsZero())
}
