package drawbatch

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	s := NewSlice[*int](8)
	one, two := 1, 2

	s.Extend(slices.Values([]*int{&one, &two}))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []*int{&one, &two}, slices.Collect(s.All()))

	backing := s.Items()[:2]
	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 8, cap(s.Items()))
	// Reset drops references held by the old items.
	assert.Equal(t, []*int{nil, nil}, backing)
}

func TestRecord(t *testing.T) {
	r := NewRecord("mesh", NewSlice[int](0), slices.Values([]int{1, 2}))
	r.Extend(slices.Values([]int{3}))

	assert.Equal(t, "mesh", r.Key())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{1, 2, 3}, r.Collection().Items())
}
