package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolResetsOnPut(t *testing.T) {
	p := NewPool(func() *[]int {
		s := make([]int, 0, 8)
		return &s
	}, func(s *[]int) { *s = (*s)[:0] })

	s := p.Get()
	*s = append(*s, 1, 2, 3)
	p.Put(s)
	assert.Empty(t, *s)

	got := p.Get()
	assert.NotNil(t, got)
	assert.Empty(t, *got)
}
