package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartListIsACopy(t *testing.T) {
	c := &Cart{Entries: []CartEntry{{ProductID: 1, Quantity: 2}, {ProductID: 5, Quantity: 1}}}

	list := c.List()
	list[0].Quantity = 99

	assert.Equal(t, 2, c.Entries[0].Quantity)
	idx, ok := c.Find(5)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Find(5)
	assert.False(t, ok)
}
