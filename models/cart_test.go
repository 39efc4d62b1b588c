package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCartTotalValue(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{Quantity: 2, Price: 9.99},
		{Quantity: 1, Price: 5.00},
	}}
	assert.InDelta(t, 24.98, cart.TotalValue(), 0.001)

	empty := &Cart{}
	assert.Equal(t, 0.0, empty.TotalValue())
}

func TestCartFindItem(t *testing.T) {
	target := uuid.New()
	cart := &Cart{Items: []CartItem{
		{ProductID: uuid.New()},
		{ProductID: target},
	}}

	assert.Equal(t, 1, cart.FindItem(target))
	assert.Equal(t, -1, cart.FindItem(uuid.New()))
}
