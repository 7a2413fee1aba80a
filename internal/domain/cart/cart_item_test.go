package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartItem(t *testing.T) {
	item, err := NewCartItem(uuid.New(), uuid.New(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	_, err = NewCartItem(uuid.Nil, uuid.New(), 1)
	assert.Error(t, err)

	_, err = NewCartItem(uuid.New(), uuid.New(), 0)
	assert.Error(t, err)

	_, err = NewCartItem(uuid.New(), uuid.New(), MaxQuantityPerItem+1)
	assert.Error(t, err)
}

func TestCartItemMerge(t *testing.T) {
	item, err := NewCartItem(uuid.New(), uuid.New(), 3)
	require.NoError(t, err)

	require.NoError(t, item.Merge(2))
	assert.Equal(t, 5, item.Quantity)

	assert.Error(t, item.Merge(MaxQuantityPerItem))
	assert.Equal(t, 5, item.Quantity)
}

func TestCartItemChangeQuantity(t *testing.T) {
	item, err := NewCartItem(uuid.New(), uuid.New(), 3)
	require.NoError(t, err)

	require.NoError(t, item.ChangeQuantity(7))
	assert.Equal(t, 7, item.Quantity)

	assert.Error(t, item.ChangeQuantity(0))
	assert.Error(t, item.ChangeQuantity(-2))
}
