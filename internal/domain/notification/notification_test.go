package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification(t *testing.T) {
	orderID := uuid.New()
	n, err := NewNotification(uuid.New(), TypeOrderUpdate, "Order confirmed", "Your order ORD-1 is confirmed", &orderID)
	require.NoError(t, err)

	assert.False(t, n.IsRead)
	assert.Nil(t, n.ReadAt)
	assert.Equal(t, &orderID, n.RelatedID)
}

func TestNewNotificationValidation(t *testing.T) {
	_, err := NewNotification(uuid.Nil, TypeOrderUpdate, "t", "m", nil)
	assert.Error(t, err)

	_, err = NewNotification(uuid.New(), Type("sms"), "t", "m", nil)
	assert.Error(t, err)

	_, err = NewNotification(uuid.New(), TypeSystem, "  ", "m", nil)
	assert.Error(t, err)
}

func TestNotificationMarkRead(t *testing.T) {
	n, err := NewNotification(uuid.New(), TypeSystem, "Welcome", "", nil)
	require.NoError(t, err)

	n.MarkRead()
	assert.True(t, n.IsRead)
	require.NotNil(t, n.ReadAt)

	first := *n.ReadAt
	n.MarkRead()
	assert.Equal(t, first, *n.ReadAt)
}
