package prescription

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrescription(t *testing.T, productIDs ...uuid.UUID) *Prescription {
	t.Helper()
	if len(productIDs) == 0 {
		productIDs = []uuid.UUID{uuid.New()}
	}
	p, err := NewPrescription(uuid.New(), "Dr. Mehta", "City Hospital",
		time.Now().AddDate(0, 0, -2), "prescriptions/abc.pdf", "application/pdf", productIDs)
	require.NoError(t, err)
	return p
}

func TestNewPrescription(t *testing.T) {
	p := newTestPrescription(t)

	assert.Equal(t, StatusPending, p.Status)
	assert.False(t, p.IsUsed)
	assert.Len(t, p.Items, 1)
	assert.True(t, p.ExpiryDate.After(time.Now()))
	require.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, EventTypePrescriptionUploaded, p.GetDomainEvents()[0].EventType())
}

func TestNewPrescriptionValidation(t *testing.T) {
	customerID := uuid.New()
	products := []uuid.UUID{uuid.New()}
	prescribed := time.Now().AddDate(0, 0, -1)

	_, err := NewPrescription(uuid.Nil, "Dr. Mehta", "", prescribed, "k", "application/pdf", products)
	assert.Error(t, err)

	_, err = NewPrescription(customerID, "", "", prescribed, "k", "application/pdf", products)
	assert.Error(t, err)

	_, err = NewPrescription(customerID, "Dr. Mehta", "", time.Now().Add(48*time.Hour), "k", "application/pdf", products)
	assert.Error(t, err)

	_, err = NewPrescription(customerID, "Dr. Mehta", "", prescribed, "", "application/pdf", products)
	assert.Error(t, err)

	_, err = NewPrescription(customerID, "Dr. Mehta", "", prescribed, "k", "text/plain", products)
	assert.Error(t, err)

	_, err = NewPrescription(customerID, "Dr. Mehta", "", prescribed, "k", "application/pdf", nil)
	assert.Error(t, err)
}

func TestNewPrescriptionDeduplicatesItems(t *testing.T) {
	productID := uuid.New()
	p, err := NewPrescription(uuid.New(), "Dr. Mehta", "", time.Now().AddDate(0, 0, -1),
		"k", "image/png", []uuid.UUID{productID, productID})
	require.NoError(t, err)
	assert.Len(t, p.Items, 1)
}

func TestPrescriptionApprove(t *testing.T) {
	p := newTestPrescription(t)
	reviewer := uuid.New()

	require.NoError(t, p.Approve(reviewer, "verified"))
	assert.Equal(t, StatusApproved, p.Status)
	assert.Equal(t, &reviewer, p.ReviewedBy)
	assert.NotNil(t, p.ReviewedAt)
	assert.True(t, p.IsUsable(time.Now()))

	// cannot review twice
	assert.Error(t, p.Approve(reviewer, "again"))
	assert.Error(t, p.Reject(reviewer, "nope"))
}

func TestPrescriptionReject(t *testing.T) {
	p := newTestPrescription(t)
	reviewer := uuid.New()

	// rejection requires a note
	assert.Error(t, p.Reject(reviewer, "  "))

	require.NoError(t, p.Reject(reviewer, "illegible scan"))
	assert.Equal(t, StatusRejected, p.Status)
	assert.False(t, p.IsUsable(time.Now()))
}

func TestPrescriptionUseAndRelease(t *testing.T) {
	p := newTestPrescription(t)
	require.NoError(t, p.Approve(uuid.New(), ""))

	orderID := uuid.New()
	require.NoError(t, p.MarkUsed(orderID))
	assert.True(t, p.IsUsed)
	assert.Equal(t, &orderID, p.UsedInOrderID)
	assert.False(t, p.IsUsable(time.Now()))

	// single use
	assert.Error(t, p.MarkUsed(uuid.New()))

	p.Release()
	assert.False(t, p.IsUsed)
	assert.Nil(t, p.UsedInOrderID)
	assert.True(t, p.IsUsable(time.Now()))
}

func TestPrescriptionExpiry(t *testing.T) {
	p := newTestPrescription(t)
	require.NoError(t, p.Approve(uuid.New(), ""))

	p.ExpiryDate = time.Now().Add(-time.Hour)
	assert.False(t, p.IsUsable(time.Now()))
	assert.Error(t, p.MarkUsed(uuid.New()))
}

func TestPrescriptionCovers(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	p := newTestPrescription(t, a, b)

	assert.True(t, p.Covers([]uuid.UUID{a}))
	assert.True(t, p.Covers([]uuid.UUID{a, b}))
	assert.False(t, p.Covers([]uuid.UUID{a, c}))
	assert.True(t, p.Covers(nil))
}
